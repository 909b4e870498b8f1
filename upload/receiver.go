// Package upload places incoming videos in the working storage and removes
// them once a request is done with them.
package upload

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/observability"
	"github.com/vidscribe/vidscribe/storage"
	"github.com/vidscribe/vidscribe/util"
)

// Sources recorded in metrics.
const (
	SourceUpload = "upload"
	SourceURL    = "url"
)

// StorageSource yields the working storage once it has been started.
// *storage.Component satisfies it.
type StorageSource interface {
	Storage() storage.Storage
}

// File is a video held in the working storage.
type File struct {
	// Name is the object name inside the working directory.
	Name string
	// Path is the absolute path handed to the transcriber.
	Path string
	Size int64
}

// Receiver stores and removes request files.
type Receiver struct {
	source  StorageSource
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewReceiver creates a Receiver. metrics may be nil.
func NewReceiver(source StorageSource, cfg Config, log *logger.Logger, metrics *observability.Metrics) *Receiver {
	cfg.ApplyDefaults()
	return &Receiver{
		source:  source,
		cfg:     cfg,
		log:     log.WithComponent("upload"),
		metrics: metrics,
	}
}

// Receive validates a client-supplied filename and stores body under it,
// replacing any file of the same name.
func (r *Receiver) Receive(ctx context.Context, filename string, body io.Reader) (*File, error) {
	if !util.IsSafeFilename(filename) || !util.HasAllowedExtension(filename, r.cfg.AllowedExtensions) {
		r.metrics.RecordError(ctx, string(apperrors.ErrCodeInvalidFormat), "upload")
		return nil, apperrors.InvalidFormat(filename)
	}
	return r.store(ctx, filename, body, SourceUpload)
}

// ReceiveGenerated stores body under a random name. No extension check is
// applied since URL-sourced media carries no trusted name.
func (r *Receiver) ReceiveGenerated(ctx context.Context, body io.Reader) (*File, error) {
	return r.store(ctx, uuid.NewString(), body, SourceURL)
}

// Remove deletes f from the working storage.
func (r *Receiver) Remove(ctx context.Context, f *File) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanCleanup)
	observability.SetSpanAttribute(ctx, observability.AttrFilename, f.Name)

	s, err := r.storage()
	if err == nil {
		err = s.Delete(ctx, f.Name)
	}
	observability.EndSpan(span, err)
	if err != nil {
		r.metrics.RecordError(ctx, string(apperrors.ErrCodeCleanupFailed), "cleanup")
		r.log.WithContext(ctx).Error("failed to delete working file", logger.Fields(logger.FieldPath, f.Path, logger.FieldError, err.Error()))
		return apperrors.CleanupFailed(err)
	}
	return nil
}

func (r *Receiver) store(ctx context.Context, name string, body io.Reader, source string) (*File, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStore)
	observability.SetSpanAttribute(ctx, observability.AttrFilename, name)

	s, err := r.storage()
	if err != nil {
		observability.EndSpan(span, err)
		return nil, err
	}

	info, err := s.Upload(ctx, name, body)
	observability.EndSpan(span, err)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return nil, apperrors.InvalidFormat(name)
		}
		r.metrics.RecordError(ctx, string(apperrors.ErrCodeStorageFailed), "store")
		r.log.WithContext(ctx).Error("failed to store video", logger.Fields(logger.FieldPath, name, logger.FieldError, err.Error()))
		return nil, apperrors.StorageFailed(err)
	}

	r.metrics.RecordMediaBytes(ctx, source, info.Size)
	observability.SetSpanAttribute(ctx, observability.AttrBytes, info.Size)
	r.log.WithContext(ctx).Debug("video stored", logger.Fields(logger.FieldPath, info.Path, "bytes", info.Size, "source", source))
	return &File{Name: info.Name, Path: info.Path, Size: info.Size}, nil
}

func (r *Receiver) storage() (storage.Storage, error) {
	s := r.source.Storage()
	if s == nil {
		return nil, apperrors.ServiceUnavailable("working storage")
	}
	return s, nil
}
