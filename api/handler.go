package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/media"
	"github.com/vidscribe/vidscribe/server"
	"github.com/vidscribe/vidscribe/transcription"
	"github.com/vidscribe/vidscribe/upload"
	"github.com/vidscribe/vidscribe/validation"
)

const uploadField = "file"

// Handler serves the transcription endpoints.
type Handler struct {
	fetcher     Fetcher
	store       Store
	transcriber Transcriber
	cfg         Config
	log         *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(fetcher Fetcher, store Store, transcriber Transcriber, cfg Config, log *logger.Logger) *Handler {
	return &Handler{
		fetcher:     fetcher,
		store:       store,
		transcriber: transcriber,
		cfg:         cfg,
		log:         log.WithComponent("api"),
	}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/transcribe/", h.Transcribe)
	r.POST("/upload-video/", h.UploadVideo)
}

// Transcribe handles POST /transcribe/.
func (h *Handler) Transcribe(c *gin.Context) {
	ctx := c.Request.Context()

	var q TranscribeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		server.RespondWithDetail(c, apperrors.Validation(err.Error()))
		return
	}
	q.normalize()
	if err := validation.Validate(q); err != nil {
		server.RespondWithDetail(c, err)
		return
	}

	m, err := h.fetcher.Fetch(ctx, q.VideoURL)
	if err != nil {
		server.RespondWithDetail(c, err)
		return
	}
	f, err := h.store.ReceiveGenerated(ctx, m.Body)
	_ = m.Close()
	if err != nil {
		server.RespondWithDetail(c, downloadOrStorageError(err))
		return
	}

	segments, cleanupErr, err := h.transcribeAndRemove(ctx, f, q.Language)
	if err != nil {
		server.RespondWithDetail(c, err)
		return
	}

	resp := TranscribeResponse{Transcription: segments}
	if cleanupErr != nil {
		if !h.cfg.CleanupWarning {
			c.JSON(cleanupErr.HTTPStatus, CleanupErrorResponse{Error: cleanupErr.Message})
			return
		}
		resp.Warning = cleanupErr.Message
	}
	h.log.WithContext(ctx).Info("transcribed video from url", logger.Fields(
		logger.FieldURL, q.VideoURL,
		logger.FieldSegments, len(segments),
	))
	server.RespondCreated(c, resp)
}

// UploadVideo handles POST /upload-video/. The multipart body is streamed
// straight into the working directory.
func (h *Handler) UploadVideo(c *gin.Context) {
	ctx := c.Request.Context()

	var q UploadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		server.RespondWithDetail(c, apperrors.Validation(err.Error()))
		return
	}
	q.normalize()
	if err := validation.Validate(q); err != nil {
		server.RespondWithDetail(c, err)
		return
	}

	part, filename, err := nextFilePart(c.Request)
	if err != nil {
		server.RespondWithDetail(c, err)
		return
	}
	if vErr := validation.New().Check(part != nil, uploadField, "is required").Validate(); vErr != nil {
		server.RespondWithDetail(c, vErr)
		return
	}
	f, err := h.store.Receive(ctx, filename, part)
	_ = part.Close()
	if err != nil {
		server.RespondWithDetail(c, uploadError(err))
		return
	}

	segments, cleanupErr, err := h.transcribeAndRemove(ctx, f, q.Language)
	if err != nil {
		server.RespondWithDetail(c, err)
		return
	}

	resp := UploadResponse{Filename: filename, Transcription: segments}
	if cleanupErr != nil {
		if !h.cfg.CleanupWarning {
			c.JSON(cleanupErr.HTTPStatus, CleanupErrorResponse{Error: cleanupErr.Message})
			return
		}
		resp.Warning = cleanupErr.Message
	}
	h.log.WithContext(ctx).Info("transcribed uploaded video", logger.Fields(
		"filename", filename,
		logger.FieldSegments, len(segments),
	))
	server.RespondCreated(c, resp)
}

// transcribeAndRemove runs the model and always deletes f afterwards. A
// model error takes precedence over a cleanup error.
func (h *Handler) transcribeAndRemove(ctx context.Context, f *upload.File, language string) ([]transcription.TranscriptSegment, *apperrors.AppError, error) {
	segments, err := h.transcriber.Transcribe(ctx, f.Path, language)

	var cleanupErr *apperrors.AppError
	if rmErr := h.store.Remove(context.WithoutCancel(ctx), f); rmErr != nil {
		if appErr, ok := apperrors.AsAppError(rmErr); ok {
			cleanupErr = appErr
		} else {
			cleanupErr = apperrors.CleanupFailed(rmErr)
		}
	}

	if err != nil {
		return nil, nil, err
	}
	return segments, cleanupErr, nil
}

// nextFilePart advances to the "file" part and returns it with its raw
// client-supplied filename, or a nil part when the body has none.
// multipart.Part.FileName strips directories, so the Content-Disposition
// header is parsed directly to keep traversal attempts visible to
// validation.
func nextFilePart(r *http.Request) (*multipart.Part, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", nil
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", uploadError(err)
		}
		if part.FormName() != uploadField {
			_ = part.Close()
			continue
		}
		_, params, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		return part, params["filename"], nil
	}
}

func downloadOrStorageError(err error) error {
	var readErr *media.ReadError
	if errors.As(err, &readErr) {
		if readErr.Timeout {
			return apperrors.Timeout("download").WithCause(readErr.Err)
		}
		return apperrors.DownloadFailed(readErr.Err)
	}
	return err
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "File too large", http.StatusRequestEntityTooLarge)
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Validation("Invalid multipart body")
}
