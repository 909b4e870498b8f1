package transcription

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/observability"
	"github.com/vidscribe/vidscribe/resilience"
)

// Adapter runs the shared provider behind a bulkhead and a timeout and maps
// its output to TranscriptSegments.
type Adapter struct {
	provider Provider
	cfg      Config
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewAdapter creates an Adapter. metrics may be nil.
func NewAdapter(p Provider, cfg Config, log *logger.Logger, metrics *observability.Metrics) *Adapter {
	cfg.ApplyDefaults()
	l := log.WithComponent("transcription")
	return &Adapter{
		provider: p,
		cfg:      cfg,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "transcriber",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
			OnReject: func(name string, err error) {
				l.Warn("transcription rejected", logger.ErrorFields("bulkhead "+name, err))
			},
		}),
		log:     l,
		metrics: metrics,
	}
}

// Provider returns the underlying backend.
func (a *Adapter) Provider() Provider { return a.provider }

// Transcribe runs the model over path. An empty language uses the
// configured default. Errors are *errors.AppError values.
func (a *Adapter) Transcribe(ctx context.Context, path, language string) ([]TranscriptSegment, error) {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = a.cfg.DefaultLanguage
	}
	backend := a.provider.Name()

	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
	observability.SetSpanAttribute(ctx, observability.AttrBackend, backend)
	observability.SetSpanAttribute(ctx, observability.AttrLanguage, lang)

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := resilience.ExecuteWithResult(a.bulkhead, callCtx, func() (*TranscriptionResponse, error) {
		return a.provider.Transcribe(callCtx, TranscriptionRequest{
			AudioPath: path,
			Language:  lang,
			Model:     a.cfg.Model,
		})
	})
	duration := time.Since(start)

	log := a.log.WithContext(ctx)
	if err != nil {
		appErr, outcome := a.classify(callCtx, err)
		a.metrics.RecordTranscription(ctx, backend, outcome, 0, duration)
		a.metrics.RecordError(ctx, string(appErr.Code), "transcribe")
		log.WithError(err).WithFields(appErr.Details).Error("transcription failed", logger.Fields(
			logger.FieldPath, path,
			logger.FieldLanguage, lang,
			logger.FieldStatus, outcome,
			logger.FieldDuration, duration.Milliseconds(),
		))
		observability.EndSpan(span, err)
		return nil, appErr
	}

	var raw []Segment
	if resp != nil {
		raw = resp.Segments
	}
	segments := ToTranscript(raw)

	a.metrics.RecordTranscription(ctx, backend, observability.OutcomeSuccess, len(segments), duration)
	observability.SetSpanAttribute(ctx, observability.AttrSegments, len(segments))
	log.Info("transcription completed", logger.Fields(
		logger.FieldPath, path,
		logger.FieldLanguage, lang,
		logger.FieldSegments, len(segments),
		logger.FieldDuration, duration.Milliseconds(),
	))
	observability.EndSpan(span, nil)
	return segments, nil
}

// classify maps a backend failure to its AppError and metric outcome.
func (a *Adapter) classify(ctx context.Context, err error) (*apperrors.AppError, string) {
	switch {
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.ServiceUnavailable("transcription model").
			WithCause(err).
			WithDetail("max_concurrent", a.cfg.MaxConcurrent), observability.OutcomeRejected
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Timeout("transcription").
			WithCause(err).
			WithDetail("timeout", a.cfg.Timeout.String()), observability.OutcomeTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return apperrors.TranscriptionFailed(err), observability.OutcomeCanceled
	default:
		return apperrors.TranscriptionFailed(err), observability.OutcomeFailure
	}
}
