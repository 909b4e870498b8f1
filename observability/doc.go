// Package observability wires OpenTelemetry tracing and metrics for the
// transcription pipeline.
//
//	shutdown, err := observability.Setup(ctx, cfg, "vidscribe", version.GetVersionInfo().Version)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
//	defer span.End()
//
// When telemetry is disabled the global no-op providers stay in place, so
// spans and instruments are always safe to use.
package observability
