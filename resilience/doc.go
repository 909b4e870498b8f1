// Package resilience provides the two fault-tolerance patterns the service
// relies on:
//
//   - Bulkhead: caps concurrent calls into the speech-to-text backend
//   - Retry: retries transient media download failures with backoff
//
//	gate := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "whisper", MaxConcurrent: 1, MaxWait: time.Minute})
//	segs, err := resilience.ExecuteWithResult(gate, ctx, func() ([]Segment, error) {
//	    return model.Transcribe(ctx, path)
//	})
package resilience
