package transcription

// TranscriptionRequest holds parameters for a transcription call.
type TranscriptionRequest struct {
	// AudioPath is the local path of the media file.
	AudioPath string `json:"audio_path"`
	// Language is the language hint passed to the model (e.g. "vi").
	Language string `json:"language,omitempty"`
	// Model is the model size or name (e.g. "medium").
	Model string `json:"model,omitempty"`
}

// TranscriptionResponse holds the raw model output.
type TranscriptionResponse struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments are in the order the model produced them.
	Segments []Segment `json:"segments,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// Segment is a raw model segment with offsets in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptSegment is one entry of the transcript returned to clients.
type TranscriptSegment struct {
	// Stt is the 1-based sequence number.
	Stt       int    `json:"stt"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Text      string `json:"text"`
}

// ToTranscript maps raw segments to client segments, preserving order.
func ToTranscript(segments []Segment) []TranscriptSegment {
	out := make([]TranscriptSegment, 0, len(segments))
	for i, seg := range segments {
		end := seg.End
		if end < seg.Start {
			end = seg.Start
		}
		out = append(out, TranscriptSegment{
			Stt:       i + 1,
			StartTime: FormatOffset(seg.Start),
			EndTime:   FormatOffset(end),
			Text:      trimText(seg.Text),
		})
	}
	return out
}
