package inbound

// TextSegmenterPort splits text into ordered chunks no longer than maxLen.
// The only exception is a single word that itself exceeds maxLen, which is
// emitted unsplit. Deterministic, never fails.
type TextSegmenterPort interface {
	Segment(text string, maxLen int) []string
}
