package outbound

import "context"

// SpeechResult carries the PCM samples for one synthesized chunk.
type SpeechResult struct {
	Samples    []int
	SampleRate int
}

// SpeechSynthesizerPort wraps the neural speech-synthesis engine.
type SpeechSynthesizerPort interface {
	Synthesize(ctx context.Context, text string) (SpeechResult, error)
}
