// Package mock provides in-process stand-ins for the external engines so
// the pipeline can run without docling, ollama or kokoro installed. Used by
// the MOCK_COLLABORATORS dev mode and by the service tests.
package mock

import (
	"context"
	"fmt"
	"io"
	"strings"

	"doc-narrator-api/application/ports/outbound"
)

const MockSampleRate = 24000

type DocumentExtractor struct {
	ExtractFn func(ctx context.Context, filename string, document io.Reader) (string, error)
}

func (m *DocumentExtractor) Extract(ctx context.Context, filename string, document io.Reader) (string, error) {
	if m.ExtractFn != nil {
		return m.ExtractFn(ctx, filename, document)
	}
	data, err := io.ReadAll(document)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("# %s\n\nExtracted %d bytes of mock text.", filename, len(data)), nil
}

type TextCleaner struct {
	CleanFn      func(ctx context.Context, model string, chunk string) (string, error)
	ListModelsFn func(ctx context.Context) ([]string, error)
}

func (m *TextCleaner) Clean(ctx context.Context, model string, chunk string) (string, error) {
	if m.CleanFn != nil {
		return m.CleanFn(ctx, model, chunk)
	}
	return strings.TrimSpace(chunk), nil
}

func (m *TextCleaner) ListModels(ctx context.Context) ([]string, error) {
	if m.ListModelsFn != nil {
		return m.ListModelsFn(ctx)
	}
	return []string{"llama3.2:3b"}, nil
}

type SpeechSynthesizer struct {
	SynthesizeFn func(ctx context.Context, text string) (outbound.SpeechResult, error)
}

func (m *SpeechSynthesizer) Synthesize(ctx context.Context, text string) (outbound.SpeechResult, error) {
	if m.SynthesizeFn != nil {
		return m.SynthesizeFn(ctx, text)
	}
	// One flat sample per input byte keeps output length proportional to
	// text length without shipping real audio.
	samples := make([]int, len(text))
	return outbound.SpeechResult{
		Samples:    samples,
		SampleRate: MockSampleRate,
	}, nil
}
