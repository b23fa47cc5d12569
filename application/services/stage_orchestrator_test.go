package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"doc-narrator-api/application/ports/inbound"
	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/domain"
	"doc-narrator-api/infrastructure/adapters"
	"doc-narrator-api/mock"
	"github.com/panjf2000/ants/v2"
)

type orchestratorFixture struct {
	orchestrator inbound.StageOrchestratorPort
	registry     inbound.JobRegistryPort
	store        outbound.ArtifactStorePort
	baseDir      string
}

func newOrchestratorFixture(t *testing.T, extractor outbound.DocumentExtractorPort,
	cleaner outbound.TextCleanerPort, synthesizer outbound.SpeechSynthesizerPort,
	params StageOrchestratorParams) orchestratorFixture {
	t.Helper()

	workerPool, err := ants.NewPool(10)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)

	logger := adapters.NewZerologWrapper()
	store := adapters.NewFSArtifactStore(logger)
	baseDir := t.TempDir()
	registry := NewJobRegistry(logger, store, baseDir)

	orchestrator := NewStageOrchestrator(logger, workerPool, registry, store,
		NewTextSegmenter(), extractor, cleaner, synthesizer, adapters.NewWavCodec(), params)

	return orchestratorFixture{
		orchestrator: orchestrator,
		registry:     registry,
		store:        store,
		baseDir:      baseDir,
	}
}

func defaultParams() StageOrchestratorParams {
	return StageOrchestratorParams{
		RefineChunkSize:     800,
		TTSChunkSize:        400,
		AbortOnChunkFailure: true,
		ModelOverride:       "test-model",
	}
}

func TestStageOrchestrator_RunExtract(t *testing.T) {
	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{
		ExtractFn: func(ctx context.Context, filename string, document io.Reader) (string, error) {
			return "# Extracted heading\n\nBody text.", nil
		},
	}, &mock.TextCleaner{}, &mock.SpeechSynthesizer{}, defaultParams())

	ctx := context.Background()

	events, err := fixture.orchestrator.RunExtract(ctx, "job-1", "paper.pdf",
		bytes.NewReader([]byte("%PDF-1.7 fake document")))
	if err != nil {
		t.Fatal("Failed to start extraction:", err)
	}

	received := make([]domain.ProgressEvent, 0)
	for event := range events {
		received = append(received, event)
	}

	expected := []domain.ProgressStatus{
		domain.StatusSaving, domain.StatusExtracting, domain.StatusWriting, domain.StatusDone,
	}
	if len(received) != len(expected) {
		t.Fatalf("Expected %d events, got %+v", len(expected), received)
	}
	for idx, status := range expected {
		if received[idx].Status != status {
			t.Fatalf("Event %d: expected status %s, got %s", idx, status, received[idx].Status)
		}
	}

	final := received[len(received)-1]
	if final.OutputFile == "" || final.CharCount == 0 {
		t.Fatalf("Terminal event misses the output details: %+v", final)
	}

	ref := fixture.registry.Resolve("job-1")
	for _, name := range []string{domain.DocumentName(ref.DocName), domain.ExtractedName(ref.DocName)} {
		exists, err := fixture.store.Exists(ctx, ref, name)
		if err != nil {
			t.Fatal("Failed to check artifact:", err)
		}
		if !exists {
			t.Fatal("Expected artifact to exist:", name)
		}
	}
}

func TestStageOrchestrator_RunRefine_NotReady(t *testing.T) {
	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		&mock.SpeechSynthesizer{}, defaultParams())

	_, err := fixture.orchestrator.RunRefine(context.Background(), "no-such-job")
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatal("Expected a not-ready error, got", err)
	}
}

func TestStageOrchestrator_RunRefine(t *testing.T) {
	params := defaultParams()
	params.RefineChunkSize = 6

	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{
		CleanFn: func(ctx context.Context, model string, chunk string) (string, error) {
			if model != "test-model" {
				t.Fatal("Unexpected model:", model)
			}
			return strings.ToUpper(chunk), nil
		},
	}, &mock.SpeechSynthesizer{}, params)

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-2")
	if _, err := fixture.store.Put(ctx, ref, domain.ExtractedName(ref.DocName),
		strings.NewReader("one. two. three.")); err != nil {
		t.Fatal("Failed to write the extracted artifact:", err)
	}

	events, err := fixture.orchestrator.RunRefine(ctx, "job-2")
	if err != nil {
		t.Fatal("Failed to start refinement:", err)
	}

	lastCompleted := 0
	var final domain.ProgressEvent
	for event := range events {
		if event.Completed < lastCompleted {
			t.Fatalf("Completed count regressed: %d after %d", event.Completed, lastCompleted)
		}
		lastCompleted = event.Completed
		final = event
	}

	if final.Status != domain.StatusDone {
		t.Fatalf("Expected a done event, got %+v", final)
	}

	refined, err := os.ReadFile(filepath.Join(ref.Dir, domain.RefinedName(ref.DocName)))
	if err != nil {
		t.Fatal("Failed to read the refined artifact:", err)
	}
	if string(refined) != "ONE. TWO. THREE." {
		t.Fatal("Unexpected refined text:", string(refined))
	}
}

func TestStageOrchestrator_RunRefine_CleanerFailureKeepsChunk(t *testing.T) {
	params := defaultParams()
	params.RefineChunkSize = 6

	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{
		CleanFn: func(ctx context.Context, model string, chunk string) (string, error) {
			if strings.Contains(chunk, "two") {
				return "", errors.New("model overloaded")
			}
			return strings.ToUpper(chunk), nil
		},
	}, &mock.SpeechSynthesizer{}, params)

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-3")
	if _, err := fixture.store.Put(ctx, ref, domain.ExtractedName(ref.DocName),
		strings.NewReader("one. two. three.")); err != nil {
		t.Fatal("Failed to write the extracted artifact:", err)
	}

	events, err := fixture.orchestrator.RunRefine(ctx, "job-3")
	if err != nil {
		t.Fatal("Failed to start refinement:", err)
	}

	if _, err := Collect(events); err != nil {
		t.Fatal("Expected the job to survive a chunk failure, got", err)
	}

	refined, err := os.ReadFile(filepath.Join(ref.Dir, domain.RefinedName(ref.DocName)))
	if err != nil {
		t.Fatal("Failed to read the refined artifact:", err)
	}
	if string(refined) != "ONE. two. THREE." {
		t.Fatal("Expected the failed chunk to pass through unmodified, got", string(refined))
	}
}

func TestStageOrchestrator_RunSynthesize(t *testing.T) {
	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		&mock.SpeechSynthesizer{}, defaultParams())

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-4")
	if _, err := fixture.store.Put(ctx, ref, domain.RefinedName(ref.DocName),
		strings.NewReader("Hello there. General Kenobi.")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	events, err := fixture.orchestrator.RunSynthesize(ctx, "job-4")
	if err != nil {
		t.Fatal("Failed to start synthesis:", err)
	}

	final, err := Collect(events)
	if err != nil {
		t.Fatal("Synthesis failed:", err)
	}
	if final.OutputFile == "" {
		t.Fatal("Expected the terminal event to carry the output file")
	}

	audio, err := os.ReadFile(filepath.Join(ref.Dir, domain.AudioName(ref.DocName)))
	if err != nil {
		t.Fatal("Failed to read the audio artifact:", err)
	}
	if len(audio) < 44 || string(audio[:4]) != "RIFF" {
		t.Fatal("Expected a WAV payload, got", len(audio), "bytes")
	}
}

func TestStageOrchestrator_RunSynthesize_EmptyInput(t *testing.T) {
	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		&mock.SpeechSynthesizer{}, defaultParams())

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-5")
	if _, err := fixture.store.Put(ctx, ref, domain.RefinedName(ref.DocName),
		strings.NewReader("   \n  ")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	events, err := fixture.orchestrator.RunSynthesize(ctx, "job-5")
	if err != nil {
		t.Fatal("Failed to start synthesis:", err)
	}

	final, err := Collect(events)
	if err == nil {
		t.Fatal("Expected an error for whitespace-only input")
	}
	if final.Message != domain.ErrEmptyInput.Error() {
		t.Fatal("Expected the empty-input error, got", final.Message)
	}
}

func TestStageOrchestrator_RunSynthesize_ChunkFailureAborts(t *testing.T) {
	synthesizer := &mock.SpeechSynthesizer{
		SynthesizeFn: func(ctx context.Context, text string) (outbound.SpeechResult, error) {
			if strings.Contains(text, "broken") {
				return outbound.SpeechResult{}, errors.New("synthesis backend crashed")
			}
			return outbound.SpeechResult{Samples: make([]int, 100), SampleRate: mock.MockSampleRate}, nil
		},
	}

	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		synthesizer, defaultParams())

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-6")
	if _, err := fixture.store.Put(ctx, ref, domain.RefinedName(ref.DocName),
		strings.NewReader("Good chunk. A broken chunk. Another good chunk.")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	events, err := fixture.orchestrator.RunSynthesize(ctx, "job-6")
	if err != nil {
		t.Fatal("Failed to start synthesis:", err)
	}

	if _, err := Collect(events); err == nil {
		t.Fatal("Expected the chunk failure to abort the job")
	}

	exists, err := fixture.store.Exists(ctx, ref, domain.AudioName(ref.DocName))
	if err != nil {
		t.Fatal("Failed to check the audio artifact:", err)
	}
	if exists {
		t.Fatal("Expected no audio artifact for an aborted job")
	}
}

func TestStageOrchestrator_RunSynthesize_ChunkFailureSkips(t *testing.T) {
	synthesizer := &mock.SpeechSynthesizer{
		SynthesizeFn: func(ctx context.Context, text string) (outbound.SpeechResult, error) {
			if strings.Contains(text, "broken") {
				return outbound.SpeechResult{}, errors.New("synthesis backend crashed")
			}
			return outbound.SpeechResult{Samples: make([]int, 100), SampleRate: mock.MockSampleRate}, nil
		},
	}

	params := defaultParams()
	params.AbortOnChunkFailure = false

	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		synthesizer, params)

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-7")
	if _, err := fixture.store.Put(ctx, ref, domain.RefinedName(ref.DocName),
		strings.NewReader("Good chunk. A broken chunk. Another good chunk.")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	events, err := fixture.orchestrator.RunSynthesize(ctx, "job-7")
	if err != nil {
		t.Fatal("Failed to start synthesis:", err)
	}

	if _, err := Collect(events); err != nil {
		t.Fatal("Expected the job to survive a skipped chunk, got", err)
	}

	exists, err := fixture.store.Exists(ctx, ref, domain.AudioName(ref.DocName))
	if err != nil {
		t.Fatal("Failed to check the audio artifact:", err)
	}
	if !exists {
		t.Fatal("Expected the audio artifact from the surviving chunks")
	}
}

func TestStageOrchestrator_RunSynthesize_SampleRateMismatch(t *testing.T) {
	rates := []int{24000, 22050}
	call := 0
	synthesizer := &mock.SpeechSynthesizer{
		// Chunks are synthesized sequentially within one job, so the plain
		// counter is safe here.
		SynthesizeFn: func(ctx context.Context, text string) (outbound.SpeechResult, error) {
			rate := rates[call%len(rates)]
			call++
			return outbound.SpeechResult{Samples: make([]int, 10), SampleRate: rate}, nil
		},
	}

	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		synthesizer, defaultParams())

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-8")
	if _, err := fixture.store.Put(ctx, ref, domain.RefinedName(ref.DocName),
		strings.NewReader("First sentence. Second sentence.")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	events, err := fixture.orchestrator.RunSynthesize(ctx, "job-8")
	if err != nil {
		t.Fatal("Failed to start synthesis:", err)
	}

	final, err := Collect(events)
	if err == nil {
		t.Fatal("Expected the sample rate mismatch to fail the job")
	}
	if !strings.Contains(final.Message, domain.ErrSampleRateMismatch.Error()) {
		t.Fatal("Expected the mismatch error, got", final.Message)
	}
}

func TestStageOrchestrator_ConcurrentStageConflict(t *testing.T) {
	release := make(chan struct{})
	synthesizer := &mock.SpeechSynthesizer{
		SynthesizeFn: func(ctx context.Context, text string) (outbound.SpeechResult, error) {
			<-release
			return outbound.SpeechResult{Samples: make([]int, 10), SampleRate: mock.MockSampleRate}, nil
		},
	}

	fixture := newOrchestratorFixture(t, &mock.DocumentExtractor{}, &mock.TextCleaner{},
		synthesizer, defaultParams())

	ctx := context.Background()
	ref := fixture.registry.Resolve("job-9")
	if _, err := fixture.store.Put(ctx, ref, domain.RefinedName(ref.DocName),
		strings.NewReader("A single sentence.")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	events, err := fixture.orchestrator.RunSynthesize(ctx, "job-9")
	if err != nil {
		t.Fatal("Failed to start synthesis:", err)
	}

	if _, err := fixture.orchestrator.RunSynthesize(ctx, "job-9"); !errors.Is(err, domain.ErrConflict) {
		t.Fatal("Expected a conflict error for the concurrent invocation, got", err)
	}

	close(release)
	if _, err := Collect(events); err != nil {
		t.Fatal("The first invocation failed:", err)
	}

	// The job lock is released just after the stream closes, so give the
	// follow-up invocation a moment to win it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		events, err = fixture.orchestrator.RunSynthesize(ctx, "job-9")
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || time.Now().After(deadline) {
			t.Fatal("Expected the job to accept a new stage after completion, got", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := Collect(events); err != nil {
		t.Fatal("The follow-up invocation failed:", err)
	}
}
