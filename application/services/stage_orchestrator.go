package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"doc-narrator-api/application/ports/inbound"
	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/domain"
)

// StageOrchestratorParams bundles the tuning knobs the orchestrator needs:
// per-stage segmentation ceilings, the synthesis chunk-failure policy and
// the cleaning-model selection inputs.
type StageOrchestratorParams struct {
	RefineChunkSize int
	TTSChunkSize    int

	// AbortOnChunkFailure fails the whole synthesis job on the first chunk
	// error instead of skipping the chunk.
	AbortOnChunkFailure bool

	// ModelOverride pins the cleaning model; when empty the first installed
	// KnownModels entry is used.
	ModelOverride string
	KnownModels   []string
}

type stageOrchestrator struct {
	logger      outbound.LoggerPort
	workerPool  outbound.TaskDispatcher
	registry    inbound.JobRegistryPort
	store       outbound.ArtifactStorePort
	segmenter   inbound.TextSegmenterPort
	extractor   outbound.DocumentExtractorPort
	cleaner     outbound.TextCleanerPort
	synthesizer outbound.SpeechSynthesizerPort
	encoder     outbound.AudioEncoderPort
	params      StageOrchestratorParams

	jobLocks sync.Map
}

func NewStageOrchestrator(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	registry inbound.JobRegistryPort, store outbound.ArtifactStorePort,
	segmenter inbound.TextSegmenterPort, extractor outbound.DocumentExtractorPort,
	cleaner outbound.TextCleanerPort, synthesizer outbound.SpeechSynthesizerPort,
	encoder outbound.AudioEncoderPort, params StageOrchestratorParams) inbound.StageOrchestratorPort {
	return &stageOrchestrator{
		logger:      logger,
		workerPool:  workerPool,
		registry:    registry,
		store:       store,
		segmenter:   segmenter,
		extractor:   extractor,
		cleaner:     cleaner,
		synthesizer: synthesizer,
		encoder:     encoder,
		params:      params,
	}
}

func (o *stageOrchestrator) RunExtract(ctx context.Context, jobID string, filename string, document io.Reader) (<-chan domain.ProgressEvent, error) {
	ref := o.registry.Resolve(jobID)

	return o.startStage(ref, func(emitter *progressEmitter) {
		o.extract(ctx, ref, filename, document, emitter)
	})
}

func (o *stageOrchestrator) RunRefine(ctx context.Context, jobID string) (<-chan domain.ProgressEvent, error) {
	ref := o.registry.Resolve(jobID)

	if err := o.requireArtifact(ctx, ref, domain.ExtractedName(ref.DocName)); err != nil {
		return nil, err
	}

	return o.startStage(ref, func(emitter *progressEmitter) {
		o.refine(ctx, ref, emitter)
	})
}

func (o *stageOrchestrator) RunSynthesize(ctx context.Context, jobID string) (<-chan domain.ProgressEvent, error) {
	ref := o.registry.Resolve(jobID)

	if err := o.requireArtifact(ctx, ref, domain.RefinedName(ref.DocName)); err != nil {
		return nil, err
	}

	return o.startStage(ref, func(emitter *progressEmitter) {
		o.synthesize(ctx, ref, emitter)
	})
}

// startStage acquires the job's stage lock and offloads the stage body onto
// the worker pool. Concurrent stage invocations on the same job are rejected
// rather than queued.
func (o *stageOrchestrator) startStage(ref domain.JobRef, stage func(*progressEmitter)) (<-chan domain.ProgressEvent, error) {
	lockAny, _ := o.jobLocks.LoadOrStore(ref.ID, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	if !lock.TryLock() {
		return nil, fmt.Errorf("%w: job %s", domain.ErrConflict, ref.ID)
	}

	emitter := newProgressEmitter()

	err := o.workerPool.Submit(func() {
		defer lock.Unlock()
		stage(emitter)
	})
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	return emitter.Events(), nil
}

func (o *stageOrchestrator) requireArtifact(ctx context.Context, ref domain.JobRef, name string) error {
	exists, err := o.store.Exists(ctx, ref, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s not found, run the previous stage first", domain.ErrNotReady, name)
	}
	return nil
}

func (o *stageOrchestrator) extract(ctx context.Context, ref domain.JobRef, filename string, document io.Reader, emitter *progressEmitter) {
	base := domain.ProgressEvent{JobID: ref.ID, Stage: domain.StageExtract}

	if _, err := o.store.EnsureJob(ctx, ref); err != nil {
		emitter.Fail(err, base)
		return
	}

	emitter.Emit(domain.ProgressEvent{Status: domain.StatusSaving, Message: "Saving PDF..."})
	docName := domain.DocumentName(ref.DocName)
	if _, err := o.store.Put(ctx, ref, docName, document); err != nil {
		o.logger.ErrorWithFields(err, "failed to save document", map[string]interface{}{"job_id": ref.ID})
		emitter.Fail(err, base)
		return
	}

	emitter.Emit(domain.ProgressEvent{
		Status:  domain.StatusExtracting,
		Message: "Extracting text (this may take a while)...",
	})

	saved, err := o.store.Get(ctx, ref, docName)
	if err != nil {
		emitter.Fail(err, base)
		return
	}
	text, err := o.extractor.Extract(ctx, filename, saved)
	_ = saved.Close()
	if err != nil {
		o.logger.ErrorWithFields(err, "extraction failed", map[string]interface{}{"job_id": ref.ID})
		emitter.Fail(err, base)
		return
	}

	emitter.Emit(domain.ProgressEvent{Status: domain.StatusWriting, Message: "Writing output file..."})
	outRef, err := o.store.Put(ctx, ref, domain.ExtractedName(ref.DocName), strings.NewReader(text))
	if err != nil {
		emitter.Fail(err, base)
		return
	}

	base.OutputFile = outRef
	base.CharCount = len(text)
	emitter.Done(base)
}

func (o *stageOrchestrator) refine(ctx context.Context, ref domain.JobRef, emitter *progressEmitter) {
	base := domain.ProgressEvent{JobID: ref.ID, Stage: domain.StageRefine}

	raw, err := o.readArtifact(ctx, ref, domain.ExtractedName(ref.DocName))
	if err != nil {
		emitter.Fail(err, base)
		return
	}

	model, err := o.resolveModel(ctx)
	if err != nil {
		emitter.Fail(err, base)
		return
	}

	chunks := o.segmenter.Segment(raw, o.params.RefineChunkSize)
	total := len(chunks)
	emitter.Emit(domain.ProgressEvent{
		Status:  domain.StatusRefining,
		Message: fmt.Sprintf("Refining %d chunks...", total),
		Total:   total,
	})

	cleaned := make([]string, 0, total)
	for idx, chunk := range chunks {
		select {
		case <-ctx.Done():
			emitter.Fail(ctx.Err(), base)
			return
		default:
		}

		// A single cleaner failure never aborts the job: the chunk passes
		// through unmodified instead.
		result, err := o.cleaner.Clean(ctx, model, chunk)
		if err != nil {
			o.logger.WarnWithFields("cleaner failed for chunk, keeping original", map[string]interface{}{
				"job_id": ref.ID,
				"chunk":  idx + 1,
				"error":  err.Error(),
			})
			result = chunk
		}
		cleaned = append(cleaned, result)

		emitter.Emit(domain.ProgressEvent{
			Status:    domain.StatusRefining,
			Message:   fmt.Sprintf("Refined chunk %d/%d", idx+1, total),
			Total:     total,
			Completed: idx + 1,
		})
	}

	refined := strings.Join(cleaned, " ")
	emitter.Emit(domain.ProgressEvent{Status: domain.StatusWriting, Message: "Writing output file..."})
	outRef, err := o.store.Put(ctx, ref, domain.RefinedName(ref.DocName), strings.NewReader(refined))
	if err != nil {
		emitter.Fail(err, base)
		return
	}

	base.OutputFile = outRef
	base.CharCount = len(refined)
	emitter.Done(base)
}

func (o *stageOrchestrator) synthesize(ctx context.Context, ref domain.JobRef, emitter *progressEmitter) {
	base := domain.ProgressEvent{JobID: ref.ID, Stage: domain.StageSynthesize}

	text, err := o.readArtifact(ctx, ref, domain.RefinedName(ref.DocName))
	if err != nil {
		emitter.Fail(err, base)
		return
	}

	chunks := o.segmenter.Segment(text, o.params.TTSChunkSize)
	total := len(chunks)
	emitter.Emit(domain.ProgressEvent{
		Status:  domain.StatusGenerating,
		Message: fmt.Sprintf("Generating audio for %d chunks...", total),
		Total:   total,
	})

	samples := make([]int, 0)
	sampleRate := 0
	for idx, chunk := range chunks {
		select {
		case <-ctx.Done():
			emitter.Fail(ctx.Err(), base)
			return
		default:
		}

		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if !strings.ContainsAny(chunk[len(chunk)-1:], ".!?;:") {
			chunk += "."
		}

		result, err := o.synthesizer.Synthesize(ctx, chunk)
		if err != nil {
			if o.params.AbortOnChunkFailure {
				o.logger.ErrorWithFields(err, "synthesis failed for chunk", map[string]interface{}{
					"job_id": ref.ID,
					"chunk":  idx + 1,
				})
				emitter.Fail(err, base)
				return
			}
			o.logger.WarnWithFields("synthesis failed for chunk, skipping", map[string]interface{}{
				"job_id": ref.ID,
				"chunk":  idx + 1,
				"error":  err.Error(),
			})
			emitter.Emit(domain.ProgressEvent{
				Status:    domain.StatusGenerating,
				Message:   fmt.Sprintf("Skipped chunk %d/%d", idx+1, total),
				Total:     total,
				Completed: idx + 1,
			})
			continue
		}

		if sampleRate == 0 {
			sampleRate = result.SampleRate
		} else if result.SampleRate != sampleRate {
			emitter.Fail(fmt.Errorf("%w: got %d, expected %d",
				domain.ErrSampleRateMismatch, result.SampleRate, sampleRate), base)
			return
		}
		samples = append(samples, result.Samples...)

		emitter.Emit(domain.ProgressEvent{
			Status:    domain.StatusGenerating,
			Message:   fmt.Sprintf("Chunk %d/%d", idx+1, total),
			Total:     total,
			Completed: idx + 1,
		})
	}

	if len(samples) == 0 {
		emitter.Fail(domain.ErrEmptyInput, base)
		return
	}

	emitter.Emit(domain.ProgressEvent{Status: domain.StatusWriting, Message: "Writing audio file..."})
	wavData, err := o.encoder.EncodeWAV(samples, sampleRate)
	if err != nil {
		emitter.Fail(err, base)
		return
	}
	outRef, err := o.store.Put(ctx, ref, domain.AudioName(ref.DocName), wavData)
	if err != nil {
		emitter.Fail(err, base)
		return
	}

	base.OutputFile = outRef
	emitter.Done(base)
}

func (o *stageOrchestrator) readArtifact(ctx context.Context, ref domain.JobRef, name string) (string, error) {
	rc, err := o.store.Get(ctx, ref, name)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (o *stageOrchestrator) resolveModel(ctx context.Context) (string, error) {
	if o.params.ModelOverride != "" {
		return o.params.ModelOverride, nil
	}

	installed, err := o.cleaner.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("cleaning service not reachable: %w", err)
	}

	for _, candidate := range o.params.KnownModels {
		for _, name := range installed {
			if strings.Contains(name, candidate) {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("no supported cleaning model found, pull one of: %s",
		strings.Join(o.params.KnownModels, ", "))
}
