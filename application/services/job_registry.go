package services

import (
	"context"
	"path/filepath"
	"sync"

	"doc-narrator-api/application/ports/inbound"
	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/domain"
)

type jobRegistry struct {
	logger  outbound.LoggerPort
	store   outbound.ArtifactStorePort
	baseDir string

	mu   sync.RWMutex
	jobs map[string]domain.JobRef
}

func NewJobRegistry(logger outbound.LoggerPort, store outbound.ArtifactStorePort, baseDir string) inbound.JobRegistryPort {
	return &jobRegistry{
		logger:  logger,
		store:   store,
		baseDir: baseDir,
		jobs:    make(map[string]domain.JobRef),
	}
}

// Resolve returns the registered mapping for a job, falling back to the
// deterministic default location derived from the job ID itself. A job is
// therefore always resolvable without prior registration.
func (r *jobRegistry) Resolve(jobID string) domain.JobRef {
	r.mu.RLock()
	ref, ok := r.jobs[jobID]
	r.mu.RUnlock()
	if ok {
		return ref
	}

	return domain.JobRef{
		ID:      jobID,
		DocName: jobID,
		Dir:     filepath.Join(r.baseDir, jobID),
	}
}

func (r *jobRegistry) Register(jobID string, dir string, docName string) {
	if dir == "" {
		dir = filepath.Join(r.baseDir, docName)
	}
	if docName == "" {
		docName = filepath.Base(dir)
	}

	ref := domain.JobRef{
		ID:      jobID,
		DocName: docName,
		Dir:     dir,
	}

	r.mu.Lock()
	r.jobs[jobID] = ref
	r.mu.Unlock()

	r.logger.InfoWithFields("registered job", map[string]interface{}{
		"job_id":   jobID,
		"dir":      dir,
		"doc_name": docName,
	})
}

// Status derives stage completion purely from artifact existence so that it
// stays correct across process restarts and concurrent orchestrators.
func (r *jobRegistry) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	ref := r.Resolve(jobID)

	if _, err := r.store.EnsureJob(ctx, ref); err != nil {
		return domain.JobStatus{}, err
	}

	var status domain.JobStatus
	var err error

	if status.Extracted, err = r.store.Exists(ctx, ref, domain.ExtractedName(ref.DocName)); err != nil {
		return domain.JobStatus{}, err
	}
	if status.Refined, err = r.store.Exists(ctx, ref, domain.RefinedName(ref.DocName)); err != nil {
		return domain.JobStatus{}, err
	}
	if status.Synthesized, err = r.store.Exists(ctx, ref, domain.AudioName(ref.DocName)); err != nil {
		return domain.JobStatus{}, err
	}

	return status, nil
}
