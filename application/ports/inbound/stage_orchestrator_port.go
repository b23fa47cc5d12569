package inbound

import (
	"context"
	"doc-narrator-api/domain"
	"io"
)

// StageOrchestratorPort runs one pipeline stage for one job. Each operation
// returns an ordered progress stream terminated by exactly one done or error
// event. A non-nil error means the stage was rejected before starting
// (missing upstream artifact, concurrent invocation) and no stream exists.
type StageOrchestratorPort interface {
	RunExtract(ctx context.Context, jobID string, filename string, document io.Reader) (<-chan domain.ProgressEvent, error)
	RunRefine(ctx context.Context, jobID string) (<-chan domain.ProgressEvent, error)
	RunSynthesize(ctx context.Context, jobID string) (<-chan domain.ProgressEvent, error)
}
