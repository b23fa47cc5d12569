package outbound

import (
	"context"
	"doc-narrator-api/domain"
	"io"
)

// ArtifactStorePort persists stage artifacts keyed by job and artifact name.
// Artifact presence is the stage-completion signal, so an artifact must only
// ever appear at its final location once fully written.
type ArtifactStorePort interface {
	// EnsureJob creates the job's working location if absent and returns it.
	EnsureJob(ctx context.Context, ref domain.JobRef) (string, error)

	// Put writes an artifact and returns a reference to it. The artifact
	// becomes visible only on full success.
	Put(ctx context.Context, ref domain.JobRef, name string, r io.Reader) (string, error)

	Get(ctx context.Context, ref domain.JobRef, name string) (io.ReadCloser, error)

	Exists(ctx context.Context, ref domain.JobRef, name string) (bool, error)
}
