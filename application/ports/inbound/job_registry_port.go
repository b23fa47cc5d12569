package inbound

import (
	"context"
	"doc-narrator-api/domain"
)

// JobRegistryPort maps job identifiers to working locations. A job is always
// resolvable from its ID alone: unknown IDs fall back to a deterministic
// default location derived from the ID.
type JobRegistryPort interface {
	Resolve(jobID string) domain.JobRef

	// Register records an explicit directory and document name for a job,
	// as used by the job-allocating extract endpoint.
	Register(jobID string, dir string, docName string)

	// Status derives stage completion purely from artifact existence.
	Status(ctx context.Context, jobID string) (domain.JobStatus, error)
}
