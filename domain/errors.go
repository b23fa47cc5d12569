package domain

import "errors"

var (
	// ErrNotReady means a stage was invoked before its upstream artifact
	// exists. Never retried by the pipeline.
	ErrNotReady = errors.New("upstream artifact not ready")

	// ErrConflict means another stage invocation already holds the job.
	ErrConflict = errors.New("another stage is running for this job")

	// ErrEmptyInput means synthesis found no non-empty chunks to voice.
	ErrEmptyInput = errors.New("no audio generated, text may be empty")

	// ErrAssetMissing means a required model file is absent on disk.
	ErrAssetMissing = errors.New("required model asset missing")

	// ErrDownloadFailed means an asset transfer did not complete. The
	// partially written temp file is removed before this surfaces.
	ErrDownloadFailed = errors.New("asset download failed")

	// ErrSampleRateMismatch means the synthesizer returned chunks with
	// differing sample rates within one job.
	ErrSampleRateMismatch = errors.New("sample rate mismatch between chunks")
)
