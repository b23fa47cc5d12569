package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// ChunkFailureAbort fails the whole synthesis job on the first chunk
	// error. ChunkFailureSkip drops the chunk and keeps going.
	ChunkFailureAbort = "abort"
	ChunkFailureSkip  = "skip"
)

// PipelineConfig carries the per-stage segmentation ceilings and the
// synthesis chunk-failure policy. The cleaning service tolerates larger
// chunks than the synthesis engine, so the ceilings differ.
type PipelineConfig struct {
	RefineChunkSize int
	TTSChunkSize    int
	TTSChunkFailure string
}

func GetPipelineConfig() (*PipelineConfig, error) {
	refineChunkSize, err := intFromEnv("REFINE_CHUNK_SIZE", 800)
	if err != nil {
		return nil, err
	}

	ttsChunkSize, err := intFromEnv("TTS_CHUNK_SIZE", 400)
	if err != nil {
		return nil, err
	}

	policy := os.Getenv("TTS_CHUNK_FAILURE")
	if policy == "" {
		policy = ChunkFailureAbort
	}
	if policy != ChunkFailureAbort && policy != ChunkFailureSkip {
		return nil, fmt.Errorf("TTS_CHUNK_FAILURE must be %q or %q, got %q",
			ChunkFailureAbort, ChunkFailureSkip, policy)
	}

	return &PipelineConfig{
		RefineChunkSize: refineChunkSize,
		TTSChunkSize:    ttsChunkSize,
		TTSChunkFailure: policy,
	}, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, val)
	}
	return val, nil
}
