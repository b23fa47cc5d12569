package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	StorageBackendFS = "fs"
	StorageBackendS3 = "s3"
)

type StorageConfig struct {
	Backend    string
	BaseDir    string
	BucketName string
	Region     string
}

func GetStorageConfig() (*StorageConfig, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = StorageBackendFS
	}
	if backend != StorageBackendFS && backend != StorageBackendS3 {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", backend)
	}

	baseDir := os.Getenv("OUTPUT_BASE_DIR")
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		baseDir = filepath.Join(home, "DocNarrator", "docs")
	}

	cfg := &StorageConfig{
		Backend: backend,
		BaseDir: baseDir,
	}

	if backend == StorageBackendS3 {
		cfg.BucketName = os.Getenv("BUCKET_NAME")
		if cfg.BucketName == "" {
			return nil, fmt.Errorf("BUCKET_NAME must be set for the s3 backend")
		}
		cfg.Region = os.Getenv("REGION")
		if cfg.Region == "" {
			return nil, fmt.Errorf("REGION must be set for the s3 backend")
		}
	}

	return cfg, nil
}
