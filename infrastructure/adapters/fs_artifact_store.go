package adapters

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/domain"
)

type fsArtifactStore struct {
	logger outbound.LoggerPort
}

// NewFSArtifactStore returns the default, filesystem-backed artifact store.
// Artifacts are written to a temporary sibling and renamed into place only
// on full success, so an artifact's presence at its final path always means
// the stage completed.
func NewFSArtifactStore(logger outbound.LoggerPort) outbound.ArtifactStorePort {
	return &fsArtifactStore{logger: logger}
}

func (s *fsArtifactStore) EnsureJob(_ context.Context, ref domain.JobRef) (string, error) {
	if err := os.MkdirAll(ref.Dir, 0o755); err != nil {
		return "", err
	}
	return ref.Dir, nil
}

func (s *fsArtifactStore) Put(ctx context.Context, ref domain.JobRef, name string, r io.Reader) (string, error) {
	if _, err := s.EnsureJob(ctx, ref); err != nil {
		return "", err
	}

	finalPath := filepath.Join(ref.Dir, name)
	tmpPath := finalPath + ".tmp"

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	s.logger.DebugWithFields("artifact written", map[string]interface{}{
		"job_id": ref.ID,
		"path":   finalPath,
	})
	return finalPath, nil
}

func (s *fsArtifactStore) Get(_ context.Context, ref domain.JobRef, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(ref.Dir, name))
}

func (s *fsArtifactStore) Exists(_ context.Context, ref domain.JobRef, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(ref.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
