package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"doc-narrator-api/domain"
	"doc-narrator-api/infrastructure/adapters"
)

func TestJobRegistry_Resolve_UnknownJob(t *testing.T) {
	logger := adapters.NewZerologWrapper()
	store := adapters.NewFSArtifactStore(logger)
	baseDir := t.TempDir()

	registry := NewJobRegistry(logger, store, baseDir)

	ref := registry.Resolve("some-job")
	if ref.ID != "some-job" || ref.DocName != "some-job" {
		t.Fatalf("Unexpected resolved ref: %+v", ref)
	}
	if ref.Dir != filepath.Join(baseDir, "some-job") {
		t.Fatal("Expected the default directory, got", ref.Dir)
	}

	if again := registry.Resolve("some-job"); again != ref {
		t.Fatalf("Expected deterministic resolution, got %+v and %+v", ref, again)
	}
}

func TestJobRegistry_Register(t *testing.T) {
	logger := adapters.NewZerologWrapper()
	store := adapters.NewFSArtifactStore(logger)
	baseDir := t.TempDir()

	registry := NewJobRegistry(logger, store, baseDir)

	registry.Register("job-a", "", "paper")
	refA := registry.Resolve("job-a")
	if refA.DocName != "paper" || refA.Dir != filepath.Join(baseDir, "paper") {
		t.Fatalf("Unexpected ref for registered doc name: %+v", refA)
	}

	outDir := filepath.Join(baseDir, "custom", "thesis")
	registry.Register("job-b", outDir, "")
	refB := registry.Resolve("job-b")
	if refB.Dir != outDir || refB.DocName != "thesis" {
		t.Fatalf("Unexpected ref for directory override: %+v", refB)
	}
}

func TestJobRegistry_Status(t *testing.T) {
	logger := adapters.NewZerologWrapper()
	store := adapters.NewFSArtifactStore(logger)
	baseDir := t.TempDir()

	registry := NewJobRegistry(logger, store, baseDir)
	ctx := context.Background()

	status, err := registry.Status(ctx, "fresh-job")
	if err != nil {
		t.Fatal("Failed to derive status:", err)
	}
	if status.Extracted || status.Refined || status.Synthesized {
		t.Fatalf("Expected all stages incomplete, got %+v", status)
	}

	ref := registry.Resolve("fresh-job")
	if _, err := store.Put(ctx, ref, domain.ExtractedName(ref.DocName), strings.NewReader("# text")); err != nil {
		t.Fatal("Failed to write the extracted artifact:", err)
	}
	if _, err := store.Put(ctx, ref, domain.RefinedName(ref.DocName), strings.NewReader("text")); err != nil {
		t.Fatal("Failed to write the refined artifact:", err)
	}

	status, err = registry.Status(ctx, "fresh-job")
	if err != nil {
		t.Fatal("Failed to derive status:", err)
	}
	if !status.Extracted || !status.Refined || status.Synthesized {
		t.Fatalf("Expected extract and refine complete only, got %+v", status)
	}
}
