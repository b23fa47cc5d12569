package config

import (
	"os"
	"path/filepath"

	"doc-narrator-api/domain"
)

type AssetsConfig struct {
	ModelsDir string
	Manifest  []domain.Asset
}

func GetAssetsConfig() (*AssetsConfig, error) {
	modelsDir := os.Getenv("MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "models"
	}

	modelURL := os.Getenv("KOKORO_MODEL_URL")
	if modelURL == "" {
		modelURL = "https://github.com/nazdridoy/kokoro-tts/releases/download/v1.0.0/kokoro-v1.0.onnx"
	}

	voicesURL := os.Getenv("VOICES_BIN_URL")
	if voicesURL == "" {
		voicesURL = "https://github.com/nazdridoy/kokoro-tts/releases/download/v1.0.0/voices-v1.0.bin"
	}

	return &AssetsConfig{
		ModelsDir: modelsDir,
		Manifest: []domain.Asset{
			{
				Name: "kokoro-v1.0.onnx",
				Dest: filepath.Join(modelsDir, "kokoro-v1.0.onnx"),
				URL:  modelURL,
			},
			{
				Name: "voices-v1.0.bin",
				Dest: filepath.Join(modelsDir, "voices-v1.0.bin"),
				URL:  voicesURL,
			},
		},
	}, nil
}
