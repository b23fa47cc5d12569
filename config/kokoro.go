package config

import (
	"fmt"
	"os"
	"strconv"
)

type KokoroConfig struct {
	ApiUrl string
	Voice  string
	Speed  float64
}

func GetKokoroConfig() (*KokoroConfig, error) {
	apiUrl := os.Getenv("KOKORO_API_URL")
	if apiUrl == "" {
		apiUrl = "http://localhost:8880"
	}

	voice := os.Getenv("KOKORO_VOICE")
	if voice == "" {
		voice = "af_sky"
	}

	speed := 1.0
	if raw := os.Getenv("TTS_SPEED"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TTS_SPEED: %w", err)
		}
		speed = parsed
	}

	return &KokoroConfig{
		ApiUrl: apiUrl,
		Voice:  voice,
		Speed:  speed,
	}, nil
}
