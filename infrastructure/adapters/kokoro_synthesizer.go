package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/config"
)

type kokoroSpeechRequest struct {
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

type kokoroSynthesizer struct {
	ContentFetcher
	logger       outbound.LoggerPort
	kokoroConfig *config.KokoroConfig
}

// NewKokoroSynthesizer builds the client for the Kokoro TTS service. The
// service answers with a WAV payload which is decoded back to raw PCM so
// chunks can be concatenated before the final encode.
func NewKokoroSynthesizer(contentFetcher ContentFetcher, kokoroConfig *config.KokoroConfig, logger outbound.LoggerPort) outbound.SpeechSynthesizerPort {
	return &kokoroSynthesizer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		kokoroConfig:   kokoroConfig,
	}
}

func (k *kokoroSynthesizer) Synthesize(ctx context.Context, text string) (outbound.SpeechResult, error) {
	req, err := k.getRequest(ctx, text)
	if err != nil {
		k.logger.ErrorWithFields(err, "Failed to construct the HTTP request for speech synthesis", map[string]interface{}{
			"text": text,
		})
		return outbound.SpeechResult{}, err
	}

	payload, err := k.FetchContent(req)
	if err != nil {
		return outbound.SpeechResult{}, err
	}

	samples, sampleRate, err := decodeWAV(payload)
	if err != nil {
		k.logger.Error(err, "Failed to decode the synthesized audio")
		return outbound.SpeechResult{}, err
	}

	return outbound.SpeechResult{
		Samples:    samples,
		SampleRate: sampleRate,
	}, nil
}

func (k *kokoroSynthesizer) getRequest(ctx context.Context, text string) (*http.Request, error) {
	reqBody := kokoroSpeechRequest{
		Input:          text,
		Voice:          k.kokoroConfig.Voice,
		Speed:          k.kokoroConfig.Speed,
		ResponseFormat: "wav",
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		k.logger.Error(err, "Failed to marshal the synthesis request body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		k.kokoroConfig.ApiUrl+"/v1/audio/speech", bytes.NewBuffer(jsonPayload))
	if err != nil {
		k.logger.Error(err, "Failed to create the synthesis HTTP request")
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	return req, nil
}
