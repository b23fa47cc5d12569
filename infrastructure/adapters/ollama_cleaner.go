package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/config"
)

const cleanerSystemPrompt = "You are a professional editor. Remove citations, page numbers, " +
	"and image captions. Join words split by hyphens. Do not change the content. " +
	"Retain headers. Do not add any text."

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Stream   bool            `json:"stream"`
	Messages []ollamaMessage `json:"messages"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type ollamaCleaner struct {
	ContentFetcher
	logger       outbound.LoggerPort
	ollamaConfig *config.OllamaConfig
}

// NewOllamaCleaner builds the client for the Ollama text-cleaning service.
// The service is a shared, rate-limited local backend: callers drive it one
// chunk at a time.
func NewOllamaCleaner(contentFetcher ContentFetcher, ollamaConfig *config.OllamaConfig, logger outbound.LoggerPort) outbound.TextCleanerPort {
	return &ollamaCleaner{
		ContentFetcher: contentFetcher,
		logger:         logger,
		ollamaConfig:   ollamaConfig,
	}
}

func (o *ollamaCleaner) Clean(ctx context.Context, model string, chunk string) (string, error) {
	reqBody := ollamaChatRequest{
		Model:  model,
		Stream: false,
		Messages: []ollamaMessage{
			{Role: "system", Content: cleanerSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Clean this for TTS: \n\n%s", chunk)},
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		o.logger.Error(err, "Failed to marshal the chat request body")
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.ollamaConfig.ApiUrl+"/api/chat", bytes.NewBuffer(jsonPayload))
	if err != nil {
		o.logger.Error(err, "Failed to create the chat HTTP request")
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	payload, err := o.FetchContent(req)
	if err != nil {
		return "", err
	}

	var chatResponse ollamaChatResponse
	if err := json.Unmarshal(payload, &chatResponse); err != nil {
		o.logger.Error(err, "Failed to unmarshal the chat response")
		return "", err
	}

	return chatResponse.Message.Content, nil
}

func (o *ollamaCleaner) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.ollamaConfig.ApiUrl+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	payload, err := o.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var tags ollamaTagsResponse
	if err := json.Unmarshal(payload, &tags); err != nil {
		o.logger.Error(err, "Failed to unmarshal the tags response")
		return nil, err
	}

	names := make([]string, 0, len(tags.Models))
	for _, model := range tags.Models {
		names = append(names, model.Name)
	}
	return names, nil
}
