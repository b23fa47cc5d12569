package config

import "os"

// KnownModels are the cleaning models the pipeline knows how to drive,
// in preference order. The first installed one wins unless LLM_MODEL is set.
var KnownModels = []string{
	"qwen3:0.6b",
	"qwen3:1.7b",
	"qwen3:4b",
	"llama3.2:1b",
	"llama3.2:3b",
	"gemma3:1b",
	"gemma3:4b",
	"gemma3:12b",
	"phi3.5:latest",
	"phi4:14b",
	"mistral:7b",
	"smollm3:3b",
	"granite4:1b",
	"granite4:3b",
}

type OllamaConfig struct {
	ApiUrl        string
	ModelOverride string
}

func GetOllamaConfig() (*OllamaConfig, error) {
	apiUrl := os.Getenv("OLLAMA_API_URL")
	if apiUrl == "" {
		apiUrl = "http://localhost:11434"
	}

	return &OllamaConfig{
		ApiUrl:        apiUrl,
		ModelOverride: os.Getenv("LLM_MODEL"),
	}, nil
}
