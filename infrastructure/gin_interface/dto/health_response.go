package dto

type OllamaHealth struct {
	Ok          bool     `json:"ok"`
	FoundModels []string `json:"found_models"`
	Detail      string   `json:"detail"`
}

type KokoroHealth struct {
	Ok     bool            `json:"ok"`
	Files  map[string]bool `json:"files"`
	Detail string          `json:"detail,omitempty"`
}

type HealthResponse struct {
	Ok     bool         `json:"ok"`
	Ollama OllamaHealth `json:"ollama"`
	Kokoro KokoroHealth `json:"kokoro"`
}
