package config

import "os"

type DoclingConfig struct {
	ApiUrl string
}

func GetDoclingConfig() (*DoclingConfig, error) {
	apiUrl := os.Getenv("DOCLING_API_URL")
	if apiUrl == "" {
		apiUrl = "http://localhost:5001"
	}

	return &DoclingConfig{
		ApiUrl: apiUrl,
	}, nil
}
