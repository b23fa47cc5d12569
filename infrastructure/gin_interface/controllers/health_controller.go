package controllers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/domain"
	"doc-narrator-api/infrastructure/gin_interface/dto"
	"github.com/gin-gonic/gin"
)

type HealthController interface {
	Health(c *gin.Context)
	HealthOllama(c *gin.Context)
	HealthKokoro(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type healthController struct {
	logger        outbound.LoggerPort
	cleaner       outbound.TextCleanerPort
	assets        []domain.Asset
	knownModels   []string
	modelOverride string
}

func NewHealthController(logger outbound.LoggerPort, cleaner outbound.TextCleanerPort,
	assets []domain.Asset, knownModels []string, modelOverride string) HealthController {
	return &healthController{
		logger:        logger,
		cleaner:       cleaner,
		assets:        assets,
		knownModels:   knownModels,
		modelOverride: modelOverride,
	}
}

func (h *healthController) Health(c *gin.Context) {
	ollama := h.ollamaHealth(c.Request.Context())
	kokoro := h.kokoroHealth()

	c.JSON(http.StatusOK, dto.HealthResponse{
		Ok:     ollama.Ok && kokoro.Ok,
		Ollama: ollama,
		Kokoro: kokoro,
	})
}

func (h *healthController) HealthOllama(c *gin.Context) {
	c.JSON(http.StatusOK, h.ollamaHealth(c.Request.Context()))
}

func (h *healthController) HealthKokoro(c *gin.Context) {
	c.JSON(http.StatusOK, h.kokoroHealth())
}

// ollamaHealth distinguishes an unreachable cleaning backend from a
// reachable one with no supported model installed.
func (h *healthController) ollamaHealth(ctx context.Context) dto.OllamaHealth {
	installed, err := h.cleaner.ListModels(ctx)
	if err != nil {
		return dto.OllamaHealth{
			Ok:          false,
			FoundModels: []string{},
			Detail:      fmt.Sprintf("Ollama not reachable: %v", err),
		}
	}

	found := make([]string, 0)
	for _, candidate := range h.knownModels {
		for _, name := range installed {
			if strings.Contains(name, candidate) {
				found = append(found, candidate)
				break
			}
		}
	}

	if h.modelOverride != "" {
		return dto.OllamaHealth{
			Ok:          true,
			FoundModels: found,
			Detail:      fmt.Sprintf("Using model override: %s", h.modelOverride),
		}
	}
	if len(found) == 0 {
		return dto.OllamaHealth{
			Ok:          false,
			FoundModels: found,
			Detail:      "No supported model found. Pull one of: " + strings.Join(h.knownModels, ", "),
		}
	}
	return dto.OllamaHealth{
		Ok:          true,
		FoundModels: found,
		Detail:      "Found: " + strings.Join(found, ", "),
	}
}

func (h *healthController) kokoroHealth() dto.KokoroHealth {
	files := make(map[string]bool, len(h.assets))
	ok := true
	for _, asset := range h.assets {
		_, err := os.Stat(asset.Dest)
		present := err == nil
		files[asset.Name] = present
		if !present {
			ok = false
		}
	}

	health := dto.KokoroHealth{
		Ok:    ok,
		Files: files,
	}
	if !ok {
		health.Detail = domain.ErrAssetMissing.Error()
	}
	return health
}

func (h *healthController) RegisterRoutes(g *gin.Engine) {
	g.GET("/health", h.Health)
	g.GET("/health/ollama", h.HealthOllama)
	g.GET("/health/kokoro", h.HealthKokoro)
}
