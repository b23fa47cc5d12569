package controllers

import (
	"net/http"

	"doc-narrator-api/application/ports/inbound"
	"doc-narrator-api/application/ports/outbound"
	"github.com/gin-gonic/gin"
)

type AssetsController interface {
	Download(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type assetsController struct {
	logger     outbound.LoggerPort
	downloader inbound.AssetDownloaderPort
}

func NewAssetsController(logger outbound.LoggerPort, downloader inbound.AssetDownloaderPort) AssetsController {
	return &assetsController{
		logger:     logger,
		downloader: downloader,
	}
}

func (a *assetsController) Download(c *gin.Context) {
	events, err := a.downloader.Download(c.Request.Context())
	if err != nil {
		a.logger.Error(err, "failed to start asset download")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	streamEvents(c, events)
}

func (a *assetsController) RegisterRoutes(g *gin.Engine) {
	g.POST("/download-kokoro", a.Download)
	g.POST("/download-assets", a.Download)
}
