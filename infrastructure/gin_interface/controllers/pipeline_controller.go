package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"doc-narrator-api/application/ports/inbound"
	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/domain"
	"doc-narrator-api/infrastructure/gin_interface/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PipelineController interface {
	Extract(c *gin.Context)
	ExtractNewJob(c *gin.Context)
	Refine(c *gin.Context)
	Synthesize(c *gin.Context)
	Status(c *gin.Context)
	Audio(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type pipelineController struct {
	logger       outbound.LoggerPort
	orchestrator inbound.StageOrchestratorPort
	registry     inbound.JobRegistryPort
	store        outbound.ArtifactStorePort
}

func NewPipelineController(logger outbound.LoggerPort, orchestrator inbound.StageOrchestratorPort,
	registry inbound.JobRegistryPort, store outbound.ArtifactStorePort) PipelineController {
	return &pipelineController{
		logger:       logger,
		orchestrator: orchestrator,
		registry:     registry,
		store:        store,
	}
}

func (p *pipelineController) Extract(c *gin.Context) {
	jobID := c.Param("job_id")

	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "a pdf file upload is required"})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	events, err := p.orchestrator.RunExtract(c.Request.Context(), jobID, header.Filename, file)
	if err != nil {
		p.abortStageError(c, err)
		return
	}

	streamEvents(c, events)
}

// ExtractNewJob allocates a fresh job ID, registers an optional out_dir
// override, and runs extraction. The allocated ID is the first streamed
// event so the caller can address later stages.
func (p *pipelineController) ExtractNewJob(c *gin.Context) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "a pdf file upload is required"})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	jobID := uuid.NewString()

	stem := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if stem == "" || stem == "." {
		stem = "document"
	}

	if outDir := strings.TrimSpace(c.PostForm("out_dir")); outDir != "" {
		p.registry.Register(jobID, outDir, "")
	} else {
		p.registry.Register(jobID, "", stem)
	}

	events, err := p.orchestrator.RunExtract(c.Request.Context(), jobID, header.Filename, file)
	if err != nil {
		p.abortStageError(c, err)
		return
	}

	c.SSEvent("job", gin.H{"job_id": jobID})
	c.Writer.Flush()
	streamEvents(c, events)
}

func (p *pipelineController) Refine(c *gin.Context) {
	events, err := p.orchestrator.RunRefine(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		p.abortStageError(c, err)
		return
	}

	streamEvents(c, events)
}

func (p *pipelineController) Synthesize(c *gin.Context) {
	events, err := p.orchestrator.RunSynthesize(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		p.abortStageError(c, err)
		return
	}

	streamEvents(c, events)
}

func (p *pipelineController) Status(c *gin.Context) {
	jobID := c.Param("job_id")

	status, err := p.registry.Status(c.Request.Context(), jobID)
	if err != nil {
		p.logger.ErrorWithFields(err, "failed to derive job status", map[string]interface{}{"job_id": jobID})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ref := p.registry.Resolve(jobID)
	c.JSON(http.StatusOK, dto.JobStatusResponse{
		JobID:   ref.ID,
		DocName: ref.DocName,
		OutDir:  ref.Dir,
		Stages:  status,
	})
}

func (p *pipelineController) Audio(c *gin.Context) {
	ref := p.registry.Resolve(c.Param("job_id"))
	audioName := domain.AudioName(ref.DocName)

	exists, err := p.store.Exists(c.Request.Context(), ref, audioName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.AbortWithStatusJSON(http.StatusNotFound,
			gin.H{"error": audioName + " not found. Run the tts stage first."})
		return
	}

	audio, err := p.store.Get(c.Request.Context(), ref, audioName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		_ = audio.Close()
	}()

	c.DataFromReader(http.StatusOK, -1, "audio/wav", audio, map[string]string{
		"Content-Disposition": `attachment; filename="` + audioName + `"`,
	})
}

func (p *pipelineController) RegisterRoutes(g *gin.Engine) {
	g.POST("/jobs/extract", p.ExtractNewJob)
	g.POST("/jobs/:job_id/extract", p.Extract)
	g.POST("/jobs/:job_id/refine", p.Refine)
	g.POST("/jobs/:job_id/tts", p.Synthesize)
	g.GET("/jobs/:job_id/status", p.Status)
	g.GET("/jobs/:job_id/audio", p.Audio)
}

func (p *pipelineController) abortStageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		p.logger.Error(err, "failed to start stage")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
