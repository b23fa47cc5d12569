package main

import (
	"fmt"
	"os"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/application/services"
	"doc-narrator-api/config"
	"doc-narrator-api/infrastructure/adapters"
	"doc-narrator-api/infrastructure/gin_interface/controllers"
	"doc-narrator-api/middleware"
	"doc-narrator-api/mock"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	storageConfig, err := config.GetStorageConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get storage config")
	}

	doclingConfig, err := config.GetDoclingConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get docling config")
	}

	ollamaConfig, err := config.GetOllamaConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get ollama config")
	}

	kokoroConfig, err := config.GetKokoroConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get kokoro config")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	assetsConfig, err := config.GetAssetsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get assets config")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	contentFetcher := adapters.NewContentFetcher(zeroLogger)

	var store outbound.ArtifactStorePort
	if storageConfig.Backend == config.StorageBackendS3 {
		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
			Config:            aws.Config{Region: aws.String(storageConfig.Region)},
		}))
		store = adapters.NewS3ArtifactStore(s3.New(sess), storageConfig)
	} else {
		store = adapters.NewFSArtifactStore(zeroLogger)
	}

	var extractor outbound.DocumentExtractorPort
	var cleaner outbound.TextCleanerPort
	var synthesizer outbound.SpeechSynthesizerPort
	if os.Getenv("MOCK_COLLABORATORS") != "" {
		zeroLogger.Warn("MOCK_COLLABORATORS set, using in-process fake engines")
		extractor = &mock.DocumentExtractor{}
		cleaner = &mock.TextCleaner{}
		synthesizer = &mock.SpeechSynthesizer{}
	} else {
		extractor = adapters.NewDoclingExtractor(contentFetcher, doclingConfig, zeroLogger)
		cleaner = adapters.NewOllamaCleaner(contentFetcher, ollamaConfig, zeroLogger)
		synthesizer = adapters.NewKokoroSynthesizer(contentFetcher, kokoroConfig, zeroLogger)
	}

	segmenter := services.NewTextSegmenter()

	registry := services.NewJobRegistry(zeroLogger, store, storageConfig.BaseDir)

	orchestrator := services.NewStageOrchestrator(zeroLogger, workerPool, registry, store,
		segmenter, extractor, cleaner, synthesizer, adapters.NewWavCodec(),
		services.StageOrchestratorParams{
			RefineChunkSize:     pipelineConfig.RefineChunkSize,
			TTSChunkSize:        pipelineConfig.TTSChunkSize,
			AbortOnChunkFailure: pipelineConfig.TTSChunkFailure == config.ChunkFailureAbort,
			ModelOverride:       ollamaConfig.ModelOverride,
			KnownModels:         config.KnownModels,
		})

	assetFetcher := adapters.NewAssetFetcher(zeroLogger)

	downloader := services.NewAssetDownloader(zeroLogger, workerPool, assetFetcher,
		assetsConfig.ModelsDir, assetsConfig.Manifest)

	pipelineController := controllers.NewPipelineController(zeroLogger, orchestrator, registry, store)
	healthController := controllers.NewHealthController(zeroLogger, cleaner, assetsConfig.Manifest,
		config.KnownModels, ollamaConfig.ModelOverride)
	assetsController := controllers.NewAssetsController(zeroLogger, downloader)

	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if jwksUrl := os.Getenv("JWKS_URL"); jwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(jwksUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	pipelineController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)
	assetsController.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	err = router.Run(":" + port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
