package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	einomodel "github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Manshi-Rathour/FilesGPT/internal/chunker"
	"github.com/Manshi-Rathour/FilesGPT/internal/config"
	"github.com/Manshi-Rathour/FilesGPT/internal/extract"
	"github.com/Manshi-Rathour/FilesGPT/internal/pkg/jwt"
	"github.com/Manshi-Rathour/FilesGPT/internal/repository"
	"github.com/Manshi-Rathour/FilesGPT/internal/service"
	"github.com/Manshi-Rathour/FilesGPT/internal/vectorstore"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, chat einomodel.BaseChatModel, log *zap.Logger) *gin.Engine {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(CORS())

	// Health check endpoints
	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/live", livenessCheck)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":      "FilesGPT",
			"version":      "1.0.0",
			"status":       "running",
			"health_check": "/health",
		})
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Shared clients, constructed once and injected
	embeddingSvc := service.NewEmbeddingService(service.EmbeddingConfig{
		APIKey:        cfg.EmbeddingAPIKey,
		BaseURL:       cfg.EmbeddingBaseURL,
		Model:         cfg.EmbeddingModel,
		Dimensions:    cfg.EmbeddingDimensions,
		BatchSize:     cfg.EmbeddingBatchSize,
		QueryPrefix:   cfg.EmbeddingQueryPrefix,
		PassagePrefix: cfg.EmbeddingPassagePrefix,
	})
	store := vectorstore.NewPGVector(db)
	splitter := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpireMinutes)

	// Services
	ingestSvc := service.NewIngestService(splitter, embeddingSvc, store, uploadRepo, cfg.EmbeddingBatchSize, log)
	uploadSvc := service.NewUploadService(uploadRepo, ingestSvc, extract.NewWebFetcher(), cfg.StoragePath, log)
	answerSvc := service.NewAnswerService(embeddingSvc, store, chat, log)
	lifecycleSvc := service.NewLifecycleService(store, uploadRepo, historyRepo, log)
	authSvc := service.NewAuthService(userRepo, jwtManager)

	// Handlers
	authHandler := NewAuthHandler(authSvc)
	documentHandler := NewDocumentHandler(uploadSvc, lifecycleSvc, cfg.MaxUploadSize)
	queryHandler := NewQueryHandler(answerSvc)
	historyHandler := NewHistoryHandler(historyRepo)
	accountHandler := NewAccountHandler(lifecycleSvc, userRepo)
	authMW := NewAuthMiddleware(jwtManager)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMW.JWTAuth(), authHandler.Me)
	}

	v1 := r.Group("/v1", authMW.JWTAuth())
	{
		documents := v1.Group("/documents")
		{
			documents.GET("", documentHandler.List)
			documents.POST("/file", documentHandler.UploadFile)
			documents.POST("/website", documentHandler.UploadWebsite)
			documents.GET("/:id", documentHandler.Get)
			documents.DELETE("/:id", documentHandler.Delete)
		}

		v1.POST("/query", queryHandler.Query)

		history := v1.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.POST("", historyHandler.Save)
			history.GET("/:id", historyHandler.Get)
		}

		v1.DELETE("/account", accountHandler.Delete)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "filesgpt",
	})
}

func readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func atoiParam(s string) (int, error) {
	return strconv.Atoi(s)
}
