package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"rewind-backend/internal/gallery"
	"rewind-backend/internal/metrics"
	"rewind-backend/internal/middleware"
	"rewind-backend/internal/records"
	"rewind-backend/internal/workflow"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Capturer        ImageCapturer
	Publisher       CoinPublisher
	Store           records.Store
	Registry        *workflow.Registry
	Gallery         *gallery.Gallery
	Holders         HolderLister
	Metrics         *metrics.Collector
	Logger          *zap.Logger
	BaseURL         string
	WalletJWTSecret string
}

func NewRouter(d Deps) *gin.Engine {
	RegisterValidators()
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(middleware.Metrics(d.Metrics))
	router.SetHTMLTemplate(frameTemplate)

	imagesHandler := NewImagesHandler(d.Capturer)
	uploadHandler := NewUploadHandler(d.Publisher)
	coinsHandler := NewCoinsHandler(d.Publisher)
	recordsHandler := NewRecordsHandler(d.Store, d.BaseURL)
	sessionsHandler := NewSessionsHandler(d.Registry)
	galleryHandler := NewGalleryHandler(d.Gallery, d.Metrics)
	framesHandler := NewFramesHandler(d.Gallery)

	// Health check and metrics (no auth)
	router.GET("/health", HealthHandler)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// Frames are fetched by Farcaster clients
	router.GET("/frames/:address", framesHandler.Frame)
	router.GET("/frames/:address/image", framesHandler.FrameImage)

	api := router.Group("/api/v1")
	auth := middleware.WalletAuth(d.WalletJWTSecret)

	// Capture collaborators
	api.POST("/image-generation", imagesHandler.GenerateImage)
	api.POST("/social-link-resolution", imagesHandler.ResolveLink)

	// Publish steps
	api.POST("/content-upload", auth, uploadHandler.Upload)
	api.POST("/coin-deploy", auth, coinsHandler.Deploy)

	// Records
	api.GET("/records", recordsHandler.ListRecords)
	api.POST("/records", auth, recordsHandler.CreateRecord)
	api.GET("/records/stats", recordsHandler.Stats)
	api.GET("/records/:address", recordsHandler.GetRecord)

	// Sessions
	api.POST("/sessions", sessionsHandler.CreateSession)
	api.GET("/sessions/:session_id", sessionsHandler.GetSession)
	api.POST("/sessions/:session_id/capture", sessionsHandler.Capture)
	api.POST("/sessions/:session_id/accept", sessionsHandler.AcceptPreview)
	api.PUT("/sessions/:session_id/form", sessionsHandler.UpdateForm)
	api.POST("/sessions/:session_id/submit", auth, sessionsHandler.Submit)
	api.POST("/sessions/:session_id/dismiss", sessionsHandler.Dismiss)
	api.POST("/sessions/:session_id/reset", sessionsHandler.Reset)

	// Gallery
	api.GET("/gallery/leaderboard", galleryHandler.Leaderboard)
	api.GET("/gallery/surprise", galleryHandler.Surprise)
	api.POST("/gallery/tips", auth, galleryHandler.Tip)
	api.POST("/gallery/battles", auth, galleryHandler.StartBattle)
	api.GET("/gallery/battles/:battle_id", galleryHandler.GetBattle)
	api.POST("/gallery/battles/:battle_id/votes", auth, galleryHandler.Vote)
	api.POST("/gallery/battles/:battle_id/end", auth, galleryHandler.EndBattle)
	api.GET("/gallery/comments/:address", galleryHandler.ListComments)
	api.POST("/gallery/comments/:address", auth, galleryHandler.AddComment)
	if d.Holders != nil {
		api.GET("/gallery/holders/:address", NewHoldersHandler(d.Holders).TopHolders)
	}

	return router
}
