// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/handlers"
	"github.com/trendlens/trendlens-backend/internal/middleware"
	"github.com/trendlens/trendlens-backend/internal/services"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.RecalcService) {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, err := services.NewStorageService(db, cfg)
	if err != nil {
		logrus.WithError(err).Warn("Object storage unavailable, image uploads disabled")
		storageService, _ = services.NewStorageService(db, &config.Config{})
	}

	authService := services.NewAuthService(db, cfg)
	signalService := services.NewSignalService(db, cfg)
	productService := services.NewProductService(db, cfg)
	mergeService := services.NewMergeService(db, cfg, notificationService)
	recalcService := services.NewRecalcService(db, cfg, mergeService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	signalHandler := handlers.NewSignalHandler(signalService)
	productHandler := handlers.NewProductHandler(productService)
	adminHandler := handlers.NewAdminHandler(mergeService, recalcService, productService, storageService, notificationService, authService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Scraper ingestion routes
		ingest := v1.Group("/")
		ingest.Use(middleware.IngestRateLimit())
		ingest.Use(middleware.ScraperAuthRequired(authService))
		{
			ingest.POST("/signals", signalHandler.IngestSignal)
			ingest.POST("/reviews", signalHandler.IngestReview)
		}

		// Public catalog routes
		catalog := v1.Group("/")
		catalog.Use(middleware.GeneralRateLimit())
		{
			catalog.GET("/products", productHandler.GetProducts)
			catalog.GET("/products/:id", productHandler.GetProduct)
			catalog.GET("/products/:id/score", productHandler.GetProductScore)
			catalog.GET("/products/:id/history", productHandler.GetScoreHistory)
			catalog.GET("/trending", productHandler.GetTrending)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/login", middleware.AuthRateLimit(), authHandler.Login)

			protected := admin.Group("/")
			protected.Use(middleware.AdminRequired())
			{
				protected.POST("/merge", adminHandler.MergeProducts)
				protected.POST("/recalculate", adminHandler.Recalculate)
				protected.POST("/dedupe", adminHandler.Dedupe)
				protected.POST("/products/:id/publish", adminHandler.PublishProduct)
				protected.POST("/products/:id/image", adminHandler.UploadProductImage)
				protected.DELETE("/products/:id", adminHandler.DeleteProduct)
				protected.GET("/notifications", adminHandler.GetNotifications)
				protected.POST("/notifications/:id/read", adminHandler.MarkNotificationRead)
				protected.POST("/scrapers", adminHandler.CreateScraperSource)
			}
		}
	}

	return r, recalcService
}
