// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sealtrace/sealtrace-backend/internal/config"
	"github.com/sealtrace/sealtrace-backend/internal/handlers"
	"github.com/sealtrace/sealtrace-backend/internal/metrics"
	"github.com/sealtrace/sealtrace-backend/internal/middleware"
	"github.com/sealtrace/sealtrace-backend/internal/services"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, _ := services.NewStorageService(cfg)
	blacklist := services.NewTokenBlacklist(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db, storageService)
	productService := services.NewProductService(db, notificationService)
	verificationStore := services.NewGormVerificationStore(db)
	verificationService := services.NewVerificationService(verificationStore, notificationService)
	analyticsService := services.NewAnalyticsService(db)
	adminService := services.NewAdminService(db, notificationService, analyticsService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, blacklist)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	adminHandler := handlers.NewAdminHandler(adminService, analyticsService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())
	r.Use(metrics.Instrument())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", metrics.Handler())

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(blacklist), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/verify-email/:token", authHandler.VerifyEmail)
			auth.GET("/me", middleware.AuthRequired(blacklist), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", userHandler.GetPublicProfile)

			// Authenticated user routes
			protected := users.Group("")
			protected.Use(middleware.AuthRequired(blacklist))
			{
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.POST("/avatar", middleware.UploadRateLimit(), userHandler.UploadAvatar)
				protected.DELETE("/account", userHandler.DeleteAccount)
			}
		}

		// Product routes (manufacturer catalog management)
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired(blacklist))
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/verifications", productHandler.GetProductVerifications)

			manufacturer := products.Group("")
			manufacturer.Use(middleware.ManufacturerRequired())
			{
				manufacturer.POST("", productHandler.CreateProduct)
				manufacturer.PUT("/:id", productHandler.UpdateProduct)
				manufacturer.PUT("/:id/status", productHandler.UpdateStatus)
				manufacturer.DELETE("/:id", productHandler.DeleteProduct)
				manufacturer.GET("/:id/qrcode", productHandler.GetQRCode)
				manufacturer.POST("/:id/images", middleware.UploadRateLimit(), productHandler.UploadImage)
			}
		}

		// Verification routes (public; anyone with a code can scan)
		verify := v1.Group("/verify")
		verify.Use(middleware.VerifyRateLimit())
		{
			verify.POST("/qr", verificationHandler.VerifyQR)
			verify.POST("/nfc", verificationHandler.VerifyNFC)
		}

		// Analytics routes (manufacturer dashboard)
		analytics := v1.Group("/analytics")
		analytics.Use(middleware.AuthRequired(blacklist), middleware.ManufacturerRequired())
		{
			analytics.GET("/dashboard", analyticsHandler.GetDashboard)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(blacklist), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/users", adminHandler.GetUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/analytics", adminHandler.GetPlatformAnalytics)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
