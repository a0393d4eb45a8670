// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/config"
	"github.com/bayarlink/bayarlink-backend/internal/handlers"
	"github.com/bayarlink/bayarlink-backend/internal/middleware"
	"github.com/bayarlink/bayarlink-backend/internal/services"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	clock := services.Clock(time.Now)

	notificationService := services.NewNotificationService(db, cfg)
	authService := services.NewAuthService(db, cfg, clock)
	productService := services.NewProductService(db, storageService)
	paymentLinkService := services.NewPaymentLinkService(db, clock, cfg.Payment.LinkExpiryDays, notificationService)
	paymentProofService := services.NewPaymentProofService(db, storageService, clock, notificationService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	paymentLinkHandler := handlers.NewPaymentLinkHandler(paymentLinkService)
	paymentHandler := handlers.NewPaymentHandler(paymentLinkService, paymentProofService)
	downloadHandler := handlers.NewDownloadHandler(paymentLinkService, storageService)
	adminHandler := handlers.NewAdminHandler(paymentProofService, dashboardService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))

	// One shared bucket across every upload endpoint
	uploadLimit := middleware.UploadRateLimit(cfg.RateLimit)

	// Health check
	r.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Authentication routes
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit(cfg.RateLimit))
	{
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
	}

	// Public buyer-facing routes
	r.GET("/payment/:token", paymentHandler.ShowPayment)
	r.POST("/payment/:token", uploadLimit, paymentHandler.SubmitProof)
	r.GET("/download/:token", downloadHandler.Download)

	// Product management
	products := r.Group("/products")
	products.Use(middleware.AuthRequired())
	{
		products.GET("", productHandler.GetProducts)
		products.POST("", uploadLimit, productHandler.CreateProduct)
		products.GET("/:id", productHandler.GetProduct)
		products.PUT("/:id", uploadLimit, productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}

	// Payment link management (links are immutable, no update route)
	paymentLinks := r.Group("/payment-links")
	paymentLinks.Use(middleware.AuthRequired())
	{
		paymentLinks.GET("", paymentLinkHandler.GetPaymentLinks)
		paymentLinks.POST("", paymentLinkHandler.CreatePaymentLink)
		paymentLinks.GET("/:id", paymentLinkHandler.GetPaymentLink)
		paymentLinks.DELETE("/:id", paymentLinkHandler.DeletePaymentLink)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/payment-proofs", adminHandler.GetPaymentProofs)
		admin.PATCH("/payment-proofs/:id/approve", adminHandler.ApprovePaymentProof)
		admin.PATCH("/payment-proofs/:id/reject", adminHandler.RejectPaymentProof)
		admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
	}

	return r, nil
}
