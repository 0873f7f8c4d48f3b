package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"donorhub/internal/config"
	"donorhub/internal/handlers"
	"donorhub/internal/members"
	adminMiddleware "donorhub/internal/middleware"
	"donorhub/internal/services"
	"donorhub/internal/stripeapi"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()
	if cfg.StripeKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required")
	}

	ledger := stripeapi.New(cfg.StripeKey, cfg.DonationCurrency)

	// Initialize Firestore member store
	var memberStore members.Store
	fsClient, err := services.InitFirestore(context.Background(), cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Warning: Firestore initialization failed: %v", err)
		log.Println("Member profiles will not be persisted until valid credentials are provided")
	} else {
		memberStore = members.NewFirestoreStore(fsClient, cfg.MembersCollection)
	}

	// Initialize Redis cache (optional)
	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("REDIS_URL not set, public report caching disabled")
	}

	emailSvc := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(ledger)
	publicHandler := handlers.NewPublicHandler(ledger, cache)
	memberHandler := handlers.NewMemberHandler(ledger, memberStore, emailSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Admin reporting and mutation routes
	admin := e.Group("/api/admin")
	admin.Use(adminMiddleware.RequireAdmin(cfg.AdminSecret))
	admin.GET("/balance", adminHandler.Balance)
	admin.GET("/donations", adminHandler.ListDonations)
	admin.GET("/donations/export", adminHandler.ExportDonations)
	admin.GET("/donations/:id", adminHandler.GetDonation)
	admin.GET("/payouts", adminHandler.ListPayouts)
	admin.GET("/disputes", adminHandler.ListDisputes)
	admin.POST("/refunds", adminHandler.CreateRefund)

	// Public routes
	e.GET("/api/public/donations/overview", publicHandler.Overview)
	e.GET("/api/public/donations", publicHandler.Donations)
	e.POST("/api/public/donations", publicHandler.Donations)
	e.POST("/api/members/register", memberHandler.Register)
	e.POST("/api/members/update", memberHandler.Update)
	e.POST("/api/request-payment", memberHandler.RequestPayment)

	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
