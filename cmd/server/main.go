package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pollmarket/internal/auth"
	"pollmarket/internal/config"
	"pollmarket/internal/database"
	"pollmarket/internal/handlers"
	"pollmarket/internal/jobs"
	"pollmarket/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	initialBalance, err := decimal.NewFromString(cfg.App.InitialPointBalance)
	if err != nil {
		log.Fatalf("Invalid INITIAL_POINT_BALANCE: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	userService := services.NewUserService(db, initialBalance)
	pollService := services.NewPollService(db)
	betService := services.NewBetService(db)
	settlementService := services.NewSettlementService(db)
	apiKeyService := services.NewAPIKeyService(db)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	pollHandler := handlers.NewPollHandler(pollService)
	betHandler := handlers.NewBetHandler(betService)
	adminHandler := handlers.NewAdminHandler(settlementService, userService)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService)

	// Start link token sweeper (runs every 15 minutes)
	sweeper := jobs.NewLinkTokenSweeper(userService, 15*time.Minute)
	go sweeper.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Public routes
		api.POST("/users/sync", userHandler.Sync)
		api.POST("/users/link-token", userHandler.CreateLinkToken)
		api.GET("/polls", pollHandler.ListPolls)
		api.GET("/polls/:id", pollHandler.GetPoll)
		api.GET("/polls/:id/history", pollHandler.GetProbabilityHistory)
		api.GET("/polls/:id/bets", betHandler.GetPollBets)
		api.GET("/outcomes/:id/bets", betHandler.GetOutcomeBets)
		api.GET("/users/:id/stats", userHandler.Stats)

		// Authenticated routes
		authed := api.Group("")
		authed.Use(auth.Middleware(apiKeyService))
		{
			authed.GET("/users/me", userHandler.Me)
			authed.POST("/users/link", userHandler.RedeemLinkToken)
			authed.GET("/polls/mine", pollHandler.GetUserPolls)
			authed.GET("/bets/mine", betHandler.GetMyBets)
			authed.GET("/keys", apiKeyHandler.ListAPIKeys)
			authed.POST("/keys", apiKeyHandler.CreateAPIKey)
			authed.DELETE("/keys/:id", apiKeyHandler.RevokeAPIKey)

			// Rate-limited mutations
			limited := authed.Group("")
			limited.Use(handlers.RateLimitMiddleware(cfg.App.RateLimitPerSecond, cfg.App.RateLimitBurst))
			{
				limited.POST("/polls", pollHandler.CreatePoll)
				limited.POST("/bets", betHandler.PlaceBet)
				limited.POST("/admin/polls/:id/resolve", adminHandler.ResolvePoll)
				limited.POST("/admin/polls/:id/cancel", adminHandler.CancelPoll)
				limited.POST("/admin/users/:id/promote", adminHandler.MakeAdmin)
			}
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sweeper.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
