package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"price-prediction/internal/auth"
	"price-prediction/internal/bank"
	"price-prediction/internal/config"
	"price-prediction/internal/handlers"
	"price-prediction/internal/jobs"
	"price-prediction/internal/market"
	"price-prediction/internal/models"
	"price-prediction/internal/oracle"
	"price-prediction/internal/rewards"
	"price-prediction/internal/store"
)

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.App.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil

	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db)

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.App.SQLitePath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db)

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, "market"), nil
	}
	return nil, errors.New("unknown store backend")
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Open the state store
	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.App.StoreBackend, err)
	}
	log.Printf("State store ready (backend: %s)", cfg.App.StoreBackend)

	// Collaborators: bank ledger, price oracle, rewards sink
	ledger := bank.NewMemoryBank()
	kvOracle := oracle.NewKVOracle(st)
	sink := rewards.NewStakingSink(ledger, cfg.Market.RewardsAddr)

	// Market engine
	engine := market.NewEngine(st, kvOracle, ledger, sink, cfg.Market.MarketAddr)

	marketCfg := models.Config{
		NextRoundSeconds: cfg.Market.NextRoundSeconds,
		MinimumBet:       cfg.Market.MinimumBet,
		BurnFee:          cfg.Market.BurnFee,
		StakerFee:        cfg.Market.StakerFee,
		BurnAddr:         cfg.Market.BurnAddr,
		OracleAddr:       cfg.Market.OracleAddr,
		RewardsAddr:      cfg.Market.RewardsAddr,
	}

	marketID, err := engine.Instantiate(context.Background(), cfg.Market.OwnerAddr, marketCfg, cfg.Market.SettleDenom)
	if err != nil {
		// An already-instantiated store is fine on restart.
		status, statusErr := engine.Status(context.Background())
		if statusErr != nil || status.MarketID == "" {
			log.Fatalf("Failed to instantiate market: %v", err)
		}
		marketID = status.MarketID
		log.Printf("Resuming existing market %s", marketID)
	} else {
		log.Printf("Instantiated market %s", marketID)
	}

	// Start the round advancer job
	advancer := jobs.NewRoundAdvancer(engine, time.Duration(cfg.Market.AdvanceInterval)*time.Second)
	go advancer.Start()

	// Initialize handlers
	marketHandler := handlers.NewMarketHandler(engine, cfg.Market.SettleDenom)
	adminHandler := handlers.NewAdminHandler(engine, kvOracle, cfg.Market.OwnerAddr)
	authHandler := handlers.NewAuthHandler(ledger, cfg.Market.SettleDenom, cfg.App.InitialBalance)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"market_id": marketID,
			"time":      time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication routes (public)
	router.POST("/auth/wallet", authHandler.WalletLogin)

	// Public market routes
	router.GET("/api/market/config", marketHandler.GetConfig)
	router.GET("/api/market/status", marketHandler.GetStatus)
	router.GET("/api/market/position", marketHandler.GetPosition)
	router.GET("/api/market/rounds/:id", marketHandler.GetFinishedRound)
	router.POST("/api/market/advance", marketHandler.AdvanceRound)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/wallet/balance", authHandler.GetBalance)

		api.POST("/market/bet/bull", marketHandler.BetBull)
		api.POST("/market/bet/bear", marketHandler.BetBear)
		api.POST("/market/collect", marketHandler.CollectWinnings)
		api.POST("/market/fund-stakers", marketHandler.FundStakers)
	}

	// Admin routes (protected + owner only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.OwnerMiddleware())
	{
		admin.POST("/config", adminHandler.UpdateConfig)
		admin.POST("/hault", adminHandler.Hault)
		admin.POST("/resume", adminHandler.Resume)
		admin.POST("/oracle/price", adminHandler.UpdatePrice)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	advancer.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
