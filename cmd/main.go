package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"compliance-service/internal/config"
	"compliance-service/internal/database"
	"compliance-service/internal/events"
	"compliance-service/internal/handlers"
	"compliance-service/internal/repository"
	"compliance-service/internal/services"
)

func main() {
	// Load .env for local development (no-op when absent)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✓ Connected to database")

	// Run automated database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional: caching and distributed refresh locks
	redisClient := config.InitRedis(cfg)
	if redisClient != nil {
		log.Println("✓ Redis client initialized")
	}

	// Structured logger for services and events
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize repository and refresh lock
	repo := repository.NewComplianceRepository(db, redisClient)
	locker := repository.NewRefreshLocker(redisClient, time.Duration(cfg.RefreshLockSeconds)*time.Second)

	// Initialize NATS events publisher (non-fatal when NATS is absent)
	var publisher services.EventPublisher
	natsPublisher, err := events.NewPublisher(logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
	} else {
		log.Println("✓ NATS events publisher initialized")
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	// Initialize services
	complianceService := services.NewComplianceService(repo, repo, locker, publisher, logger)

	// Subscribe to profile updates for automatic refresh
	if subscriber, err := events.NewSubscriber(complianceService, logger); err != nil {
		log.Printf("WARNING: Failed to initialize events subscriber: %v (automatic refresh disabled)", err)
	} else if err := subscriber.Start(); err != nil {
		log.Printf("WARNING: Failed to start events subscriber: %v", err)
	} else {
		log.Println("✓ NATS events subscriber initialized")
		defer subscriber.Close()
	}

	// Initialize handlers
	complianceHandler := handlers.NewComplianceHandler(complianceService, repo)

	// Setup router
	router := setupRouter(complianceHandler, db)

	// Start server
	log.Printf("Compliance Service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(complianceHandler *handlers.ComplianceHandler, db *gorm.DB) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "compliance-service",
		})
	})

	// Liveness probe - simple check that the service is running
	router.GET("/livez", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness probe - check that DB is accessible
	router.GET("/readyz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(503, gin.H{"status": "error", "message": "database not available"})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "error", "message": "database ping failed"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Business profile CRUD
		profiles := v1.Group("/profiles")
		{
			profiles.POST("", complianceHandler.CreateProfile)
			profiles.GET("/:id", complianceHandler.GetProfile)
			profiles.PUT("/:id", complianceHandler.UpdateProfile)
		}

		// Compliance pipeline: refresh + derived read models
		compliance := v1.Group("/compliance")
		{
			compliance.POST("/:profileId/refresh", complianceHandler.RefreshObligations)
			compliance.GET("/:profileId/obligations", complianceHandler.ListObligations)
			compliance.GET("/:profileId/deadlines", complianceHandler.ListDeadlines)
			compliance.GET("/:profileId/alerts", complianceHandler.ListAlerts)
			compliance.GET("/:profileId/summary", complianceHandler.GetSummary)
		}

		// Obligation status updates (mark completed / reopen)
		obligations := v1.Group("/obligations")
		{
			obligations.PATCH("/:id/status", complianceHandler.UpdateObligationStatus)
		}
	}

	return router
}
