package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"crm-service/internal/config"
	"crm-service/internal/handlers"
	"crm-service/internal/mail"
	"crm-service/internal/metrics"
	"crm-service/internal/middleware"
	"crm-service/internal/models"
	natsClient "crm-service/internal/nats"
	"crm-service/internal/redis"
	"crm-service/internal/repository"
	"crm-service/internal/services"
)

func main() {
	// Load configuration
	cfg := config.New()
	logger := initLogger(cfg)

	// Initialize database connection
	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auto-migrate models
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis connection
	var redisClient *redis.Client
	redisClient, err = redis.NewClient(cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Rate limiting will use in-memory counters")
		redisClient = nil
	} else {
		log.Println("Connected to Redis successfully")
	}

	// Initialize NATS connection for event publishing
	var nc *natsClient.Client
	nc, err = natsClient.NewClient(cfg.NATS)
	if err != nil {
		log.Printf("Warning: Failed to connect to NATS: %v", err)
		log.Println("Event publishing will be disabled")
		nc = nil
	} else {
		log.Println("Connected to NATS successfully")
		defer nc.Close()
	}

	// Initialize metrics
	metricsCollector := metrics.New(metrics.Config{
		ServiceName: "crm-service",
		Namespace:   "crm",
		Subsystem:   "api",
	})
	leadsImported := metricsCollector.RegisterCounter(
		"leads_imported_total",
		"Lead rows processed by CSV import, by outcome",
		[]string{"outcome"},
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	contactRepo := repository.NewContactRepository(db)
	dealRepo := repository.NewDealRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// Initialize services
	jwtService := services.NewJWTService(cfg.JWT)
	passwordService := services.NewPasswordService()
	mailer := mail.New(cfg.Email, logger)

	authService := services.NewAuthService(userRepo, jwtService, passwordService, logger)
	orgService := services.NewOrganizationService(orgRepo, logger)
	leadService := services.NewLeadService(leadRepo, orgRepo, mailer, nc, logger)
	contactService := services.NewContactService(contactRepo, orgRepo, nc, logger)
	dealService := services.NewDealService(dealRepo, contactRepo, orgRepo, nc, logger)
	activityService := services.NewActivityService(activityRepo, logger)
	tagService := services.NewTagService(tagRepo, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, nc)
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	leadHandler := handlers.NewLeadHandler(leadService, leadsImported)
	contactHandler := handlers.NewContactHandler(contactService)
	dealHandler := handlers.NewDealHandler(dealService)
	activityHandler := handlers.NewActivityHandler(activityService)
	tagHandler := handlers.NewTagHandler(tagService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, orgService, authService)
	var throttleCounter middleware.ThrottleCounter
	if redisClient != nil {
		throttleCounter = redisClient
	}
	rateLimiter := middleware.NewRateLimiter(throttleCounter, cfg.RateLimit, logger)

	router := setupRouter(
		cfg,
		logger,
		healthHandler,
		authHandler,
		orgHandler,
		leadHandler,
		contactHandler,
		dealHandler,
		activityHandler,
		tagHandler,
		authMiddleware,
		rateLimiter,
		metricsCollector,
	)

	// Setup server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting crm-service on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	log.Println("Server exited")
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	orgHandler *handlers.OrganizationHandler,
	leadHandler *handlers.LeadHandler,
	contactHandler *handlers.ContactHandler,
	dealHandler *handlers.DealHandler,
	activityHandler *handlers.ActivityHandler,
	tagHandler *handlers.TagHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	metricsCollector *metrics.Metrics,
) *gin.Engine {
	// Set Gin mode
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-API-KEY"}
	corsConfig.AllowCredentials = true

	// Global middleware
	router.Use(cors.New(corsConfig))                // CORS
	router.Use(gin.Recovery())                      // Panic recovery
	router.Use(middleware.RequestID())              // Correlation IDs
	router.Use(middleware.StructuredLogger(logger)) // Structured logging
	router.Use(metricsCollector.Middleware())       // Prometheus metrics
	router.Use(authMiddleware.Authenticate())       // Principal resolution
	router.Use(rateLimiter.Limit())                 // Request throttling

	// Metrics endpoint (Prometheus scraping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication
		v1.POST("/register", authHandler.Register)
		v1.POST("/token", authHandler.Token)
		v1.POST("/token/refresh", authHandler.Refresh)

		auth := v1.Group("/auth", middleware.RequireAuth())
		{
			auth.GET("/me", authHandler.Me)
		}

		// Organizations
		orgs := v1.Group("/organizations", middleware.RequireAuth())
		{
			orgs.GET("", orgHandler.List)
			orgs.POST("", orgHandler.Create)
			orgs.GET("/:id", orgHandler.Get)
			orgs.PATCH("/:id", orgHandler.Update)
			orgs.PUT("/:id", orgHandler.Update)
			orgs.DELETE("/:id", orgHandler.Delete)
			orgs.POST("/:id/regenerate-key", orgHandler.RegenerateKey)
		}

		// Leads
		leads := v1.Group("/leads", middleware.RequireAuth())
		{
			leads.GET("", leadHandler.List)
			leads.POST("", leadHandler.Create)
			leads.POST("/upload_csv", leadHandler.UploadCSV)
			leads.GET("/:id", leadHandler.Get)
			leads.PATCH("/:id", leadHandler.Update)
			leads.PUT("/:id", leadHandler.Update)
			leads.DELETE("/:id", leadHandler.Delete)
		}

		// Contacts
		contacts := v1.Group("/contacts", middleware.RequireAuth())
		{
			contacts.GET("", contactHandler.List)
			contacts.POST("", contactHandler.Create)
			contacts.GET("/:id", contactHandler.Get)
			contacts.PATCH("/:id", contactHandler.Update)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
		}

		// Deals
		deals := v1.Group("/deals", middleware.RequireAuth())
		{
			deals.GET("", dealHandler.List)
			deals.POST("", dealHandler.Create)
			deals.GET("/:id", dealHandler.Get)
			deals.PATCH("/:id", dealHandler.Update)
			deals.PUT("/:id", dealHandler.Update)
			deals.DELETE("/:id", dealHandler.Delete)
		}

		// Activities
		activities := v1.Group("/activities", middleware.RequireAuth())
		{
			activities.GET("", activityHandler.List)
			activities.POST("", activityHandler.Create)
			activities.GET("/:id", activityHandler.Get)
			activities.PATCH("/:id", activityHandler.Update)
			activities.PUT("/:id", activityHandler.Update)
			activities.DELETE("/:id", activityHandler.Delete)
		}

		// Tags
		tags := v1.Group("/tags", middleware.RequireAuth())
		{
			tags.GET("", tagHandler.List)
			tags.POST("", tagHandler.Create)
			tags.GET("/:id", tagHandler.Get)
			tags.PATCH("/:id", tagHandler.Update)
			tags.PUT("/:id", tagHandler.Update)
			tags.DELETE("/:id", tagHandler.Delete)
		}
	}

	return router
}

func initLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func autoMigrate(db *gorm.DB) error {
	log.Println("Starting database migration...")

	// Enable UUID extension in PostgreSQL
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		log.Printf("Warning: Failed to create uuid-ossp extension: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Tag{},
		&models.Lead{},
		&models.Contact{},
		&models.Deal{},
		&models.Activity{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	log.Println("Database migration completed")
	return nil
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// Build connection string
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Connected to database successfully")
	return db, nil
}
