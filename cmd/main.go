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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/cache"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/config"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/database"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/events"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/handlers"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/health"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/middleware"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/scheduler"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

const (
	serviceName    = "tenancy-service"
	serviceVersion = "1.0.0"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})
	if cfg.Server.IsProd() {
		base.SetLevel(logrus.InfoLevel)
	} else {
		base.SetLevel(logrus.DebugLevel)
	}
	logger := base.WithField("service", serviceName)

	// Initialize Prometheus metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize database
	db, err := database.NewConnection(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, logger); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	// Initialize Redis client for the subdomain cache
	redisClient := initRedis(cfg, logger)
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	// Initialize NATS client for activity event streaming
	var natsClient *events.Client
	if cfg.NATS.Enabled {
		natsClient, err = events.NewClient(cfg.NATS, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize NATS, activity streaming disabled")
			natsClient = nil
		}
	} else {
		logger.Info("NATS disabled, activity events are stored only")
	}
	defer func() {
		if natsClient != nil {
			natsClient.Close()
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	productRepo := repository.NewProductRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Initialize services
	subdomainCache := cache.NewSubdomainCache(redisClient, storeRepo, cfg.Redis.CacheTTL, m, logger)
	tokenService := services.NewTokenService(cfg.Auth)
	resolver := services.NewTenantResolver(subdomainCache, userRepo, tokenService, cfg.Tenancy.ReservedSubdomains, m, logger)
	accessValidator := services.NewAccessValidator(userRepo, storeRepo, logger)
	limiter := services.NewSubscriptionLimiter(subscriptionRepo, productRepo, storeRepo, m)
	activityService := services.NewActivityLogService(activityRepo, events.NewPublisher(natsClient, logger), m, logger)
	trialService := services.NewTrialService(userRepo, subscriptionRepo, notificationRepo, activityService, cfg.Tenancy.ExpiringSoonDays, m, logger)
	storeAdminService := services.NewStoreAdminService(storeRepo, accessValidator, activityService, subdomainCache, logger)

	// Start the trial reminder sweep
	reminderScheduler := scheduler.NewTrialReminderScheduler(trialService, cfg.Scheduler, logger)
	if err := reminderScheduler.Start(); err != nil {
		logger.WithError(err).Warn("Failed to start trial reminder scheduler")
	}

	// Health checks
	healthChecker := health.NewHealthChecker(serviceName, serviceVersion, func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}, m)
	if redisClient != nil {
		healthChecker.AddOptional("redis", subdomainCache.Ping)
	}
	if natsClient != nil {
		healthChecker.AddOptional("nats", func(ctx context.Context) error {
			if !natsClient.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		})
	}

	// Initialize handlers
	trialHandler := handlers.NewTrialHandler(trialService, logger)
	activityHandler := handlers.NewActivityLogHandler(activityService, logger)
	storeAdminHandler := handlers.NewStoreAdminHandler(storeAdminService, accessValidator, logger)
	tenantHandler := handlers.NewTenantHandler(limiter, trialService, logger)

	router := setupRouter(cfg, logger, m, registry, resolver, healthChecker, reminderScheduler,
		trialHandler, activityHandler, storeAdminHandler, tenantHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("address", srv.Addr).Info("Starting tenancy service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()
	healthChecker.SetReady(true)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down tenancy service...")
	healthChecker.SetReady(false)
	reminderScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Tenancy service stopped")
}

// initRedis returns nil when redis is not configured or unreachable, which
// leaves the subdomain cache in pass-through mode
func initRedis(cfg *config.Config, logger *logrus.Entry) *redis.Client {
	if cfg.Redis.URL == "" {
		logger.Info("Redis URL not configured, subdomain cache disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse Redis URL, subdomain cache disabled")
		return nil
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, subdomain cache disabled")
		client.Close()
		return nil
	}

	logger.Info("Redis connection established")
	return client
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(
	cfg *config.Config,
	logger *logrus.Entry,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	resolver *services.TenantResolver,
	healthChecker *health.HealthChecker,
	reminderScheduler *scheduler.TrialReminderScheduler,
	trialHandler *handlers.TrialHandler,
	activityHandler *handlers.ActivityLogHandler,
	storeAdminHandler *handlers.StoreAdminHandler,
	tenantHandler *handlers.TenantHandler,
) *gin.Engine {
	if cfg.Server.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(m.Middleware())
	router.Use(middleware.Classify(resolver))
	router.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	router.GET("/health", healthChecker.HealthHandler)
	router.GET("/ready", healthChecker.ReadyHandler)
	router.GET("/metrics", health.MetricsHandler(gatherer))

	// Internal stats endpoint (for monitoring)
	router.GET("/internal/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"trial_reminder_scheduler": reminderScheduler.GetStats(),
		})
	})

	api := router.Group("/api/v1")

	storefront := api.Group("/storefront")
	storefront.Use(middleware.RequireStorefrontTenant(resolver))
	{
		storefront.GET("/store", tenantHandler.GetStorefrontStore)
	}

	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.RequireDashboardTenant(resolver))
	{
		dashboard.GET("/context", tenantHandler.GetContext)
		dashboard.GET("/limits/:resource", tenantHandler.CheckLimit)
		dashboard.GET("/trial", tenantHandler.GetTrial)
		dashboard.GET("/plan/access", tenantHandler.CheckPlanAccess)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RateLimit(middleware.NewClientRateLimiter(cfg.RateLimit.AdminRPS, cfg.RateLimit.AdminBurst)))
	admin.Use(middleware.RequireAdmin(resolver))
	{
		trials := admin.Group("/trials")
		{
			trials.POST("", trialHandler.HandleAction)
			trials.GET("", trialHandler.ListTrials)
			trials.GET("/stats", trialHandler.Stats)
			trials.GET("/:userId", trialHandler.GetTrial)

			// Manual trigger for the reminder sweep; runs in the background
			trials.POST("/reminders/run", func(c *gin.Context) {
				if !reminderScheduler.RunNow() {
					handlers.ErrorResponse(c, logger, http.StatusConflict, "SWEEP_IN_PROGRESS", "A reminder sweep is already running", nil)
					return
				}
				c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Reminder sweep started"})
			})
		}

		admin.GET("/activity-logs", activityHandler.List)
		admin.GET("/activity-logs/summary", activityHandler.Summary)

		stores := admin.Group("/stores")
		{
			stores.PATCH("/:id/status", storeAdminHandler.UpdateStatus)
			stores.GET("/:id/access", storeAdminHandler.CheckAccess)
		}
	}

	return router
}
