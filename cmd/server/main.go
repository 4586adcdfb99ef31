package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminconfigapp "github.com/nia/backend/internal/application/adminconfig"
	conversationapp "github.com/nia/backend/internal/application/conversation"
	dashboardapp "github.com/nia/backend/internal/application/dashboard"
	eventapp "github.com/nia/backend/internal/application/event"
	identityapp "github.com/nia/backend/internal/application/identity"
	insightapp "github.com/nia/backend/internal/application/insight"
	leadapp "github.com/nia/backend/internal/application/lead"
	meetingapp "github.com/nia/backend/internal/application/meeting"
	voiceapp "github.com/nia/backend/internal/application/voice"
	"github.com/nia/backend/internal/domain/insight"
	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/infrastructure/ai"
	"github.com/nia/backend/internal/infrastructure/auth"
	"github.com/nia/backend/internal/infrastructure/cache"
	"github.com/nia/backend/internal/infrastructure/config"
	"github.com/nia/backend/internal/infrastructure/event"
	"github.com/nia/backend/internal/infrastructure/logger"
	"github.com/nia/backend/internal/infrastructure/persistence"
	"github.com/nia/backend/internal/infrastructure/scheduler"
	"github.com/nia/backend/internal/infrastructure/storage"
	"github.com/nia/backend/internal/infrastructure/telemetry"
	"github.com/nia/backend/internal/interfaces/http/handler"
	"github.com/nia/backend/internal/interfaces/http/middleware"
	"github.com/nia/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/nia/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			NIA Backend API
//	@version		1.0
//	@description	AI sales assistant backend: conversational lead extraction, meeting scheduling and voice call session management.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/nia/backend
//	@contact.email	support@nia.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

// transcriptDedupeTTL is how long an identical transcript submission keeps
// returning the stored analysis instead of re-calling the model.
const transcriptDedupeTTL = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting NIA Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// OpenTelemetry tracing and metrics
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing (otelgorm) with slow query detection
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Pyroscope continuous profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.App.Name,
		BasicAuthUser:     cfg.Profiling.AuthUser,
		BasicAuthPassword: cfg.Profiling.AuthPassword,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
	}

	// Initialize repositories
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	analysisRepo := persistence.NewGormAnalysisRepository(db.DB)
	insightRepo := persistence.NewGormInsightRepository(db.DB)
	meetingRepo := persistence.NewGormMeetingRepository(db.DB)
	questionRepo := persistence.NewGormMeetingQuestionRepository(db.DB)
	intelligenceRepo := persistence.NewGormMeetingIntelligenceRepository(db.DB)
	sessionRepo := persistence.NewGormCallSessionRepository(db.DB)
	chunkRepo := persistence.NewGormAudioChunkRepository(db.DB)
	templateRepo := persistence.NewGormPromptTemplateRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types with
	// their upgrade chains
	eventSerializer := event.NewVersionedSerializer(log)
	if err := event.RegisterAllEvents(eventSerializer); err != nil {
		log.Fatal("Failed to register domain events", zap.Error(err))
	}

	// AI client: Gemini when an API key is configured, the canned stub
	// otherwise so local development works without credentials
	var aiClient ai.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := ai.NewGeminiClient(cfg.Gemini, ai.WithGeminiLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize Gemini client", zap.Error(err))
		}
		aiClient = geminiClient
		log.Info("Gemini client initialized",
			zap.String("model", cfg.Gemini.Model),
			zap.String("meeting_model", cfg.Gemini.MeetingModel),
		)
	} else {
		aiClient = ai.NewStubClient("{}")
		log.Warn("No Gemini API key configured, using stub AI client")
	}
	defer func() {
		if err := aiClient.Close(); err != nil {
			log.Error("Error closing AI client", zap.Error(err))
		}
	}()

	// Idempotency store for transcript dedupe and event handler replay
	// protection. Prefers Redis, falls back to in-memory for single-node runs.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Insight cache: L1 in-memory everywhere, L2 Redis with pub/sub
	// invalidation when Redis is reachable
	cacheConfig := insight.DefaultCacheConfig()
	if cfg.Insight.CacheTTL > 0 {
		cacheConfig.TTL = cfg.Insight.CacheTTL
	}
	l1Cache := cache.NewInMemoryInsightCache(
		cache.WithInMemoryConfig(cacheConfig),
		cache.WithInMemoryLogger(log),
	)
	var insightCache insight.Cache = l1Cache
	redisCacheCfg := cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	l2Cache, err := cache.NewRedisInsightCache(redisCacheCfg, cache.WithCacheConfig(cacheConfig), cache.WithCacheLogger(log))
	if err != nil {
		log.Warn("Redis insight cache unavailable, using in-memory cache only", zap.Error(err))
	} else {
		invalidator, err := cache.NewRedisInsightCacheInvalidator(redisCacheCfg, cache.WithInvalidatorLogger(log))
		if err != nil {
			log.Warn("Redis cache invalidator unavailable", zap.Error(err))
			invalidator = nil
		}
		tiered := cache.NewTieredInsightCache(l1Cache, l2Cache, invalidator,
			cache.WithTieredConfig(cacheConfig),
			cache.WithTieredLogger(log),
		)
		go func() {
			if err := tiered.StartInvalidationSubscription(context.Background()); err != nil {
				log.Warn("Insight cache invalidation subscription stopped", zap.Error(err))
			}
		}()
		insightCache = tiered
	}

	// Audio chunk storage: S3-compatible object store or the local stub
	var audioStore voiceapp.AudioStore
	if cfg.Storage.Provider == "s3" {
		s3Store, err := storage.NewS3AudioStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize S3 audio storage", zap.Error(err))
		}
		audioStore = s3Store
		log.Info("S3 audio storage initialized", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		audioStore = storage.NewStubAudioStorage()
		log.Warn("Using stub audio storage, chunks are held in memory")
	}

	// Initialize application services
	templateService := adminconfigapp.NewService(templateRepo, log)
	leadService := leadapp.NewService(leadRepo, outboxRepo, log)
	conversationService := conversationapp.NewService(
		analysisRepo, leadRepo, templateRepo, aiClient,
		idempotencyStore, outboxRepo, transcriptDedupeTTL, log,
	)
	insightService := insightapp.NewService(
		insightRepo, insightCache, leadRepo, templateRepo, aiClient,
		cfg.Insight.CacheTTL, cfg.Insight.StaleAfter, log,
	)
	conflictChecker := meeting.NewConflictChecker(0)
	meetingService := meetingapp.NewService(meetingRepo, leadRepo, outboxRepo, conflictChecker, log)
	prepService := meetingapp.NewPrepService(
		meetingRepo, questionRepo, intelligenceRepo, leadRepo, templateRepo, aiClient, log,
	)
	sessionService := voiceapp.NewSessionService(
		sessionRepo, chunkRepo, audioStore, conversationService, outboxRepo,
		voiceapp.SessionServiceConfig{
			MaxChunkBytes:    cfg.Voice.MaxChunkBytes,
			MaxSessionChunks: cfg.Voice.MaxSessionChunks,
			SessionTTL:       cfg.Voice.SessionTTL,
		}, log,
	)
	statsService := dashboardapp.NewStatsService(leadRepo, meetingRepo, sessionRepo, aiClient, 0, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, log)

	// Business metrics on top of the OTel meter
	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("nia.business"),
			Logger:          log,
			InsightStaleAge: cfg.Insight.StaleAfter,
			GaugeProvider:   telemetry.NewGormGaugeMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			conversationService.SetBusinessMetrics(businessMetrics)
			insightService.SetBusinessMetrics(businessMetrics)
			meetingService.SetBusinessMetrics(businessMetrics)
			prepService.SetBusinessMetrics(businessMetrics)
			sessionService.SetBusinessMetrics(businessMetrics)
			businessMetrics.StartPeriodicCollection(context.Background(), cfg.Insight.StaleAfter, 5*time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Conversation analyzed -> lead scoring. Wrapped for replay protection
	// since the outbox processor retries failed deliveries.
	scoringHandler := event.NewIdempotentHandler(
		leadapp.NewScoringHandler(leadService, log),
		idempotencyStore,
		log,
	)
	eventBus.Subscribe(scoringHandler)

	// Domain events -> SSE stream for connected dashboards
	eventStreamHandler := handler.NewEventStreamHandler(handler.WithSSELogger(log))
	eventBus.Subscribe(eventStreamHandler)
	if err := eventStreamHandler.Start(); err != nil {
		log.Fatal("Failed to start event stream handler", zap.Error(err))
	}
	defer eventStreamHandler.Stop()

	log.Info("Event handlers registered",
		zap.Strings("scoring_events", scoringHandler.EventTypes()),
		zap.Strings("stream_events", eventStreamHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", outboxProcessorConfig.BatchSize),
		zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
	)

	// Background jobs: stale insight refresh, abandoned session sweep and
	// dashboard snapshot recomputation
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewRegistryExecutor()
		executor.Register(scheduler.JobTypeInsightRefresh, func(ctx context.Context) error {
			refreshed, err := insightService.RefreshStale(ctx, 100)
			if err != nil {
				return err
			}
			log.Info("Stale insights refreshed", zap.Int("count", refreshed))
			return nil
		})
		executor.Register(scheduler.JobTypeSessionSweep, func(ctx context.Context) error {
			swept, err := sessionService.SweepStale(ctx, 100)
			if err != nil {
				return err
			}
			if swept > 0 {
				log.Info("Stale call sessions swept", zap.Int("count", swept))
			}
			return nil
		})
		executor.Register(scheduler.JobTypeDashboardSnapshot, func(ctx context.Context) error {
			_, err := statsService.Recompute(ctx)
			return err
		})

		schedulerConfig := scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}
		jobScheduler := scheduler.NewScheduler(schedulerConfig, executor, log)
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping job scheduler", zap.Error(err))
			}
		}()

		dailyTrigger := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			Hour:     cfg.Scheduler.InsightRefreshHour,
			Minute:   cfg.Scheduler.InsightRefreshMinute,
			JobTypes: []scheduler.JobType{scheduler.JobTypeInsightRefresh, scheduler.JobTypeDashboardSnapshot},
		}, jobScheduler, log)
		if err := dailyTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start daily trigger", zap.Error(err))
		}
		defer func() {
			if err := dailyTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping daily trigger", zap.Error(err))
			}
		}()

		sweepTrigger := scheduler.NewIntervalTrigger(cfg.Scheduler.SessionSweepInterval, scheduler.JobTypeSessionSweep, jobScheduler, log)
		if err := sweepTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start session sweep trigger", zap.Error(err))
		}
		defer func() {
			if err := sweepTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping session sweep trigger", zap.Error(err))
			}
		}()

		log.Info("Job scheduler started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Duration("session_sweep_interval", cfg.Scheduler.SessionSweepInterval),
		)
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	leadHandler := handler.NewLeadHandler(leadService)
	conversationHandler := handler.NewConversationHandler(conversationService)
	insightHandler := handler.NewInsightHandler(insightService)
	meetingHandler := handler.NewMeetingHandler(meetingService, prepService)
	voiceHandler := handler.NewVoiceHandler(sessionService, cfg.Voice.MaxChunkBytes)
	templateHandler := handler.NewTemplateHandler(templateService)
	dashboardHandler := handler.NewDashboardHandler(statsService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tracing, HTTP metrics and profiling labels (if telemetry is on)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("nia.http"), true))
	}
	if cfg.Profiling.Enabled {
		engine.Use(middleware.Profiling())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tighter limits on credential endpoints and the AI-backed analysis
	// routes, which are far more expensive than plain CRUD
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		r.Use(middleware.RateLimitForRoutes(authLimiter,
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/password",
		))
		aiLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests*4, cfg.HTTP.AuthRateLimitWindow)
		r.Use(middleware.RateLimitForRoutes(aiLimiter,
			"/api/v1/conversations/analyze",
			"/api/v1/conversations/:id/reanalyze",
			"/api/v1/leads/:id/insights/refresh",
			"/api/v1/meetings/:id/questions",
		))
		log.Info("Strict rate limiting enabled for auth and analysis routes",
			zap.Int("auth_requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	// Register route groups. Admin-only surfaces (user management, prompt
	// templates, dashboard, outbox) guard themselves with RequireAdmin.
	r.Register(authHandler).
		Register(userHandler).
		Register(leadHandler).
		Register(conversationHandler).
		Register(insightHandler).
		Register(meetingHandler).
		Register(voiceHandler).
		Register(templateHandler).
		Register(dashboardHandler).
		Register(eventStreamHandler).
		Register(outboxHandler).
		Register(systemHandler)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
