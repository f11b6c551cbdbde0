package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountingapp "github.com/botforce/unity/internal/application/accounting"
	expenseapp "github.com/botforce/unity/internal/application/expense"
	forecastapp "github.com/botforce/unity/internal/application/forecast"
	invoicingapp "github.com/botforce/unity/internal/application/invoicing"
	partnerapp "github.com/botforce/unity/internal/application/partner"
	recurringapp "github.com/botforce/unity/internal/application/recurring"
	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/auth"
	"github.com/botforce/unity/internal/infrastructure/cache"
	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/botforce/unity/internal/infrastructure/event"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/infrastructure/persistence"
	"github.com/botforce/unity/internal/infrastructure/receipt"
	"github.com/botforce/unity/internal/infrastructure/scheduler"
	"github.com/botforce/unity/internal/infrastructure/storage"
	"github.com/botforce/unity/internal/infrastructure/telemetry"
	"github.com/botforce/unity/internal/interfaces/http/handler"
	"github.com/botforce/unity/internal/interfaces/http/middleware"
	"github.com/botforce/unity/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/botforce/unity/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			BOTFORCE Unity API
//	@version		1.0
//	@description	Invoicing, expenses, recurring billing, cash-flow forecast and accounting exports.

//	@contact.name	BOTFORCE Support
//	@contact.email	support@botforce.at

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Background work logs through logger.L(ctx), so the root context carries the logger
	ctx := logger.WithContext(context.Background(), log)

	// Telemetry: traces, metrics, logs, profiles
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		log, err = logger.New(logCfg, loggerProvider.Core(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
		ctx = logger.WithContext(ctx, log)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	log.Info("Starting BOTFORCE Unity",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	meter := meterProvider.Meter("github.com/botforce/unity")

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.OpenDatabase(ctx, &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.NewDBMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	if err := dbMetrics.Register(db.DB); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	dbMetrics.Start(ctx)
	log.Info("Database connected successfully")

	// Recurring-tick claims live in Redis when it is enabled; the same
	// connection backs shared rate limits and the readiness probe.
	claims, err := cache.NewIdempotencyStore(cfg.Redis, cfg.App.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	var redisClient *redis.Client
	if redisClaims, ok := claims.(*cache.RedisIdempotencyStore); ok {
		redisClient = redisClaims.Client()
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	profileRepo := persistence.NewGormCompanyProfileRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	templateRepo := persistence.NewGormRecurringTemplateRepository(db.DB)
	costRepo := persistence.NewGormRecurringCostRepository(db.DB)
	exportRepo := persistence.NewGormAccountingExportRepository(db.DB)

	// Object storage for receipts and export files
	var objectStorage shared.ObjectStorage
	switch {
	case cfg.Storage.Enabled:
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Could not verify storage bucket", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		objectStorage = s3Storage
	case !cfg.App.IsProduction():
		log.Warn("Object storage disabled, keeping uploads in memory")
		objectStorage = storage.NewMemoryObjectStorage()
	}

	var receiptScanner expense.ReceiptScanner
	if cfg.Receipt.Enabled {
		scanner, err := receipt.NewDocumentAIScanner(ctx, cfg.Receipt, log)
		if err != nil {
			log.Fatal("Failed to initialize receipt scanner", zap.Error(err))
		}
		defer func() {
			if err := scanner.Close(); err != nil {
				log.Error("Error closing receipt scanner", zap.Error(err))
			}
		}()
		receiptScanner = scanner
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	eventBus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	customerService := partnerapp.NewCustomerService(customerRepo, documentRepo)
	customerService.SetEventPublisher(eventBus)
	profileService := partnerapp.NewCompanyProfileService(profileRepo, cfg.Invoicing.DefaultPaymentTermsDays)

	documentService := invoicingapp.NewDocumentService(documentRepo, customerRepo, profileRepo, expenseRepo, invoicingapp.Settings{
		Prefixes: invoicing.NumberPrefixes{
			Invoice:    cfg.Invoicing.InvoicePrefix,
			CreditNote: cfg.Invoicing.CreditNotePrefix,
		},
	})
	documentService.SetEventPublisher(eventBus)
	documentService.SetBusinessMetrics(businessMetrics)

	expenseService := expenseapp.NewExpenseService(expenseRepo, objectStorage, receiptScanner)
	expenseConfig := expenseapp.DefaultServiceConfig()
	if cfg.Invoicing.MileageRate.IsPositive() {
		expenseConfig.MileageRate = cfg.Invoicing.MileageRate
	}
	if cfg.Storage.PresignExpiry > 0 {
		expenseConfig.UploadURLExpiry = cfg.Storage.PresignExpiry
		expenseConfig.DownloadURLExpiry = cfg.Storage.PresignExpiry
	}
	expenseService.SetConfig(expenseConfig)
	expenseService.SetEventPublisher(eventBus)

	templateService := recurringapp.NewTemplateService(templateRepo, documentRepo, customerRepo, documentService)
	templateService.SetEventPublisher(eventBus)
	templateService.SetBusinessMetrics(businessMetrics)
	templateService.SetIdempotencyStore(claims, cfg.Scheduler.TickLockTTL)

	forecastService := forecastapp.NewForecastService(costRepo, documentRepo)
	forecastService.SetDefaultWeeks(cfg.Invoicing.ForecastWeeks)

	exportService := accountingapp.NewExportService(exportRepo, documentRepo, expenseRepo, objectStorage)
	exportService.SetDownloadURLExpiry(cfg.Storage.PresignExpiry)
	exportService.SetEventPublisher(eventBus)

	// Daily recurring invoice tick
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(cfg.Scheduler, scheduler.NewRecurringTickExecutor(templateService, log), log)
		triggerCfg, err := scheduler.NewCronTriggerConfig(cfg.Scheduler)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		trigger := scheduler.NewCronTrigger(triggerCfg, jobScheduler, templateRepo, log)

		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start recurring trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping recurring trigger", zap.Error(err))
			}
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Recurring invoice scheduler started",
			zap.String("run_at_utc", cfg.Scheduler.RecurringRunAt),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	// HTTP handlers
	systemHandler := handler.NewSystemHandler("BOTFORCE Unity API", telemetry.ServiceVersion)
	systemHandler.AddCheck("database", func(ctx context.Context) error { return db.Ping(ctx) })
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	maxReceiptSize := cfg.Receipt.MaxFileSize
	if maxReceiptSize <= 0 {
		maxReceiptSize = handler.DefaultMaxReceiptSize
	}
	handlers := router.Handlers{
		Customers:          handler.NewCustomerHandler(customerService),
		CompanyProfile:     handler.NewCompanyProfileHandler(profileService),
		Documents:          handler.NewDocumentHandler(documentService),
		Expenses:           handler.NewExpenseHandler(expenseService, maxReceiptSize),
		RecurringTemplates: handler.NewRecurringTemplateHandler(templateService),
		Forecast:           handler.NewForecastHandler(forecastService),
		AccountingExports:  handler.NewAccountingExportHandler(exportService),
		System:             systemHandler,
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request ID and recovery wrap everything, the span
	// must exist before metrics and profiling labels read the route.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure(cfg.App.IsProduction()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     cfg.CORS.AllowMethods,
		AllowHeaders:     cfg.CORS.AllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meter))
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling(middleware.DefaultProfilingConfig()))
	}

	// Probes and docs sit outside the versioned API and its auth
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: auth.NewJWTService(cfg.JWT),
		DevHeaders: cfg.App.DevHeaders && !cfg.App.IsProduction(),
		SkipPaths: []string{
			r.BasePath() + "/system/ping",
			r.BasePath() + "/system/info",
		},
		Logger: log,
	}))
	r.Use(middleware.TracingAttributeInjector())
	if cfg.RateLimit.Enabled {
		rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit, redisClient)
		if err != nil {
			log.Fatal("Failed to create rate limiter", zap.Error(err))
		}
		r.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int64("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
			zap.Bool("shared", redisClient != nil),
		)
	}
	router.RegisterAPI(r, handlers).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	dbMetrics.Stop()
	if err := claims.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
