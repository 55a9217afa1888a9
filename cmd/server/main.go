package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cultivationapp "github.com/cultivo/backend/internal/application/cultivation"
	identityapp "github.com/cultivo/backend/internal/application/identity"
	inventoryapp "github.com/cultivo/backend/internal/application/inventory"
	partnerapp "github.com/cultivo/backend/internal/application/partner"
	qmsapp "github.com/cultivo/backend/internal/application/qms"
	tradeapp "github.com/cultivo/backend/internal/application/trade"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/infrastructure/auth"
	"github.com/cultivo/backend/internal/infrastructure/cache"
	"github.com/cultivo/backend/internal/infrastructure/config"
	"github.com/cultivo/backend/internal/infrastructure/event"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"github.com/cultivo/backend/internal/infrastructure/notification"
	"github.com/cultivo/backend/internal/infrastructure/persistence"
	"github.com/cultivo/backend/internal/infrastructure/storage"
	"github.com/cultivo/backend/internal/infrastructure/telemetry"
	"github.com/cultivo/backend/internal/interfaces/http/handler"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/cultivo/backend/internal/interfaces/http/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting Cultivo backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.HTTP.Port),
	)
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Version, log)
	if err != nil {
		return err
	}
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, cfg.App.Version, log)
	if err != nil {
		return err
	}
	log = logger.Tee(log, lp.Core(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, cfg.App.Version, log)
	if err != nil {
		return err
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	gw, err := persistence.NewGateway(&cfg.Database, gormLog, log)
	if err != nil {
		return err
	}
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	dbTracing := telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Database.SlowQueryThreshold,
		DBName:          cfg.Database.DBName,
	}
	for _, db := range uniqueHandles(gw) {
		if err := telemetry.RegisterDBTracing(db.handle, dbTracing, log); err != nil {
			log.Warn("Database tracing disabled", zap.String("handle", db.name), zap.Error(err))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, db := range uniqueHandles(gw) {
		sqlDB, err := db.handle.DB()
		if err != nil {
			return err
		}
		if err := telemetry.RegisterDBPoolMetrics(registry, db.name, sqlDB); err != nil {
			log.Warn("Failed to register pool metrics", zap.String("handle", db.name), zap.Error(err))
		}
	}

	blacklist, err := cache.NewRevocationStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		return err
	}

	var transport notification.Transport = notification.NewLogTransport(log)
	if cfg.Mail.Enabled {
		ses, err := notification.NewSESTransport(ctx, cfg.Mail, log)
		if err != nil {
			return err
		}
		transport = ses
	}
	mailer := notification.NewMailer(transport, cfg.Mail.FrontendURL, cfg.App.Name)

	var evidence qmsapp.EvidenceStorage = storage.NewLocalObjectStorage("")
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Evidence bucket check failed", zap.String("bucket", s3.GetBucket()), zap.Error(err))
		}
		evidence = s3
	}

	// Privileged handle: identity, profile lookups, audit writer, ops diagnostics.
	priv := gw.Privileged
	profilesPriv := persistence.NewGormProfileRepository(priv)
	invitations := persistence.NewGormInvitationRepository(priv)
	auditLogs := persistence.NewGormAuditLogRepository(priv)
	privTx := persistence.NewTransactor(priv)

	// Restricted handle: every record service.
	db := gw.Restricted
	tx := persistence.NewTransactor(db)
	batches := persistence.NewGormBatchRepository(db)
	strains := persistence.NewGormStrainRepository(db)
	cycles := persistence.NewGormGrowthCycleRepository(db)
	dailyLogs := persistence.NewGormDailyLogRepository(db)
	deviations := persistence.NewGormDeviationRepository(db)
	environment := persistence.NewGormEnvironmentRepository(db)
	sops := persistence.NewGormSopRepository(db)
	lots := persistence.NewGormLotRepository(db)
	suppliers := persistence.NewGormSupplierRepository(db)
	clients := persistence.NewGormClientRepository(db)
	profiles := persistence.NewGormProfileRepository(db)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(identityapp.NewAuditEventHandler(auditLogs, log))
	bus.Subscribe(telemetry.NewEventMetrics(registry))
	if mp.IsEnabled() {
		counter, err := telemetry.NewEventCounter(mp.Meter("github.com/cultivo/backend/event"))
		if err != nil {
			return err
		}
		bus.Subscribe(counter)
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(profilesPriv, invitations, auditLogs, privTx, jwtService, blacklist, mailer,
		identityapp.AuthServiceConfig{
			ResetTokenTTL: cfg.Mail.ResetTokenTTL,
			SessionTTL:    cfg.JWT.RefreshTokenExpiration,
		}, log)
	userService := identityapp.NewUserService(profilesPriv, invitations, auditLogs, privTx, mailer, cfg.Mail.InvitationTTL, log)
	auditLogService := identityapp.NewAuditLogService(auditLogs)

	batchService := cultivationapp.NewBatchService(batches, persistence.NewGormBatchStageRepository(db), strains, cycles, tx)
	batchService.SetEventPublisher(bus)

	ebrs := persistence.NewGormEbrRepository(db)
	ebrService := qmsapp.NewEbrService(qmsapp.EbrRepositories{
		Ebrs:        ebrs,
		Checklists:  persistence.NewGormChecklistRepository(db),
		Batches:     batches,
		Strains:     strains,
		DailyLogs:   dailyLogs,
		Deviations:  deviations,
		Environment: environment,
		Profiles:    profiles,
	}, tx, evidence, qmsapp.EvidencePolicy{
		Expiration:   cfg.Storage.PresignExpiration,
		AllowedTypes: cfg.Storage.AllowedTypes,
	})
	ebrService.SetEventPublisher(bus)

	deviationService := qmsapp.NewDeviationService(deviations, batches)
	deviationService.SetEventPublisher(bus)
	capaService := qmsapp.NewCapaService(persistence.NewGormCapaRepository(db), deviations)
	capaService.SetEventPublisher(bus)
	auditService := qmsapp.NewAuditService(persistence.NewGormAuditRepository(db))
	auditService.SetEventPublisher(bus)
	sopService := qmsapp.NewSopService(sops)
	sopService.SetEventPublisher(bus)
	trainingService := qmsapp.NewTrainingService(persistence.NewGormTrainingRepository(db), sops, profiles)
	trainingService.SetEventPublisher(bus)
	environmentService := qmsapp.NewEnvironmentService(environment, alertThresholds(cfg.Environment))
	qualityRecordService := qmsapp.NewQualityRecordService(persistence.NewGormQualityRecordRepository(db))
	qualityRecordService.SetEventPublisher(bus)

	finishedGoodService := cultivationapp.NewFinishedGoodService(persistence.NewGormFinishedGoodRepository(db), batches)
	finishedGoodService.SetEventPublisher(bus)
	reviewService := cultivationapp.NewStageReviewService(persistence.NewGormStageReviewRepository(db), batches)
	reviewService.SetEventPublisher(bus)

	lotService := inventoryapp.NewLotService(lots,
		persistence.NewGormStockLevelRepository(db),
		persistence.NewGormStockMovementRepository(db),
		batches, tx)

	orderService := tradeapp.NewPurchaseOrderService(persistence.NewGormPurchaseOrderRepository(db), suppliers)
	orderService.SetEventPublisher(bus)
	dispatchService := tradeapp.NewDispatchService(persistence.NewGormDispatchRepository(db), clients, lots, lotService, tx)
	dispatchService.SetEventPublisher(bus)

	handlers := router.Handlers{
		System: handler.NewSystemHandler(gw, cfg.App.Env, cfg.App.Version),
		Auth:   handler.NewAuthHandler(authService),
		Users:  handler.NewUserHandler(userService, auditLogService),
		Cultivation: handler.NewCultivationHandler(
			batchService,
			cultivationapp.NewGrowthCycleService(cycles),
			cultivationapp.NewStrainService(strains),
			cultivationapp.NewStageService(persistence.NewGormStageRepository(db)),
			cultivationapp.NewDailyLogService(dailyLogs, batches),
		),
		PostHarvest: handler.NewPostHarvestHandler(
			cultivationapp.NewPackagingService(persistence.NewGormPackagingRecordRepository(db), batches),
			finishedGoodService,
			cultivationapp.NewWasteService(persistence.NewGormWasteRecordRepository(db), batches),
			reviewService,
		),
		Ebr:       handler.NewEbrHandler(ebrService, qmsapp.NewEbrDiagnostics(persistence.NewGormEbrRepository(priv))),
		Qms:       handler.NewQmsHandler(deviationService, capaService, auditService, sopService, trainingService, environmentService, qualityRecordService),
		Inventory: handler.NewInventoryHandler(lotService),
		Partners:  handler.NewPartnerHandler(partnerapp.NewSupplierService(suppliers), partnerapp.NewClientService(clients)),
		Trade:     handler.NewTradeHandler(orderService, dispatchService),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	var (
		httpMetrics *telemetry.HTTPMetrics
		gatherer    prometheus.Gatherer
	)
	if cfg.Telemetry.MetricsEnabled {
		httpMetrics = telemetry.NewHTTPMetrics(registry)
		gatherer = registry
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tp.IsEnabled(),
		Metrics:        httpMetrics,
		Gatherer:       gatherer,
		CORS:           cors,
		Security:       middleware.DefaultSecurityConfig(),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RateLimiter:    limiter,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		JWT: middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Blacklist:  blacklist,
			Logger:     log,
		},
		Profiles: profilesPriv,
	}, handlers)

	if err := bus.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	_ = bus.Stop(shutdownCtx)
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush metrics", zap.Error(err))
	}
	if closer, ok := blacklist.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error("Failed to close revocation store", zap.Error(err))
		}
	}
	if err := gw.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	_ = lp.Shutdown(shutdownCtx)
	return nil
}

type namedHandle struct {
	name   string
	handle *gorm.DB
}

func uniqueHandles(gw *persistence.Gateway) []namedHandle {
	out := []namedHandle{{name: "privileged", handle: gw.Privileged}}
	if gw.Restricted != gw.Privileged {
		out = append(out, namedHandle{name: "restricted", handle: gw.Restricted})
	}
	return out
}

func alertThresholds(c config.EnvironmentConfig) qms.AlertThresholds {
	return qms.AlertThresholds{
		MinTemperature: decimal.NewFromFloat(c.MinTemperature),
		MaxTemperature: decimal.NewFromFloat(c.MaxTemperature),
		MinHumidity:    decimal.NewFromFloat(c.MinHumidity),
		MaxHumidity:    decimal.NewFromFloat(c.MaxHumidity),
		MaxCO2:         decimal.NewFromFloat(c.MaxCO2),
	}
}
