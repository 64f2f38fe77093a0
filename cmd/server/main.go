package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appchannel "github.com/avocado/teamhub/internal/application/channel"
	appcourse "github.com/avocado/teamhub/internal/application/course"
	appevent "github.com/avocado/teamhub/internal/application/event"
	appidentity "github.com/avocado/teamhub/internal/application/identity"
	appmeeting "github.com/avocado/teamhub/internal/application/meeting"
	appreview "github.com/avocado/teamhub/internal/application/review"
	appshared "github.com/avocado/teamhub/internal/application/shared"
	apptask "github.com/avocado/teamhub/internal/application/task"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/auth"
	"github.com/avocado/teamhub/internal/infrastructure/cache"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/avocado/teamhub/internal/infrastructure/event"
	"github.com/avocado/teamhub/internal/infrastructure/llm"
	"github.com/avocado/teamhub/internal/infrastructure/logger"
	"github.com/avocado/teamhub/internal/infrastructure/persistence"
	"github.com/avocado/teamhub/internal/infrastructure/realtime"
	"github.com/avocado/teamhub/internal/infrastructure/scheduler"
	"github.com/avocado/teamhub/internal/infrastructure/storage"
	"github.com/avocado/teamhub/internal/infrastructure/telemetry"
	"github.com/avocado/teamhub/internal/interfaces/http/handler"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/avocado/teamhub/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate go run github.com/swaggo/swag/v2/cmd/swag@v2.0.0-rc5 init -d ../../ -g cmd/server/main.go -o ../../docs --parseInternal

const shutdownTimeout = 30 * time.Second

//	@title			TeamHub API
//	@version		1.0
//	@description	Group project coordination: registration, courses and groups, meetings, tasks, peer reviews and contribution analysis.

//	@contact.name	TeamHub maintainers
//	@contact.url	https://github.com/avocado/teamhub

//	@host		localhost:3001
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	}
	bootLog := logger.New(logCfg)

	rootCtx := context.Background()

	// Telemetry comes first so the final logger can tee into the OTLP bridge
	providers, err := telemetry.Setup(rootCtx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := logger.New(logCfg, providers.LogCore(logger.ParseLevel(cfg.Log.Level)))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting TeamHub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("api_port", cfg.App.Port),
		zap.String("chat_port", cfg.App.ChatPort),
	)

	profiler, err := telemetry.StartProfiler(cfg.Profiling, cfg.App.Name, log)
	if err != nil {
		log.Warn("Failed to start profiler, continuing without it", zap.Error(err))
	}
	if profiler != nil && profiler.Running() && cfg.Profiling.SpanProfiles {
		providers.EnableSpanProfiles()
	}

	metrics, err := telemetry.NewMetrics(providers.Meter(cfg.App.Name))
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	// Database with the zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		LogSQL:        cfg.Telemetry.DBLogFullSQL,
	})
	db, err := persistence.Connect(context.Background(), &cfg.Database, persistence.ConnectOptions{
		Logger:   gormLog,
		Attempts: cfg.Database.ConnectAttempts,
		Wait:     cfg.Database.ConnectWait,
		Log:      log,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	courseRepo := persistence.NewGormCourseRepository(db.DB)
	statusRepo := persistence.NewGormStatusRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	meetingRepo := persistence.NewGormMeetingRepository(db.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	analysisRepo := persistence.NewGormAnalysisRepository(db.DB)
	contributionRepo := persistence.NewGormContributionRepository(db.DB)
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	channelMemberRepo := persistence.NewGormChannelMemberRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events are written to the outbox in the same transaction as the change
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer, event.WithMaxRetries(cfg.Event.MaxRetries))
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Redis backed components fall back to in-memory ones when Redis is off
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Warn("Error closing cache", zap.Error(err))
		}
	}()
	lookupCache, err := cacheFactory.LookupCache()
	if err != nil {
		log.Fatal("Failed to create lookup cache", zap.Error(err))
	}
	idempotencyStore, err := cacheFactory.IdempotencyStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	var revocations auth.RevocationList
	if client, err := cacheFactory.Client(); err == nil {
		revocations = auth.NewRedisRevocationList(client, "")
	} else {
		revocations = auth.NewMemoryRevocationList()
	}

	files, storageCheck := newFileStore(cfg, log)

	completer, err := llm.New(cfg.LLM, llm.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create language model client", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.JWT)

	// Application services
	authService := appidentity.NewAuthService(userRepo, memberRepo, tokens, revocations, log)
	userService := appidentity.NewUserService(txScope, userRepo, courseRepo, log)
	roleService := appidentity.NewRoleService(roleRepo, lookupCache, log)
	lookupService := appcourse.NewLookupService(courseRepo, statusRepo, groupRepo, memberRepo, assignmentRepo, lookupCache, log)
	evaluationService := appcourse.NewEvaluationService(txScope, log)
	assignmentService := appcourse.NewAssignmentService(assignmentRepo, courseRepo, files, lookupCache, log)
	meetingService := appmeeting.NewMeetingService(txScope, meetingRepo, attendanceRepo, assignmentRepo, memberRepo, completer, log)
	taskService := apptask.NewTaskService(txScope, taskRepo, log)
	reviewService := appreview.NewReviewService(txScope, reviewRepo, analysisRepo, contributionRepo, memberRepo, completer, log)
	reviewService.SetRecorder(metrics)
	channelService := appchannel.NewChannelService(txScope, channelRepo, channelMemberRepo, messageRepo, completer,
		appchannel.Options{
			MaxMessageLength: cfg.Chat.MaxMessageLength,
			AssistantContext: cfg.Chat.AssistantContext,
		}, log)
	channelService.SetRecorder(metrics)
	outboxService := appevent.NewOutboxService(outboxRepo, log)

	// Realtime hub for the chat server
	hub := realtime.NewHub(log)
	hubCtx, stopHub := context.WithCancel(rootCtx)
	defer stopHub()
	go hub.Run(hubCtx)

	// Event bus and subscriptions
	eventBus := event.NewInMemoryEventBus(log)
	subscribeHandlers(cfg, log, eventBus, idempotencyStore, lookupCache, hub, channelService, metrics, providers.MetricsEnabled())
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var outboxProcessor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		processorCfg := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorCfg.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorCfg.PollInterval = cfg.Event.PollInterval
		}
		processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorCfg.CleanupRetention = cfg.Event.CleanupRetention
		}
		if cfg.Event.ClaimTimeout > 0 {
			processorCfg.ClaimTimeout = cfg.Event.ClaimTimeout
		}
		outboxProcessor = event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorCfg, log)
		txScope.OnEventsCommitted(outboxProcessor.Wake)
		if err := outboxProcessor.Start(rootCtx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	} else {
		log.Warn("Outbox processor disabled, events stay pending")
	}

	// Background jobs
	var jobScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobScheduler = scheduler.NewScheduler(scheduler.FromConfig(cfg.Scheduler), log)
		if err := scheduler.RegisterMeetingSweep(jobScheduler, meetingService, cfg.Scheduler.MeetingSweepInterval); err != nil {
			log.Fatal("Failed to register meeting sweep", zap.Error(err))
		}
		if err := jobScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// HTTP handlers
	checks := []handler.HealthCheck{
		{Name: "database", Check: db.Ping},
		{Name: "redis", Check: cacheFactory.Ping},
	}
	if storageCheck != nil {
		checks = append(checks, handler.HealthCheck{Name: "storage", Check: storageCheck})
	}
	apiHandlers := router.APIHandlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		User:       handler.NewUserHandler(userService, roleService),
		Course:     handler.NewCourseHandler(lookupService, evaluationService),
		Assignment: handler.NewAssignmentHandler(assignmentService),
		Meeting:    handler.NewMeetingHandler(meetingService),
		Task:       handler.NewTaskHandler(taskService),
		Review:     handler.NewReviewHandler(reviewService),
		Outbox:     handler.NewOutboxHandler(outboxService),
		System:     handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, checks...),
	}

	realtimeServer := realtime.NewServer(hub, channelService, cfg.Chat, middleware.OriginHosts(cfg.HTTP.CORSAllowOrigins), log)
	realtimeServer.SetGauge(metrics)
	chatHandlers := router.ChatHandlers{
		Channel:   handler.NewChannelHandler(channelService),
		WebSocket: handler.NewWebSocketHandler(realtimeServer),
		System:    handler.NewSystemHandler(cfg.App.Name+"-chat", telemetry.ServiceVersion, checks...),
	}

	authenticate := middleware.Authenticate(middleware.AuthConfig{
		Tokens:          tokens,
		Revocations:     revocations,
		QueryTokenPaths: []string{"/ws"},
		Logger:          log,
	})

	engineCfg := router.EngineConfig{
		ServiceName:     cfg.App.Name,
		HTTP:            cfg.HTTP,
		Logger:          log,
		Tracing:         providers.TracesEnabled(),
		Profiling:       profiler != nil && profiler.Running(),
		Metrics:         metrics,
		LogSkipPaths:    []string{"/health"},
		BodyLimitRoutes: router.UploadLimits(cfg.Storage.MaxUploadSize),
	}
	swaggerGuard, err := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, authenticate)
	if err != nil {
		log.Fatal("Invalid swagger configuration", zap.Error(err))
	}
	if cfg.Swagger.Enabled && !router.DocsGenerated() {
		log.Warn("API docs are not linked in; run go generate ./cmd/server and build with -tags swagger")
	}

	apiEngine := router.NewEngine(engineCfg)
	apiRoutes := append(router.APIRoutes(apiHandlers, authenticate), router.SwaggerRoutes(swaggerGuard))
	router.NewRouter(apiEngine).Register(apiRoutes...).Setup()

	engineCfg.ServiceName = cfg.App.Name + "-chat"
	engineCfg.BodyLimitRoutes = nil
	// websocket connections outlive any request timeout
	engineCfg.HTTP.RequestTimeout = 0
	chatEngine := router.NewEngine(engineCfg)
	router.NewRouter(chatEngine).Register(router.ChatRoutes(chatHandlers, authenticate)...).Setup()

	apiServer := newHTTPServer(cfg.App.Port, apiEngine, cfg.HTTP)
	// websocket connections outlive any write timeout
	chatServer := newHTTPServer(cfg.App.ChatPort, chatEngine, cfg.HTTP)
	chatServer.WriteTimeout = 0

	serverErr := make(chan error, 2)
	for name, srv := range map[string]*http.Server{"api": apiServer, "chat": chatServer} {
		go func() {
			log.Info("Server starting", zap.String("server", name), zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("Server failed, shutting down", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(rootCtx, shutdownTimeout)
	defer cancel()

	// websocket handlers return once the hub stops
	stopHub()
	g, gctx := errgroup.WithContext(ctx)
	for name, srv := range map[string]*http.Server{"api": apiServer, "chat": chatServer} {
		g.Go(func() error {
			if err := srv.Shutdown(gctx); err != nil {
				log.Error("Server forced to shutdown", zap.String("server", name), zap.Error(err))
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
	if jobScheduler != nil {
		if err := jobScheduler.Stop(ctx); err != nil {
			log.Warn("Error stopping scheduler", zap.Error(err))
		}
	}
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(ctx); err != nil {
			log.Warn("Error stopping outbox processor", zap.Error(err))
		}
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// subscribeHandlers wires the event handlers to the bus. The assistant reply
// writes a message, so it runs behind the idempotency guard.
func subscribeHandlers(
	cfg *config.Config,
	log *zap.Logger,
	bus *event.InMemoryEventBus,
	store shared.IdempotencyStore,
	lookups appshared.LookupCache,
	hub *realtime.Hub,
	replier appevent.AssistantReplier,
	recorder appevent.Recorder,
	metricsEnabled bool,
) {
	bus.Subscribe(appevent.NewLookupInvalidationHandler(lookups, log))
	bus.Subscribe(appevent.NewChatBroadcastHandler(hub, log))
	bus.Subscribe(event.NewIdempotentHandler(
		appevent.NewAssistantReplyHandler(replier, log),
		store,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}),
	))
	bus.Subscribe(appevent.NewActivityLogHandler(log))
	if metricsEnabled {
		bus.Subscribe(appevent.NewMetricsHandler(recorder))
	}
}

// newFileStore returns the assignment file store and, when storage is
// enabled, its readiness check
func newFileStore(cfg *config.Config, log *zap.Logger) (course.FileStore, func(context.Context) error) {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, assignment files are unavailable")
		return storage.DisabledFileStore{}, nil
	}
	store, err := storage.NewS3FileStore(cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		log.Warn("Assignment bucket not ready, uploads will fail until it is", zap.String("bucket", store.Bucket()), zap.Error(err))
	}
	return store, store.Ping
}

func newHTTPServer(port string, h http.Handler, cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:           ":" + port,
		Handler:        h,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
}
