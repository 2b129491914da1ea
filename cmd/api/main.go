package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-terminal-bridge/config"
	httpHandler "payment-terminal-bridge/internal/adapter/http/handler"
	"payment-terminal-bridge/internal/adapter/http/middleware"
	"payment-terminal-bridge/internal/adapter/reader"
	pgStorage "payment-terminal-bridge/internal/adapter/storage/postgres"
	redisStorage "payment-terminal-bridge/internal/adapter/storage/redis"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/internal/service"
	"payment-terminal-bridge/pkg/logger"
	"payment-terminal-bridge/pkg/shutdownqueue"

	"github.com/gin-gonic/gin"
)

// shutdownTimeout bounds the whole teardown, including reader resets.
const shutdownTimeout = 20 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, "api")
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("default_backend", cfg.Reader.DefaultBackend).
		Msg("Starting Payment Terminal Bridge")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := shutdownqueue.New()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, "api", log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	queue.Add("postgres", func(context.Context) error { pool.Close(); return nil })
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	queue.Add("redis", func(context.Context) error { return rdb.Close() })
	log.Info().Msg("Redis connected")

	// Initialize repositories
	readerRepo := pgStorage.NewReaderRepo(pool)
	bindingRepo := pgStorage.NewBindingRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	relayRepo := pgStorage.NewRelayCommandRepo(pool)
	clientRepo := pgStorage.NewClientRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	webhookRepo := pgStorage.NewWebhookRepo(pool)
	transactor := pgStorage.NewTransactor(pool, cfg.Database.LockTimeout)

	// Initialize Redis stores
	readerLock := redisStorage.NewReaderLock(rdb)
	resultCache := redisStorage.NewResultCache(rdb)
	sequences := redisStorage.NewSequenceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Reader gateway: one backend per transport
	relayBackend := reader.NewRelayBackend(relayRepo, sequences, cfg.Reader.RelayPoll, cfg.Relay.CommandTTL, log)
	gateway := reader.NewGateway(log)
	gateway.Register(domain.BackendRelay, relayBackend)
	gateway.Register(domain.BackendDirect, reader.NewDirectBackend(&http.Client{Timeout: cfg.Reader.HTTPTimeout}, encSvc))
	if domain.BackendKind(cfg.Reader.DefaultBackend) == domain.BackendSimulator {
		gateway.Register(domain.BackendSimulator, reader.NewSimulator(cfg.Reader.SimulatorDelay))
		log.Warn().Msg("Simulator backend enabled, no real card will be charged")
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go relayBackend.SweepStale(sweepCtx, cfg.Relay.CommandTTL)
	queue.Add("relay-sweeper", func(context.Context) error { stopSweep(); return nil })

	// Initialize business services
	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(clientRepo, hashSvc, tokenSvc)
	webhookSvc := service.NewWebhookService(webhookRepo, sigSvc, &http.Client{Timeout: 10 * time.Second}, cfg.Webhook.URL, cfg.Webhook.Secret, log)
	reportingSvc := service.NewReportingService(txRepo, webhookRepo, transactor, webhookSvc, auditSvc, log)
	bindingSvc := service.NewBindingService(bindingRepo, readerRepo, gateway, domain.BackendKind(cfg.Reader.DefaultBackend), cfg.Reader.BindingCacheTTL, log)

	events := service.NewEventBus()
	supervisor := service.NewSupervisor(events, cfg.Reader.RequestTimeout, log)
	orchestrator := service.NewOrchestrator(
		bindingSvc,
		gateway,
		txRepo,
		resultCache,
		readerLock,
		webhookSvc,
		supervisor,
		events,
		service.OrchestratorConfig{
			RequestTimeout:    cfg.Reader.RequestTimeout,
			CardTimeout:       cfg.Reader.CardTimeout,
			PreflightAttempts: cfg.Reader.PreflightAttempts,
			LockTTL:           cfg.Reader.LockTTL,
			ResultTTL:         cfg.Reader.ResultTTL,
		},
		log,
	)

	if cfg.Webhook.URL == "" {
		log.Warn().Msg("webhook.url not set, results will not be delivered to the order domain")
	}

	rules := middleware.DefaultRateLimitRules()
	rules["payments"] = middleware.RateLimitRule{Limit: int64(cfg.RateLimit.PaymentPerMinute), Window: time.Minute}
	rules["auth_token"] = middleware.RateLimitRule{Limit: int64(cfg.RateLimit.AuthPerMinute), Window: time.Minute}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Orchestrator:   orchestrator,
		Bindings:       bindingSvc,
		AuthSvc:        authSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		AuditSvc:       auditSvc,
		RateLimitStore: rateLimitStore,
		RateLimitRules: rules,
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		SSEHeartbeat:   cfg.SSE.Heartbeat,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never finish on their own; end them as soon as the server
	// starts draining.
	srv.RegisterOnShutdown(events.Close)
	queue.Add("http", srv.Shutdown)
	// Runs before the HTTP drain: in-flight operations end as cancelled with
	// their readers reset, and new ones are refused.
	queue.Add("orchestrator", orchestrator.Shutdown)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := queue.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown finished with errors")
	}

	log.Info().Msg("Server exited")
}
