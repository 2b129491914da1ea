package handler

import (
	"time"

	"payment-terminal-bridge/internal/adapter/http/middleware"
	redisStore "payment-terminal-bridge/internal/adapter/storage/redis"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies; payment requests are small.
const maxBodyBytes = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Orchestrator   ports.PaymentOrchestrator
	Bindings       ports.BindingManager
	AuthSvc        ports.AuthService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	AuditSvc       ports.AuditService                  // nil = audit logging disabled
	RateLimitStore *redisStore.RateLimitStore          // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule // nil = middleware.DefaultRateLimitRules
	HealthCheckers []ports.HealthChecker
	MetricsEnabled bool
	MetricsPath    string
	SSEHeartbeat   time.Duration
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep: verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.MetricsEnabled {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	rules := deps.RateLimitRules
	if rules == nil {
		rules = middleware.DefaultRateLimitRules()
	}

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/auth/token", rl("auth_token"), authHandler.IssueToken)

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	operatorOnly := middleware.RequireOperator()

	// --- Terminal routes (terminal clients for their own terminal, or operators) ---
	terminalHandler := NewTerminalHandler(deps.Orchestrator, deps.SSEHeartbeat)
	bindingHandler := NewBindingHandler(deps.Bindings)

	terminal := v1.Group("/terminals/:"+middleware.ParamTerminalID, jwtAuth, middleware.RequireTerminal())
	{
		terminal.POST("/sale", rl("payments"), terminalHandler.Sale)
		terminal.POST("/preauth", rl("payments"), terminalHandler.PreAuth)
		terminal.POST("/capture", rl("payments"), terminalHandler.Capture)
		terminal.POST("/increment", rl("payments"), terminalHandler.Increment)
		terminal.POST("/adjust", rl("payments"), terminalHandler.Adjust)
		terminal.POST("/void", rl("payments"), terminalHandler.Void)
		terminal.POST("/return", rl("payments"), terminalHandler.Return)
		terminal.POST("/collect-card", rl("payments"), terminalHandler.CollectCard)
		terminal.POST("/cancel", terminalHandler.Cancel)
		terminal.POST("/ack", rl("terminal_read"), terminalHandler.Acknowledge)
		terminal.GET("/status", rl("terminal_read"), terminalHandler.Status)
		terminal.GET("/events", rl("terminal_read"), terminalHandler.Events)

		terminal.GET("/binding", rl("terminal_read"), bindingHandler.Get)
		terminal.PUT("/binding", operatorOnly, rl("operator"), bindingHandler.Update)
		terminal.POST("/binding/refresh", rl("terminal_read"), bindingHandler.Refresh)
		terminal.POST("/binding/swap", rl("payments"), bindingHandler.Swap)
	}

	readers := v1.Group("/readers/:"+ParamReaderID, jwtAuth, operatorOnly)
	{
		readers.POST("/ping", rl("operator"), bindingHandler.Ping)
		readers.POST("/beep", rl("operator"), bindingHandler.Beep)
	}

	// --- Reporting (terminal-scoped for terminal clients) ---
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)
	v1.GET("/stats", jwtAuth, rl("terminal_read"), dashboardHandler.GetStats)

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("terminal_read"), dashboardHandler.ListTransactions)
		transactions.GET("/:id", rl("terminal_read"), dashboardHandler.GetTransaction)
		transactions.POST("/:id/reconcile", operatorOnly, rl("operator"), dashboardHandler.Reconcile)
	}

	// --- Client provisioning (operators) ---
	v1.POST("/clients", jwtAuth, operatorOnly, rl("operator"), authHandler.CreateClient)

	return r
}
