package handler

import (
	"campus-pay/internal/adapter/http/middleware"
	redisStore "campus-pay/internal/adapter/storage/redis"
	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	TransferSvc    ports.TransferService
	LedgerSvc      ports.LedgerService
	ProvisionSvc   ports.ProvisionService
	TokenSvc       ports.TokenService
	Registry       *notify.Registry
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

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

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Authenticated routes ---
	paymentHandler := NewPaymentHandler(deps.TransferSvc)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("", rl("payments"), paymentHandler.ExecutePayment)
	}

	accountHandler := NewAccountHandler(deps.LedgerSvc)
	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.GET("/me", rl("accounts"), accountHandler.GetMe)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("accounts"), accountHandler.ListTransactions)
	}

	// Live payment notifications. No rate limit: one long-lived
	// connection per tab, bounded by the session registry itself.
	if deps.Registry != nil {
		eventsHandler := NewEventsHandler(deps.Registry, deps.Logger)
		v1.GET("/events", jwtAuth, eventsHandler.Stream)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.ProvisionSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireRole(domain.RoleAdmin))
	{
		admin.POST("/accounts", rl("admin"), adminHandler.CreateAccount)
	}

	return r
}
