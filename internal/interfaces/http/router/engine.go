package router

import (
	"time"

	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/avocado/teamhub/internal/infrastructure/logger"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig selects the shared middleware stack of a server
type EngineConfig struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Logger      *zap.Logger
	// Tracing enables otelgin spans
	Tracing bool
	// Profiling tags pyroscope samples with the route
	Profiling bool
	// Metrics is optional
	Metrics middleware.HTTPRecorder
	// LogSkipPaths are not access-logged
	LogSkipPaths []string
	// BodyLimitRoutes override HTTP.MaxBodySize per route, see UploadLimits
	BodyLimitRoutes map[string]int64
}

// NewEngine creates a gin engine with the middleware stack applied in order:
// request id, recovery, access log, tracing, metrics, profiling, security
// headers, CORS, request timeout, body limit and, when enabled, rate limiting.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, cfg.LogSkipPaths...))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	if cfg.Tracing {
		engine.Use(middleware.SpanAttributes())
	}
	engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	engine.Use(middleware.Profiling(cfg.Profiling))
	security := middleware.DefaultSecurityConfig()
	security.HSTSMaxAge = cfg.HTTP.HSTSMaxAge
	engine.Use(middleware.Secure(security))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	if cfg.HTTP.MaxBodySize > 0 || len(cfg.BodyLimitRoutes) > 0 {
		engine.Use(middleware.BodyLimit(middleware.BodyLimits{
			Default: cfg.HTTP.MaxBodySize,
			Routes:  cfg.BodyLimitRoutes,
		}))
	}

	if cfg.HTTP.RateLimitEnabled {
		window := cfg.HTTP.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, window)))
		log.Info("Rate limiting enabled",
			zap.String("service", cfg.ServiceName),
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", window),
		)
	}

	return engine
}
