package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/carbonwallet/leads-service/docs"
	"github.com/carbonwallet/leads-service/internal/api/handler"
	"github.com/carbonwallet/leads-service/internal/api/middleware"
	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/validate"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Leads  ports.LeadService
	Status ports.StatusService
	Auth   ports.AuthService
	Tokens ports.TokenVerifier
}

// Options configures the HTTP surface.
type Options struct {
	APIPrefix   string
	CORSOrigins []string
	Readiness   []handler.Dependency
	Validator   *validate.Validator
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)
	if opts.Validator == nil {
		opts.Validator = validate.New()
	}
	e.Validator = handler.NewValidator(opts.Validator)

	// Each router gets its own registry for HTTP metrics; /metrics also
	// gathers the service metrics from the default registry.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(opts.Log))
	e.Use(echo.WrapMiddleware(corsHandler(opts.CORSOrigins)))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: httpMetrics,
		Skipper:    skipOperational,
	}))

	// --- Operational endpoints (outside the API prefix) ---
	healthHandler := handler.NewHealthHandler(opts.Readiness...)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API routes ---
	leadHandler := handler.NewLeadHandler(svc.Leads)
	statusHandler := handler.NewStatusHandler(svc.Status)
	authHandler := handler.NewAuthHandler(svc.Auth)
	requireAdmin := []echo.MiddlewareFunc{middleware.Auth(svc.Tokens), middleware.RBAC(domain.RoleAdmin)}

	g := e.Group(opts.APIPrefix)
	g.GET("", handler.Root)
	g.GET("/", handler.Root)
	g.POST("/status", statusHandler.Create)
	g.GET("/status", statusHandler.List)
	g.POST("/leads", leadHandler.Create)
	g.GET("/leads", leadHandler.List, requireAdmin...)
	g.POST("/auth/login", authHandler.Login)

	return e
}

func corsHandler(origins []string) func(next http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper:      skipOperational,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// skipOperational keeps probes and scrapes out of access logs and HTTP metrics.
func skipOperational(c echo.Context) bool {
	p := c.Path()
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
