package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hindibooks/storefront/docs"
	"github.com/hindibooks/storefront/internal/api/handler"
	"github.com/hindibooks/storefront/internal/api/middleware"
	"github.com/hindibooks/storefront/internal/core/ports"
	"github.com/hindibooks/storefront/internal/infrastructure/http/handlers"
)

// Dependencies are the services the agent API exposes.
type Dependencies struct {
	Sessions ports.SessionService
	Catalog  ports.CatalogService
	Cart     ports.CartService
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	// HTTP metrics get their own registry so every router can register them;
	// /metrics serves it together with the default one.
	httpMetrics := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: httpMetrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Sessions)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	cartHandler := handler.NewCartHandler(deps.Cart, deps.Catalog)
	requireSession := middleware.RequireSession(deps.Sessions)

	// --- Session routes ---
	e.GET("/session", authHandler.Session)
	e.POST("/session/login", authHandler.Login)
	e.POST("/session/register", authHandler.Register)
	e.DELETE("/session", authHandler.Logout)

	// --- Catalog routes ---
	e.GET("/books", catalogHandler.List)
	e.GET("/books/featured", catalogHandler.Featured)
	e.GET("/books/:id", catalogHandler.Get)
	e.GET("/categories", catalogHandler.Categories)
	e.GET("/categories/:name/books", catalogHandler.CategoryBooks)
	e.GET("/search", catalogHandler.Search)

	// --- Cart routes (session required) ---
	e.GET("/cart", cartHandler.Get, requireSession)
	e.POST("/cart", cartHandler.Add, requireSession)
	e.DELETE("/cart", cartHandler.Clear, requireSession)
	e.PUT("/cart/:id", cartHandler.Update, requireSession)
	e.DELETE("/cart/:id", cartHandler.Remove, requireSession)

	// --- Health probes, metrics and docs ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness over the backend and token store
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == "/metrics"
		},
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("request_id", v.RequestID).
				Dur("latency", v.Latency).
				Msg("request completed")
			return nil
		},
	})
}
