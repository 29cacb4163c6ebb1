// Package api exposes the calculator over HTTP.
package api

import (
	"context"
	"fmt"

	"github.com/example/calculator-demo/modules/calculator"
	"github.com/example/calculator-demo/modules/stats"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the driving adapter that exposes REST endpoints.
type APIModule struct {
	cfg               Config
	app               *fiber.App
	calculatorAdapter calculator.CalculatorPort
	statsAdapter      stats.StatsPort
	logger            types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(logger types.Logger, opts ...Option) *APIModule {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &APIModule{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"calculator", "stats"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "calculator":
		m.calculatorAdapter = calculator.NewCalculatorAdapter(container)
	case "stats":
		m.statsAdapter = stats.NewStatsAdapter(container)
	}
}

// Start builds the Fiber app and starts listening in the background.
func (m *APIModule) Start(_ context.Context) error {
	if m.calculatorAdapter == nil {
		return fmt.Errorf("calculator dependency not set")
	}
	if m.statsAdapter == nil {
		return fmt.Errorf("stats dependency not set")
	}

	m.app = newApp(m.cfg, NewHandlers(m.calculatorAdapter, m.statsAdapter, m.logger))

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started",
		"addr", addr,
		"rateLimitMax", m.cfg.RateLimitMax,
		"rateLimitWindow", m.cfg.RateLimitWindow.String(),
		"sharedLimiter", m.cfg.LimiterStorage != nil)
	return nil
}

// Stop shuts down the Fiber HTTP server and the limiter storage.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server...")
	if err := m.app.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	if m.cfg.LimiterStorage != nil {
		if err := m.cfg.LimiterStorage.Close(); err != nil {
			m.logger.Warn("Failed to close limiter storage", "error", err)
		}
	}
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "HTTP server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port":           m.cfg.Port,
			"rate_limit_max": m.cfg.RateLimitMax,
		},
	}
}

// newApp creates the Fiber app with middleware and routes.
func newApp(cfg Config, h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Calculator",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", h.HealthCheck)
	app.Get("/stats", h.GetStats)

	calc := app.Group("/calculator")
	if cfg.RateLimitMax > 0 {
		calc.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
			Storage:    cfg.LimiterStorage,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
					Error:   "rate_limited",
					Message: "Too many requests, try again later",
				})
			},
		}))
	}

	// Fixed paths are registered before the :operator catch-alls.
	calc.Post("/scientific/factor", h.Factorize)

	for _, ep := range []struct {
		path     string
		category string
	}{
		{"/", ""},
		{"/basic", "basic"},
		{"/scientific", "scientific"},
	} {
		calc.Get(ep.path, h.ListOperators(ep.category))
		calc.Post(ep.path, h.EvaluateBody(ep.category))
	}

	calc.Post("/basic/:operator", h.EvaluatePath("basic"))
	calc.Post("/scientific/:operator", h.EvaluatePath("scientific"))
	calc.Post("/:operator", h.EvaluatePath(""))

	return app
}

// errorHandler renders errors that escape the handlers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
