package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Config holds the HTTP server settings.
type Config struct {
	// Port is the TCP port the server listens on
	Port int

	// RateLimitMax is the number of calculator requests allowed per client
	// IP within RateLimitWindow. Zero disables rate limiting.
	RateLimitMax int

	// RateLimitWindow is the fixed window of the rate limiter
	RateLimitWindow time.Duration

	// LimiterStorage keeps limiter counters outside the process (optional).
	// Nil keeps them in memory.
	LimiterStorage fiber.Storage
}

// DefaultConfig returns the default API configuration.
func DefaultConfig() Config {
	return Config{
		Port:            3000,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithRateLimit sets the request budget per window. A non-positive max
// disables the limiter.
func WithRateLimit(max int, window time.Duration) Option {
	return func(c *Config) {
		c.RateLimitMax = max
		if window > 0 {
			c.RateLimitWindow = window
		}
	}
}

// WithLimiterStorage sets a shared storage for limiter counters.
func WithLimiterStorage(storage fiber.Storage) Option {
	return func(c *Config) {
		c.LimiterStorage = storage
	}
}
