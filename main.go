package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/calculator-demo/domain/calc"
	apimod "github.com/example/calculator-demo/modules/api"
	cachemod "github.com/example/calculator-demo/modules/cache"
	calcmod "github.com/example/calculator-demo/modules/calculator"
	statsmod "github.com/example/calculator-demo/modules/stats"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	// Load configuration from environment
	httpPort := getEnvInt("PORT", 3000)
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	cacheEnabled := getEnvBool("CACHE_ENABLED", false)
	cacheTTL := getEnvDuration("CACHE_TTL", time.Hour)
	cachePrefix := getEnv("CACHE_PREFIX", "factor:")
	rateLimitMax := getEnvInt("RATE_LIMIT_MAX", 100)
	rateLimitWindow := getEnvDuration("RATE_LIMIT_WINDOW", time.Minute)
	rateLimitStorage := strings.ToLower(getEnv("RATE_LIMIT_STORAGE", "memory"))
	shutdownTimeout := getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)

	logLevel := mono.LogLevelInfo
	if strings.EqualFold(getEnv("LOG_LEVEL", "info"), "error") {
		logLevel = mono.LogLevelError
	}

	log.Println("=== Calculator Service ===")
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Factorization cache: %t (redis: %s, TTL: %s, prefix: %s)", cacheEnabled, redisAddr, cacheTTL, cachePrefix)
	log.Printf("Rate limit: %d requests per %s (%s storage)", rateLimitMax, rateLimitWindow, rateLimitStorage)
	log.Printf("Limits: factorial up to %d!, factorization up to %d", calc.DefaultFactorial.MaxN(), calc.DefaultFactorizer.MaxN())

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}
	logger := app.Logger()

	cacheOpts := []cachemod.Option{
		cachemod.WithRedisAddr(redisAddr),
		cachemod.WithRedisPassword(redisPassword),
		cachemod.WithPrefix(cachePrefix),
		cachemod.WithTTL(cacheTTL),
	}

	// Create modules
	calculatorModule := calcmod.NewModule(logger)
	statsModule := statsmod.NewModule(logger)

	apiOpts := []apimod.Option{
		apimod.WithPort(httpPort),
		apimod.WithRateLimit(rateLimitMax, rateLimitWindow),
	}
	if rateLimitStorage == "redis" {
		cfg := cachemod.DefaultConfig()
		for _, opt := range cacheOpts {
			opt(&cfg)
		}
		storage, err := cachemod.NewLimiterStorage(cfg)
		if err != nil {
			log.Fatalf("Failed to create rate limiter storage: %v", err)
		}
		apiOpts = append(apiOpts, apimod.WithLimiterStorage(storage))
	}
	apiModule := apimod.NewModule(logger, apiOpts...)

	// Register modules; the cache has to be wired before the calculator starts
	if cacheEnabled {
		cacheModule := cachemod.NewModule(logger, cacheOpts...)
		if err := app.Register(cacheModule); err != nil {
			log.Fatalf("Failed to register cache module: %v", err)
		}
		calculatorModule.SetCache(cacheModule.Cache())
	}
	for _, m := range []mono.Module{statsModule, calculatorModule, apiModule} {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	// Start modules
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	printStartupInfo(httpPort)

	// Setup graceful shutdown using gelmium/graceful-shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	// Wait for shutdown signal and exit with appropriate code
	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", port)
	log.Println("Endpoints:")
	log.Println("  GET    /health                         - Health check")
	log.Println("  GET    /stats                          - Usage statistics")
	log.Println("  GET    /calculator[/basic|/scientific] - List operators")
	log.Println("  POST   /calculator[/basic|/scientific] - Evaluate {operator, arguments}")
	log.Println("  POST   /calculator[/basic|/scientific]/:operator - Evaluate {arguments}")
	log.Println("  POST   /calculator/scientific/factor   - Prime factorization")
	log.Println("Query parameter ?precision=N sets significant digits (0 = unlimited)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}
