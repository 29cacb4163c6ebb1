package cache

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberredis "github.com/gofiber/storage/redis/v3"
)

// NewLimiterStorage returns a Redis backed fiber.Storage for the HTTP rate
// limiter, sharing one request budget between instances.
//
// gofiber/storage/redis panics when it cannot connect, so reachability is
// checked first.
func NewLimiterStorage(cfg Config) (fiber.Storage, error) {
	conn, err := net.DialTimeout("tcp", cfg.RedisAddr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("redis not reachable at %s: %w", cfg.RedisAddr, err)
	}
	_ = conn.Close()

	host, port := parseRedisAddr(cfg.RedisAddr)
	return fiberredis.New(fiberredis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.RedisPassword,
		Database: cfg.RedisDB,
		PoolSize: 10,
	}), nil
}

// parseRedisAddr splits "host:port", falling back to 127.0.0.1:6379 for the
// missing parts.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
