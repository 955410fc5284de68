// Package ratelimit provides Redis-backed sliding window rate limiting
// as a Fiber middleware.
package ratelimit

import (
	"time"
)

// RouteLimit defines the rate limit for a specific route group.
type RouteLimit struct {
	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Window is the time window for the rate limit.
	Window time.Duration
}

// Config holds rate limiter configuration.
type Config struct {
	// DefaultLimit applies to routes with no specific limit.
	DefaultLimit int

	// DefaultWindow is the time window for the default limit.
	DefaultWindow time.Duration

	// RouteLimits maps route groups (e.g. "auth") to their limits.
	RouteLimits map[string]RouteLimit

	// KeyPrefix is the prefix for Redis keys.
	KeyPrefix string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		RouteLimits:   make(map[string]RouteLimit),
		KeyPrefix:     "ratelimit:",
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithDefaultLimit sets the default rate limit.
func WithDefaultLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.DefaultLimit = limit
		c.DefaultWindow = window
	}
}

// WithRouteLimit sets a specific rate limit for a route group.
func WithRouteLimit(group string, limit int, window time.Duration) Option {
	return func(c *Config) {
		c.RouteLimits[group] = RouteLimit{
			Limit:  limit,
			Window: window,
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// limitForGroup returns the configured limit for a route group.
func (c *Config) limitForGroup(group string) (int, time.Duration) {
	if rl, ok := c.RouteLimits[group]; ok {
		return rl.Limit, rl.Window
	}
	return c.DefaultLimit, c.DefaultWindow
}
