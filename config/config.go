package config

import (
	"fmt"
	"time"
)

// Config is the complete rlmbox service configuration.
type Config struct {
	// Server holds the HTTP listener settings.
	Server ServerConfig `yaml:"server" env:"SERVER"`
	// Sandbox holds the execution budgets.
	Sandbox SandboxConfig `yaml:"sandbox" env:"SANDBOX"`
	// Session holds the session registry settings.
	Session SessionConfig `yaml:"session" env:"SESSION"`
	// Log holds the logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    int           `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// SandboxConfig configures the per-execution budgets and the server-side
// concurrency cap.
type SandboxConfig struct {
	MaxOutputLen  int           `yaml:"max_output_len" env:"MAX_OUTPUT_LEN"`
	MaxCalls      int           `yaml:"max_calls" env:"MAX_CALLS"`
	MaxDepth      int           `yaml:"max_depth" env:"MAX_DEPTH"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxConcurrent int           `yaml:"max_concurrent" env:"MAX_CONCURRENT"`
}

// SessionConfig configures the session registry.
type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend string        `yaml:"backend" env:"BACKEND"`
	TTL     time.Duration `yaml:"ttl" env:"TTL"`
	Redis   RedisConfig   `yaml:"redis" env:"REDIS"`
}

// RedisConfig configures the Redis session backend.
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	Password  string `yaml:"password" env:"PASSWORD"`
	DB        int    `yaml:"db" env:"DB"`
	PoolSize  int    `yaml:"pool_size" env:"POOL_SIZE"`
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is "json" or "console".
	Format string `yaml:"format" env:"FORMAT"`
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in (0, 65535], got %d", c.Server.HTTPPort)
	}
	if c.Sandbox.MaxOutputLen <= 0 {
		return fmt.Errorf("sandbox.max_output_len must be positive, got %d", c.Sandbox.MaxOutputLen)
	}
	if c.Sandbox.MaxCalls <= 0 {
		return fmt.Errorf("sandbox.max_calls must be positive, got %d", c.Sandbox.MaxCalls)
	}
	if c.Sandbox.MaxDepth <= 0 {
		return fmt.Errorf("sandbox.max_depth must be positive, got %d", c.Sandbox.MaxDepth)
	}
	if c.Sandbox.Timeout <= 0 {
		return fmt.Errorf("sandbox.timeout must be positive, got %v", c.Sandbox.Timeout)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Session.Redis.Addr == "" {
		return fmt.Errorf("session.redis.addr is required for the redis backend")
	}
	return nil
}
