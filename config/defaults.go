package config

import "time"

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:  DefaultServerConfig(),
		Sandbox: DefaultSandboxConfig(),
		Session: DefaultSessionConfig(),
		Log:     DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8100,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultSandboxConfig returns the default execution budgets.
func DefaultSandboxConfig() SandboxConfig {
	return SandboxConfig{
		MaxOutputLen:  50000,
		MaxCalls:      20,
		MaxDepth:      5,
		Timeout:       120 * time.Second,
		MaxConcurrent: 32,
	}
}

// DefaultSessionConfig returns the default session registry configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Backend: "memory",
		TTL:     24 * time.Hour,
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			DB:        0,
			PoolSize:  10,
			KeyPrefix: "rlmbox:",
		},
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}
