// pkg/config/env.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment variable the game reads.
const EnvPrefix = "ROADBALL_"

// EnvironmentConfig holds deployment settings read from the environment.
type EnvironmentConfig struct {
	ServerAddr   string
	ServerPort   int
	MaxSessions  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	TimeStepMS    float64
	TimeScale     float64
	InputRate     int
	MaxInputBytes int

	// Circuit breaker around snapshot writes
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int

	// Resource management
	MaxMemoryMB           int64
	ShutdownTimeout       time.Duration
	ResourceCheckInterval time.Duration
}

// FieldError reports an environment setting that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// skipped. With no paths, ".env" in the working directory is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfigFromEnv reads ROADBALL_* variables over the defaults and
// validates the result.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	r := envReader{}
	config := &EnvironmentConfig{
		ServerAddr:   r.str("SERVER_ADDR", "localhost"),
		ServerPort:   r.integer("SERVER_PORT", 4566),
		MaxSessions:  r.integer("MAX_SESSIONS", 32),
		ReadTimeout:  r.duration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: r.duration("WRITE_TIMEOUT", 30*time.Second),

		TimeStepMS:    r.float("TIME_STEP_MS", 25),
		TimeScale:     r.float("TIME_SCALE", 2.6),
		InputRate:     r.integer("INPUT_RATE", 120),
		MaxInputBytes: r.integer("MAX_INPUT_BYTES", 1024),

		CircuitBreakerMaxRequests:         r.integer("CIRCUIT_BREAKER_MAX_REQUESTS", 3),
		CircuitBreakerInterval:            r.duration("CIRCUIT_BREAKER_INTERVAL", 60*time.Second),
		CircuitBreakerTimeout:             r.duration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		CircuitBreakerMaxConsecutiveFails: r.integer("CIRCUIT_BREAKER_MAX_CONSECUTIVE_FAILS", 5),

		MaxMemoryMB:           int64(r.integer("MAX_MEMORY_MB", 500)),
		ShutdownTimeout:       r.duration("SHUTDOWN_TIMEOUT", 30*time.Second),
		ResourceCheckInterval: r.duration("RESOURCE_CHECK_INTERVAL", 10*time.Second),
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := validateEnvironmentConfig(config); err != nil {
		return nil, fmt.Errorf("environment configuration: %w", err)
	}
	return config, nil
}

// ApplyEnvironment copies the deployment settings that also live in the
// game configuration.
func (c *GameConfig) ApplyEnvironment(env *EnvironmentConfig) {
	c.Network.ServerAddress = env.ServerAddr
	c.Network.ServerPort = env.ServerPort
	c.Network.InputRate = env.InputRate
	c.Network.MaxInputBytes = env.MaxInputBytes
	c.Frame.TimeStepMS = env.TimeStepMS
	c.Physics.TimeScale = env.TimeScale
}

func validateEnvironmentConfig(c *EnvironmentConfig) error {
	switch {
	case c.ServerAddr == "":
		return &FieldError{"ServerAddr", "must not be empty"}
	case c.ServerPort < 1024 || c.ServerPort > 65535:
		return &FieldError{"ServerPort", "must be between 1024 and 65535"}
	case c.MaxSessions < 1 || c.MaxSessions > 1000:
		return &FieldError{"MaxSessions", "must be between 1 and 1000"}
	case c.ReadTimeout < time.Second || c.ReadTimeout > time.Minute:
		return &FieldError{"ReadTimeout", "must be between 1s and 1m"}
	case c.WriteTimeout < time.Second || c.WriteTimeout > time.Minute:
		return &FieldError{"WriteTimeout", "must be between 1s and 1m"}
	case c.TimeStepMS < 1 || c.TimeStepMS > 1000:
		return &FieldError{"TimeStepMS", "must be between 1 and 1000"}
	case c.TimeScale <= 0 || c.TimeScale > 100:
		return &FieldError{"TimeScale", "must be in (0, 100]"}
	case c.InputRate < 1:
		return &FieldError{"InputRate", "must be positive"}
	case c.MaxInputBytes < 64:
		return &FieldError{"MaxInputBytes", "must be at least 64"}
	case c.CircuitBreakerMaxRequests < 1:
		return &FieldError{"CircuitBreakerMaxRequests", "must be positive"}
	case c.CircuitBreakerInterval < time.Second:
		return &FieldError{"CircuitBreakerInterval", "must be at least 1s"}
	case c.CircuitBreakerTimeout < time.Second:
		return &FieldError{"CircuitBreakerTimeout", "must be at least 1s"}
	case c.CircuitBreakerMaxConsecutiveFails < 1:
		return &FieldError{"CircuitBreakerMaxConsecutiveFails", "must be positive"}
	case c.MaxMemoryMB < 1:
		return &FieldError{"MaxMemoryMB", "must be positive"}
	case c.ShutdownTimeout <= 0:
		return &FieldError{"ShutdownTimeout", "must be positive"}
	case c.ResourceCheckInterval <= 0:
		return &FieldError{"ResourceCheckInterval", "must be positive"}
	}
	return nil
}

// envReader parses variables, remembering the first failure.
type envReader struct {
	err error
}

func (r *envReader) lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	return v, ok && v != ""
}

func (r *envReader) fail(name, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s%s=%q: %w", EnvPrefix, name, value, err)
	}
}

func (r *envReader) str(name, fallback string) string {
	if v, ok := r.lookup(name); ok {
		return v
	}
	return fallback
}

func (r *envReader) integer(name string, fallback int) int {
	v, ok := r.lookup(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(name, v, err)
		return fallback
	}
	return n
}

func (r *envReader) float(name string, fallback float64) float64 {
	v, ok := r.lookup(name)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(name, v, err)
		return fallback
	}
	return f
}

func (r *envReader) duration(name string, fallback time.Duration) time.Duration {
	v, ok := r.lookup(name)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(name, v, err)
		return fallback
	}
	return d
}
