// Package config provides configuration for the platform server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/agentdesk/agentdesk/registry"
	"github.com/agentdesk/agentdesk/stream"
)

// Config holds the platform configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Event log
	MemoryID      string
	EventPageSize int

	// Agent runtime
	RuntimeEndpoint string
	RuntimeManaged  bool
	SessionIDHeader string
	TraceHeader     string
	AuthMode        string
	BearerToken     string
	TargetUserID    string
	InvokeTimeout   time.Duration

	// Agent definition service
	AgentServiceURL string
	AgentCacheTTL   time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:     getEnv("DATABASE_URL", "file:agentdesk.db?cache=shared&mode=rwc"),
		MemoryID:        getEnv("MEMORY_ID", "default"),
		EventPageSize:   getEnvInt("EVENT_PAGE_SIZE", 100),
		RuntimeEndpoint: getEnv("RUNTIME_ENDPOINT", "http://localhost:8090"),
		RuntimeManaged:  getEnvBool("RUNTIME_MANAGED", true),
		SessionIDHeader: getEnv("SESSION_ID_HEADER", "X-Session-Id"),
		TraceHeader:     getEnv("TRACE_HEADER", "X-Trace-Id"),
		AuthMode:        getEnv("AUTH_MODE", stream.AuthModeUser),
		BearerToken:     getEnv("BEARER_TOKEN", ""),
		TargetUserID:    getEnv("TARGET_USER_ID", ""),
		InvokeTimeout:   time.Duration(getEnvInt("INVOKE_TIMEOUT_MS", 300000)) * time.Millisecond,
		AgentServiceURL: getEnv("AGENT_SERVICE_URL", "http://localhost:8091"),
		AgentCacheTTL:   time.Duration(getEnvInt("AGENT_CACHE_TTL_MS", int(registry.DefaultTTL/time.Millisecond))) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// StreamConfig derives the invocation client configuration.
func (c *Config) StreamConfig() stream.Config {
	cfg := stream.Config{
		Endpoint:        c.RuntimeEndpoint,
		AuthMode:        c.AuthMode,
		BearerToken:     c.BearerToken,
		TargetUserID:    c.TargetUserID,
		SessionIDHeader: c.SessionIDHeader,
		Timeout:         c.InvokeTimeout,
	}
	if c.RuntimeManaged {
		cfg.AppendInvocations = true
		cfg.TraceHeader = c.TraceHeader
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
