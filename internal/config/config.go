package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/streamhub/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DBPath       string
	LogLevel     string
	LogFormat    string
	ProviderURL  string
	Username     string
	Password     string
	RedisURL     string
	ProxyHost    string
	UserAgent    string
	ChunkSize    int
	RequestRate  float64
	RequestBurst int
	HTTPTimeout  time.Duration
	CacheTTL     time.Duration
	SyncInterval time.Duration
	SyncOnStart  bool
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Port:         constants.DefaultPort,
		DBPath:       constants.DefaultDBPath,
		LogLevel:     "info",
		LogFormat:    "text",
		ProxyHost:    constants.DefaultProxyHost,
		UserAgent:    constants.DefaultUserAgent,
		ChunkSize:    constants.DefaultChunkSize,
		RequestRate:  constants.DefaultRequestRate,
		RequestBurst: constants.DefaultRequestBurst,
		HTTPTimeout:  constants.DefaultHTTPTimeout,
		CacheTTL:     constants.DefaultCacheTTL,
		SyncInterval: constants.DefaultSyncInterval,
	}
}

// Load loads configuration from the optional YAML file named by STREAMHUB_CONFIG,
// then applies environment variables on top
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("STREAMHUB_CONFIG"); path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		cfg = fileCfg
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.ProviderURL = getEnv("XTREAM_URL", c.ProviderURL)
	c.Username = getEnv("XTREAM_USERNAME", c.Username)
	c.Password = getEnv("XTREAM_PASSWORD", c.Password)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.ProxyHost = getEnv("PROXY_HOST", c.ProxyHost)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.ChunkSize = getEnvInt("CHUNK_SIZE", c.ChunkSize)
	c.RequestRate = getEnvFloat("REQUEST_RATE", c.RequestRate)
	c.RequestBurst = getEnvInt("REQUEST_BURST", c.RequestBurst)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.SyncInterval = getEnvDuration("SYNC_INTERVAL", c.SyncInterval)
	c.SyncOnStart = getEnvBool("SYNC_ON_START", c.SyncOnStart)
}

// HasCredentials reports whether a provider account is configured
func (c *Config) HasCredentials() bool {
	return c.ProviderURL != "" && c.Username != ""
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.ProviderURL != "" {
		u, err := url.Parse(c.ProviderURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("XTREAM_URL is not a valid http(s) URL: %s", c.ProviderURL))
		}
		if c.Username == "" {
			errors = append(errors, "XTREAM_USERNAME cannot be empty when XTREAM_URL is set")
		}
	}

	// Each row of the widest table binds 7 parameters.
	if c.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got: %d", c.ChunkSize))
	} else if c.ChunkSize*7 > constants.MaxSQLiteParams {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE too large for SQLite parameter limit, got: %d", c.ChunkSize))
	}

	if c.RequestRate < 0 {
		errors = append(errors, fmt.Sprintf("REQUEST_RATE cannot be negative, got: %g", c.RequestRate))
	}

	if c.SyncInterval < 0 {
		errors = append(errors, fmt.Sprintf("SYNC_INTERVAL cannot be negative, got: %s", c.SyncInterval))
	}

	if c.SyncOnStart && !c.HasCredentials() {
		errors = append(errors, "SYNC_ON_START requires XTREAM_URL and XTREAM_USERNAME")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}
