package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage, token store and cache backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"

	CacheLRU   = "lru"
	CacheRedis = "redis"
)

// Config holds application configuration.
type Config struct {
	Port            string
	IsProduction    bool
	LogLevel        string
	ShutdownTimeout time.Duration

	StorageDriver  string
	DatabaseURL    string
	MigrationsPath string

	TokenStore            string
	TokenTTL              time.Duration
	TokenEvictionInterval time.Duration
	TokenEvictionGrace    time.Duration

	CacheDriver string
	CacheSize   int
	CacheTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit          string
	CORSAllowedOrigins []string

	// JWTSecret enables bearer authentication on /api/v1 when set.
	JWTSecret string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("TOKEN_STORE", TokenStoreMemory)
	v.SetDefault("TOKEN_TTL", "5m")
	v.SetDefault("TOKEN_EVICTION_INTERVAL", "1m")
	v.SetDefault("TOKEN_EVICTION_GRACE", "5m")

	v.SetDefault("CACHE_DRIVER", CacheLRU)
	v.SetDefault("CACHE_SIZE", 1024)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("JWT_SECRET", "")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func oneOf(v *viper.Viper, key string, allowed ...string) (string, error) {
	value := strings.ToLower(v.GetString(key))
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid value for %s (%q), expected one of %v", key, value, allowed)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		DatabaseURL:   v.GetString("PGSQL_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheSize:     v.GetInt("CACHE_SIZE"),
		RateLimit:     v.GetString("RATE_LIMIT"),
		JWTSecret:     v.GetString("JWT_SECRET"),
	}
	cfg.MigrationsPath = v.GetString("MIGRATIONS_PATH")

	var err error
	if cfg.StorageDriver, err = oneOf(v, "STORAGE_DRIVER", StoragePostgres, StorageMemory); err != nil {
		return nil, err
	}
	if cfg.TokenStore, err = oneOf(v, "TOKEN_STORE", TokenStoreMemory, TokenStoreRedis); err != nil {
		return nil, err
	}
	if cfg.CacheDriver, err = oneOf(v, "CACHE_DRIVER", CacheLRU, CacheRedis); err != nil {
		return nil, err
	}

	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT":        &cfg.ShutdownTimeout,
		"TOKEN_TTL":               &cfg.TokenTTL,
		"TOKEN_EVICTION_INTERVAL": &cfg.TokenEvictionInterval,
		"TOKEN_EVICTION_GRACE":    &cfg.TokenEvictionGrace,
		"CACHE_TTL":               &cfg.CacheTTL,
	} {
		if *dst, err = duration(v, key); err != nil {
			return nil, err
		}
	}

	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("CACHE_SIZE must be positive, got %d", cfg.CacheSize)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. API authentication is disabled.")
	}

	return cfg, nil
}
