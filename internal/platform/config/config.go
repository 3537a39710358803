package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers understood by DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      string
	EnableDBCheck bool

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string
	MigrationsPath string

	JWTSecret string
	JWTIssuer string

	// StoreTimeout bounds every store call made by the engine.
	StoreTimeout time.Duration
	// PermissionCacheTTL is the longest a cached permission set may outlive a role change.
	PermissionCacheTTL  time.Duration
	PermissionCacheSize int
	RedisURL            string

	NATSURL            string
	NATSSubjectPrefix  string
	NotificationBuffer int

	WorkflowDefinitionsPath string
	BatchConcurrency        int
	RateLimit               string
	CORSAllowedOrigins      []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DATABASE_DRIVER", DriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("SQLITE_PATH", "approvals.db")
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "approval-engine")
	viper.SetDefault("STORE_TIMEOUT", "5s")
	viper.SetDefault("PERMISSION_CACHE_TTL", "30s")
	viper.SetDefault("PERMISSION_CACHE_SIZE", 4096)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("NATS_SUBJECT_PREFIX", "approvals")
	viper.SetDefault("NOTIFICATION_BUFFER", 256)
	viper.SetDefault("WORKFLOW_DEFINITIONS_PATH", "")
	viper.SetDefault("BATCH_CONCURRENCY", 8)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:                    viper.GetString("PORT"),
		IsProduction:            viper.GetBool("IS_PRODUCTION"),
		LogLevel:                viper.GetString("LOG_LEVEL"),
		EnableDBCheck:           viper.GetBool("ENABLE_DB_CHECK"),
		DatabaseDriver:          viper.GetString("DATABASE_DRIVER"),
		DatabaseURL:             viper.GetString("PGSQL_URL"),
		SQLitePath:              viper.GetString("SQLITE_PATH"),
		MigrationsPath:          viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:               viper.GetString("JWT_SECRET"),
		JWTIssuer:               viper.GetString("JWT_ISSUER"),
		PermissionCacheSize:     viper.GetInt("PERMISSION_CACHE_SIZE"),
		RedisURL:                viper.GetString("REDIS_URL"),
		NATSURL:                 viper.GetString("NATS_URL"),
		NATSSubjectPrefix:       viper.GetString("NATS_SUBJECT_PREFIX"),
		NotificationBuffer:      viper.GetInt("NOTIFICATION_BUFFER"),
		WorkflowDefinitionsPath: viper.GetString("WORKFLOW_DEFINITIONS_PATH"),
		BatchConcurrency:        viper.GetInt("BATCH_CONCURRENCY"),
		RateLimit:               viper.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.StoreTimeout = durationOrDefault("STORE_TIMEOUT", 5*time.Second)
	cfg.PermissionCacheTTL = durationOrDefault("PERMISSION_CACHE_TTL", 30*time.Second)

	if cfg.BatchConcurrency < 1 {
		log.Printf("Warning: Invalid value for BATCH_CONCURRENCY (%d). Defaulting to 1.\n", cfg.BatchConcurrency)
		cfg.BatchConcurrency = 1
	}
	if cfg.NotificationBuffer < 0 {
		cfg.NotificationBuffer = 0
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
