// Package config provides centralized default values for PulseTrack
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		// .env file is optional
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Client defaults
	DefaultEndpoint     string
	DefaultBatchSize    int
	DefaultBatchTimeout time.Duration
	SessionTimeout      time.Duration

	// Event store
	EventStoreDriver    string // "sqlite3", "libsql" or "clickhouse"
	EventStoreDSN       string
	EventStoreAuthToken string
	DefaultProperty  string
	ClickHouseAddr   string
	ClickHouseDB     string
	ClickHouseUser   string
	ClickHousePass   string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Observability
	SlowQueryThreshold time.Duration
	LogDirectory       string
	LogToFile          bool

	// Auth
	JWTSecret         string
	AdminPasswordHash string
	TokenLifetime     time.Duration

	// Conversion alert email
	ResendAPIKey   string
	AlertFromEmail string
	AlertToEmail   string

	// Live feed
	LiveSendBuffer     int
	LiveWriteTimeout   time.Duration
	LivePingInterval   time.Duration
	LiveMaxSubscribers int

	// CORS
	AllowedOrigins []string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Client defaults
	DefaultEndpoint = getEnvString("PULSETRACK_ENDPOINT", "/api/analytics/events")
	DefaultBatchSize = getEnvInt("PULSETRACK_BATCH_SIZE", 10)
	DefaultBatchTimeout = time.Duration(getEnvInt("PULSETRACK_BATCH_TIMEOUT_MS", 5000)) * time.Millisecond
	SessionTimeout = getEnvDuration("PULSETRACK_SESSION_TIMEOUT", 30*time.Minute)

	// Event store
	EventStoreDriver = getEnvString("EVENT_STORE_DRIVER", "sqlite3")
	EventStoreDSN = getEnvString("EVENT_STORE_DSN", "pulsetrack.db")
	EventStoreAuthToken = getEnvString("EVENT_STORE_AUTH_TOKEN", "")
	DefaultProperty = getEnvString("DEFAULT_PROPERTY", "")
	ClickHouseAddr = getEnvString("CLICKHOUSE_ADDR", "localhost:9000")
	ClickHouseDB = getEnvString("CLICKHOUSE_DB", "pulsetrack")
	ClickHouseUser = getEnvString("CLICKHOUSE_USER", "default")
	ClickHousePass = getEnvString("CLICKHOUSE_PASSWORD", "")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Observability
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 250*time.Millisecond)
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", false)

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	TokenLifetime = getEnvDuration("TOKEN_LIFETIME", 24*time.Hour)

	// Conversion alert email
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	AlertFromEmail = getEnvString("ALERT_FROM_EMAIL", "")
	AlertToEmail = getEnvString("ALERT_TO_EMAIL", "")

	// Live feed
	LiveSendBuffer = getEnvInt("LIVE_SEND_BUFFER", 64)
	LiveWriteTimeout = getEnvDuration("LIVE_WRITE_TIMEOUT", 10*time.Second)
	LivePingInterval = getEnvDuration("LIVE_PING_INTERVAL", 30*time.Second)
	LiveMaxSubscribers = getEnvInt("LIVE_MAX_SUBSCRIBERS", 100)

	// CORS
	AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS")
}

func getEnvStringSlice(key string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	log.Printf("Config override: %s=%v", key, out)
	return out
}
