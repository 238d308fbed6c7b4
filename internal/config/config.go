package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite3"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv          string
	StoreDriver     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DBPath          string
	HTTPPort        int
	ProbePort       int
	ProbeEnabled    bool
	CatalogPath     string
	TopTermsLimit   int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		StoreDriver:     getEnv("STORE_DRIVER", DriverMongo),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "termosti"),
		MongoCollection: getEnv("MONGO_COLLECTION", "termosti"),
		DBPath:          getEnv("DB_PATH", "./data/termosti.db"),
		HTTPPort:        getEnvAsInt("HTTP_PORT", 3000),
		ProbePort:       getEnvAsInt("PROBE_PORT", 50051),
		ProbeEnabled:    getEnvAsBool("PROBE_ENABLED", false),
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		TopTermsLimit:   getEnvAsInt("TOP_TERMS_LIMIT", 80),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"*"}),
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvAsList(key string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
