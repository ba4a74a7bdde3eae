package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server holds HTTP server configuration
type Server struct {
	Port string
}

// Database holds database configuration
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Providers holds upstream price provider configuration. An empty RapidAPI
// key is valid: the affected adapters fail their requests and the engine
// degrades to synthetic prices and permissive validation.
type Providers struct {
	RapidAPIKey    string
	RapidAPIHost   string
	RequestTimeout time.Duration
}

// Config is the root application configuration
type Config struct {
	Server       Server
	Database     Database
	Providers    Providers
	PollInterval time.Duration
}

// Load builds the configuration from environment variables, reading a .env
// file first when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: Server{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "finwatch_user"),
			Password: getEnv("DB_PASSWORD", "finwatch_password"),
			Name:     getEnv("DB_NAME", "finwatch"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Providers: Providers{
			RapidAPIKey:    getEnv("RAPIDAPI_KEY", ""),
			RapidAPIHost:   getEnv("RAPIDAPI_HOST", "apidojo-yahoo-finance-v1.p.rapidapi.com"),
			RequestTimeout: getDuration("PROVIDER_TIMEOUT_SEC", 10*time.Second),
		},
		PollInterval: getDuration("PRICE_POLL_INTERVAL_SEC", 5*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a whole-second environment variable. Non-positive or
// unparseable values fall back to the default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
