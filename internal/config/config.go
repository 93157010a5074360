package config

import (
	"os"
	"strings"
)

// RejoinPolicy controls what happens when a user who previously left a
// family (or a family that left a circle) tries to join again.
type RejoinPolicy string

const (
	// RejoinDeny rejects the join with a conflict; the left row stays as is.
	RejoinDeny RejoinPolicy = "deny"
	// RejoinReactivate flips the left row back to active with default permissions.
	RejoinReactivate RejoinPolicy = "reactivate"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	AuthSecret     string
	RejoinPolicy   RejoinPolicy

	// SES invitation emails (disabled when FromEmail is empty)
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./famledger.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		AuthSecret:     getEnv("AUTH_SECRET", ""),
		RejoinPolicy:   parseRejoinPolicy(getEnv("REJOIN_POLICY", "deny")),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		FromEmail:      getEnv("SES_FROM_EMAIL", ""),
		FromName:       getEnv("SES_FROM_NAME", "FamLedger"),
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// parseRejoinPolicy normalizes the REJOIN_POLICY value; unknown values fall back to deny
func parseRejoinPolicy(value string) RejoinPolicy {
	if strings.EqualFold(value, string(RejoinReactivate)) {
		return RejoinReactivate
	}
	return RejoinDeny
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
