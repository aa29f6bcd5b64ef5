// Package config provides configuration management for the accounting
// core. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	// Root is the compta data directory.
	Root string
	// DBPath overrides the database file location; empty means
	// {Root}/compta.db.
	DBPath string
	// PolicyPath optionally points at a YAML posting-policy override.
	PolicyPath string
	// CreatedBy is the audit user recorded on new purchases.
	CreatedBy string
	Debug     bool
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if
// available. You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Root:       getEnvOrDefault("COMPTA_ROOT", "."),
		DBPath:     os.Getenv("COMPTA_DB_PATH"),
		PolicyPath: os.Getenv("COMPTA_POLICY_PATH"),
		CreatedBy:  os.Getenv("COMPTA_CREATED_BY"),
		Debug:      os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// getEnvOrDefault returns the value of the environment variable or a
// default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
