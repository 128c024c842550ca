// Package config loads the service configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Environment string
	Port        string

	// Record store backend: the REST query API is used when both Supabase
	// values are set, otherwise a direct database connection (DB_* vars).
	SupabaseURL string
	SupabaseKey string

	// Secret the managed auth service signs session tokens with.
	JWTSecret string

	// Emails allowed to mutate records; everyone else is read-only.
	AdminEmails []string

	AllowedOrigins []string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "8080"),
		SupabaseURL:    strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseKey:    strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")),
		JWTSecret:      strings.TrimSpace(os.Getenv("SUPABASE_JWT_SECRET")),
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

// UseSupabase reports whether the REST query API backend is configured.
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("SUPABASE_JWT_SECRET must be set in production")
		}
	}
	if c.IsProduction() && len(c.AdminEmails) == 0 {
		return fmt.Errorf("ADMIN_EMAILS must list at least one admin in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
