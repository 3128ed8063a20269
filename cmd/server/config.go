package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Host        string
	Port        string
	Debug       bool
	LogLevel    string
	CatalogFile string
	DatabaseURL string
	EnableDB    bool
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:        os.Getenv("HOST"),
		Port:        getEnv("PORT", "8080"),
		Debug:       strings.EqualFold(getEnv("DEBUG", "false"), "true"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CatalogFile: os.Getenv("CATALOG_FILE"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.EnableDB && cfg.CatalogFile != "" {
		return nil, fmt.Errorf("CATALOG_FILE and ENABLE_DB=true are mutually exclusive")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	return cfg, nil
}

func (c *Config) catalogSource() string {
	switch {
	case c.EnableDB:
		return "postgres"
	case c.CatalogFile != "":
		return "file"
	default:
		return "embedded"
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
