package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string
	DevMode       bool

	Timezone     string
	WeekStart    string
	RecapCron    string
	APIListen    string // empty disables the HTTP API
	HolidaysFile string
	Store        string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	devMode, _ := strconv.ParseBool(os.Getenv("DEV_MODE"))
	cfg := &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIBaseURL:     getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:       getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		DevMode:       devMode,
		Timezone:      getEnvOrDefault("TIMEZONE", "Europe/Paris"),
		WeekStart:     getEnvOrDefault("WEEK_START", "monday"),
		RecapCron:     getEnvOrDefault("RECAP_CRON", "0 7 * * *"),
		APIListen:     os.Getenv("API_LISTEN"),
		HolidaysFile:  os.Getenv("HOLIDAYS_FILE"),
		Store:         getEnvOrDefault("STORE", StorePostgres),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have a closed set of choices.
func (c *Config) Validate() error {
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.WeekStart != "monday" && c.WeekStart != "sunday" {
		return fmt.Errorf("WEEK_START must be monday or sunday, got %q", c.WeekStart)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.Store == StorePostgres && c.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required when STORE=%s", StorePostgres)
	}
	return nil
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
