// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret   string
	AdminAPIKey string

	ProviderEndpoint  string
	ProviderSecretKey string
	ProviderTimeout   time.Duration
	WebhookSecret     string
	Currency          string

	RedisAddr string
}

func Load() *Config {
	return &Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getenv("DB_NAME", "storefront"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),

		ProviderEndpoint:  getenv("PAYMENT_API_URL", "https://api.stripe.com"),
		ProviderSecretKey: os.Getenv("PAYMENT_SECRET_KEY"),
		ProviderTimeout:   10 * time.Second,
		WebhookSecret:     os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		Currency:          getenv("PAYMENT_CURRENCY", "usd"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
	}
}

// DSN builds the Postgres connection string when DATABASE_URL is not set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
