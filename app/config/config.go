package config

import (
	"os"
	"strings"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs      LogConfig
	DB        PostgresConfig
	Stripe    StripeConfig
	Generator GeneratorConfig
}

type LogConfig struct {
	Style string
	Level string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
}

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	PremiumPriceID string
	FrontendURL    string
}

type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Referer string
	Title   string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Logs: LogConfig{
			Style: os.Getenv("LOG_STYLE"),
			Level: os.Getenv("LOG_LEVEL"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		Stripe: StripeConfig{
			SecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PremiumPriceID: os.Getenv("STRIPE_PREMIUM_CREDIT_PRICE_ID"),
			FrontendURL:    strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),
		},
		Generator: GeneratorConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: os.Getenv("OPENROUTER_BASE_URL"),
			Model:   os.Getenv("OPENROUTER_MODEL"),
			Referer: os.Getenv("OPENROUTER_REFERER"),
			Title:   os.Getenv("OPENROUTER_TITLE"),
		},
	}

	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "deepseek/deepseek-chat-v3-0324:free"
	}
	if cfg.Stripe.FrontendURL == "" {
		cfg.Stripe.FrontendURL = "http://localhost:8080"
	}

	return cfg, nil
}
