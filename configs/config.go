package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminFullName string `env:"ADMIN_FULL_NAME" envDefault:"Administrator"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	InvoiceTTL time.Duration `env:"INVOICE_TTL" envDefault:"1h"`

	PaymentGatewayURL    string `env:"PAYMENT_GATEWAY_URL"`
	PaymentGatewayKey    string `env:"PAYMENT_GATEWAY_KEY"`
	PaymentGatewaySecret string `env:"PAYMENT_GATEWAY_SECRET"`
	Currency             string `env:"CURRENCY" envDefault:"USD"`

	RabbitMQURL string `env:"RABBITMQ_URL"`

	BrevoAPIKey     string `env:"BREVO_API_KEY"`
	EmailSender     string `env:"EMAIL_SENDER"`
	EmailSenderName string `env:"EMAIL_SENDER_NAME"`

	CloudinaryURL string `env:"CLOUDINARY_URL"`
	ChromeTimeout time.Duration `env:"CHROME_TIMEOUT" envDefault:"30s"`
}

// Load reads .env when present and parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// PaymentGatewayConfigured reports whether a real card gateway should be used.
func (c *Config) PaymentGatewayConfigured() bool {
	return c.PaymentGatewayURL != "" && c.PaymentGatewayKey != "" && c.PaymentGatewaySecret != ""
}
