package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration. Business policy (top-up bounds,
// booking retry budget) lives here and is injected into the services; business
// logic never reads ambient environment state.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret string
	JWTIssuer string

	// Default currency for lazily created wallets.
	DefaultCurrencyCode string

	// Manual top-up policy window.
	TopUpMinAmount decimal.Decimal
	TopUpMaxAmount decimal.Decimal
	// Pending top-ups are void after this duration.
	TopUpExpiry time.Duration
	// Bounded retry budget for unique reference generation.
	TopUpReferenceAttempts int

	// Bounded retry budget for BookAndPay serialization conflicts.
	BookingTxAttempts int

	// Rate limit for the public API, in ulule/limiter format (e.g. "60-M").
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "cartime-backend")
	viper.SetDefault("DEFAULT_CURRENCY_CODE", "MYR")
	viper.SetDefault("TOPUP_MIN_AMOUNT", "10")
	viper.SetDefault("TOPUP_MAX_AMOUNT", "5000")
	viper.SetDefault("TOPUP_EXPIRY", "48h")
	viper.SetDefault("TOPUP_REFERENCE_ATTEMPTS", 6)
	viper.SetDefault("BOOKING_TX_ATTEMPTS", 3)
	viper.SetDefault("RATE_LIMIT", "60-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.DefaultCurrencyCode = viper.GetString("DEFAULT_CURRENCY_CODE")

	minAmount, err := decimal.NewFromString(viper.GetString("TOPUP_MIN_AMOUNT"))
	if err != nil {
		minAmount = decimal.NewFromInt(10)
		log.Printf("Warning: Invalid TOPUP_MIN_AMOUNT. Defaulting to %s.\n", minAmount)
	}
	cfg.TopUpMinAmount = minAmount

	maxAmount, err := decimal.NewFromString(viper.GetString("TOPUP_MAX_AMOUNT"))
	if err != nil {
		maxAmount = decimal.NewFromInt(5000)
		log.Printf("Warning: Invalid TOPUP_MAX_AMOUNT. Defaulting to %s.\n", maxAmount)
	}
	cfg.TopUpMaxAmount = maxAmount

	topUpExpiry, err := time.ParseDuration(viper.GetString("TOPUP_EXPIRY"))
	if err != nil {
		topUpExpiry = 48 * time.Hour
		log.Printf("Warning: Invalid TOPUP_EXPIRY. Defaulting to %s.\n", topUpExpiry)
	}
	cfg.TopUpExpiry = topUpExpiry

	cfg.TopUpReferenceAttempts = viper.GetInt("TOPUP_REFERENCE_ATTEMPTS")
	if cfg.TopUpReferenceAttempts <= 0 {
		cfg.TopUpReferenceAttempts = 6
	}

	cfg.BookingTxAttempts = viper.GetInt("BOOKING_TX_ATTEMPTS")
	if cfg.BookingTxAttempts <= 0 {
		cfg.BookingTxAttempts = 3
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
