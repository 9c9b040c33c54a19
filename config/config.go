package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Loaded once in main and
// passed to the components that need it.
type Config struct {
	// Storage
	DatabaseURL string
	RedisURL    string // optional; dashboard cache is disabled when empty

	// HTTP
	HTTPAddr  string
	JWTSecret string

	// Wallet policy, amounts in currency minor units
	WelcomeBonus  int64
	MinDeposit    int64
	MinWithdrawal int64
	MaxWithdrawal int64

	// Rates in basis points so integer arithmetic floors exactly
	DepositBonusBps  int64
	ReferralBonusBps int64
	WithdrawalFeeBps int64

	// Environment: "development", "production" or "test"
	Environment string
}

// Load reads configuration from the environment, applying defaults.
// A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		WelcomeBonus:  5000,
		MinDeposit:    10000,
		MinWithdrawal: 50000,
		MaxWithdrawal: 10000000,

		DepositBonusBps:  500, // 5%
		ReferralBonusBps: 500, // 5%
		WithdrawalFeeBps: 200, // 2%

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	overrideInt64(&cfg.WelcomeBonus, "WELCOME_BONUS")
	overrideInt64(&cfg.MinDeposit, "MIN_DEPOSIT")
	overrideInt64(&cfg.MinWithdrawal, "MIN_WITHDRAWAL")
	overrideInt64(&cfg.MaxWithdrawal, "MAX_WITHDRAWAL")
	overrideInt64(&cfg.DepositBonusBps, "DEPOSIT_BONUS_BPS")
	overrideInt64(&cfg.ReferralBonusBps, "REFERRAL_BONUS_BPS")
	overrideInt64(&cfg.WithdrawalFeeBps, "WITHDRAWAL_FEE_BPS")

	if cfg.Environment != "test" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}

	if cfg.MinWithdrawal > cfg.MaxWithdrawal {
		return nil, fmt.Errorf("MIN_WITHDRAWAL %d exceeds MAX_WITHDRAWAL %d", cfg.MinWithdrawal, cfg.MaxWithdrawal)
	}

	return cfg, nil
}

func overrideInt64(target *int64, key string) {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			*target = parsed
		}
	}
}
