package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/01moynul/gotogro-members/internal/sales"
)

// Config is the runtime configuration of the API server.
type Config struct {
	Env         string
	Port        string
	DBDriver    string
	DSN         string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigin  string
	LoginPerMin int
	Sales       sales.Config
}

func setDefaults(v *viper.Viper) {
	defaults := sales.DefaultConfig()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_DSN_PRIMARY", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "72h")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
	v.SetDefault("DEFAULT_INVENTORY_AMOUNT", defaults.DefaultInventoryAmount)
	v.SetDefault("DEFAULT_RECOMMENDED_LEVEL", defaults.DefaultRecommendedLevel)
	v.SetDefault("HIGH_QUANTITY_MIN", defaults.Thresholds.HighQuantityMin)
	v.SetDefault("HIGH_QUANTITY_MAX", defaults.Thresholds.HighQuantityMax)
	v.SetDefault("HIGH_SALES_AMOUNT", defaults.Thresholds.HighSalesAmount.String())
	v.SetDefault("LOW_INVENTORY_THRESHOLD", defaults.Thresholds.LowInventory)
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	highSales, err := decimal.NewFromString(v.GetString("HIGH_SALES_AMOUNT"))
	if err != nil {
		return nil, fmt.Errorf("HIGH_SALES_AMOUNT: %w", err)
	}

	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DSN:         v.GetString("DB_DSN_PRIMARY"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTTTL:      v.GetDuration("JWT_TTL"),
		CORSOrigin:  v.GetString("CORS_ORIGIN"),
		LoginPerMin: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		Sales: sales.Config{
			DefaultInventoryAmount:  v.GetInt("DEFAULT_INVENTORY_AMOUNT"),
			DefaultRecommendedLevel: v.GetInt("DEFAULT_RECOMMENDED_LEVEL"),
			Thresholds: sales.Thresholds{
				HighQuantityMin: v.GetInt("HIGH_QUANTITY_MIN"),
				HighQuantityMax: v.GetInt("HIGH_QUANTITY_MAX"),
				HighSalesAmount: highSales,
				LowInventory:    v.GetInt("LOW_INVENTORY_THRESHOLD"),
			},
		},
	}

	if cfg.DSN == "" {
		return nil, errors.New("DB_DSN_PRIMARY environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}
	if cfg.LoginPerMin <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive, got %d", cfg.LoginPerMin)
	}
	return cfg, nil
}
