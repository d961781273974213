package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

type CurrencyConfig struct {
	Code       string `mapstructure:"code"`
	MinorUnits int32  `mapstructure:"minorUnits"`
}

type RequisitionConfig struct {
	NumberOfPeriodsToAverage               int  `mapstructure:"numberOfPeriodsToAverage"`
	SkipAuthorization                      bool `mapstructure:"skipAuthorization"`
	DatePhysicalStockCountCompletedEnabled bool `mapstructure:"datePhysicalStockCountCompletedEnabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects where requisitions are kept: "memory" or "postgres"
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig enables shared locks when Addr is set
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	LockTTLSec int    `mapstructure:"lockTTLSec"`
}

type Config struct {
	Currency    CurrencyConfig    `mapstructure:"currency"`
	Requisition RequisitionConfig `mapstructure:"requisition"`
	Log         LogConfig         `mapstructure:"log"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
}

var envBindings = map[string]string{
	"currency.code":       "CURRENCY_CODE",
	"currency.minorUnits": "CURRENCY_MINOR_UNITS",

	"requisition.numberOfPeriodsToAverage":               "REQUISITION_PERIODS_TO_AVERAGE",
	"requisition.skipAuthorization":                      "REQUISITION_SKIP_AUTHORIZATION",
	"requisition.datePhysicalStockCountCompletedEnabled": "REQUISITION_DATE_PHYSICAL_STOCK_COUNT_ENABLED",

	"log.level":      "LOG_LEVEL",
	"log.format":     "LOG_FORMAT",
	"storage.driver": "STORAGE_DRIVER",
	"database.dsn":   "DATABASE_DSN",
	"redis.addr":     "REDIS_ADDRESS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("currency.code", entities.DefaultCurrency.Code)
	v.SetDefault("currency.minorUnits", entities.DefaultCurrency.MinorUnits)
	v.SetDefault("requisition.numberOfPeriodsToAverage", 3)
	v.SetDefault("requisition.skipAuthorization", false)
	v.SetDefault("requisition.datePhysicalStockCountCompletedEnabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("redis.lockTTLSec", 30)
}

// LoadConfig reads config.yaml from path, if present, and overrides it with
// environment variables. A .env file in the working directory is loaded first.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.AddConfigPath(path)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c Config) Validate() error {
	if _, err := c.CurrencyUnit(); err != nil {
		return fmt.Errorf("invalid currency: %w", err)
	}
	if c.Requisition.NumberOfPeriodsToAverage < 2 {
		return fmt.Errorf("numberOfPeriodsToAverage must be at least 2, got %d", c.Requisition.NumberOfPeriodsToAverage)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// CurrencyUnit returns the configured currency
func (c Config) CurrencyUnit() (entities.Currency, error) {
	return entities.NewCurrency(strings.ToUpper(c.Currency.Code), c.Currency.MinorUnits)
}
