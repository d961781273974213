package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Currency.Code != "USD" || cfg.Currency.MinorUnits != 2 {
		t.Errorf("Expected USD with 2 minor units, got %s %d", cfg.Currency.Code, cfg.Currency.MinorUnits)
	}
	if cfg.Requisition.NumberOfPeriodsToAverage != 3 {
		t.Errorf("Expected 3 periods to average, got %d", cfg.Requisition.NumberOfPeriodsToAverage)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Expected memory storage, got %s", cfg.Storage.Driver)
	}
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yaml := `
currency:
  code: eur
  minorUnits: 2
requisition:
  numberOfPeriodsToAverage: 4
  skipAuthorization: true
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("REQUISITION_PERIODS_TO_AVERAGE", "5")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Requisition.SkipAuthorization {
		t.Errorf("Expected skipAuthorization from file")
	}
	if cfg.Requisition.NumberOfPeriodsToAverage != 5 {
		t.Errorf("Expected environment to override periods to average, got %d", cfg.Requisition.NumberOfPeriodsToAverage)
	}
	currency, err := cfg.CurrencyUnit()
	if err != nil {
		t.Fatalf("CurrencyUnit failed: %v", err)
	}
	if currency.Code != "EUR" {
		t.Errorf("Expected EUR, got %s", currency.Code)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Currency:    CurrencyConfig{Code: "USD", MinorUnits: 2},
			Requisition: RequisitionConfig{NumberOfPeriodsToAverage: 3},
			Storage:     StorageConfig{Driver: "memory"},
		}
	}

	testCases := []struct {
		name        string
		mutate      func(c *Config)
		expectError string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad currency", func(c *Config) { c.Currency.Code = "DOLLAR" }, "invalid currency"},
		{"single period", func(c *Config) { c.Requisition.NumberOfPeriodsToAverage = 1 }, "at least 2"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, "database.dsn"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage driver"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.expectError == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error containing %q, got %v", tc.expectError, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "nonsense"}, &buf)
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level fallback, got %s", logger.GetLevel())
	}

	LogError(logger, "requisition", "submit", map[string]string{"id": "r1"}, errors.New("missing fields"))
	out := buf.String()
	if !strings.Contains(out, `"operation":"submit"`) || !strings.Contains(out, `"msg":"missing fields"`) {
		t.Errorf("Expected JSON entry with operation and message, got %s", out)
	}
}
