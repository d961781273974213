package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vsinha/requisition/pkg/application/services"
	"github.com/vsinha/requisition/pkg/infrastructure/config"
	"github.com/vsinha/requisition/pkg/infrastructure/locking"
	"github.com/vsinha/requisition/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/requisition/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		configDir = flag.String("config", ".", "Directory holding config.yaml")
		scenario  = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		outputDir = flag.String("output", "", "Output directory for results (optional)")
		format    = flag.String("format", "text", "Output format: text, json, xlsx")
		verbose   = flag.Bool("verbose", false, "Enable verbose output")
		help      = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	cmdConfig := commands.Config{
		ScenarioDir: *scenario,
		OutputDir:   *outputDir,
		Format:      *format,
		Verbose:     *verbose,
		Help:        *help,
	}

	if err := run(*configDir, cmdConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires storage and locking from the config file and executes the command
func run(configDir string, cmdConfig commands.Config) error {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)

	currency, err := cfg.CurrencyUnit()
	if err != nil {
		config.LogError(logger, "main", "config", cfg.Currency, err)
		return err
	}

	deps := commands.Dependencies{
		Logger: logger,
		Service: services.ServiceConfig{
			Currency:                               currency,
			NumberOfPeriodsToAverage:               cfg.Requisition.NumberOfPeriodsToAverage,
			SkipAuthorization:                      cfg.Requisition.SkipAuthorization,
			DatePhysicalStockCountCompletedEnabled: cfg.Requisition.DatePhysicalStockCountCompletedEnabled,
		},
	}

	if cfg.Storage.Driver == "postgres" {
		db, err := postgres.NewConnection(cfg.Database.DSN)
		if err != nil {
			config.LogError(logger, "main", "connect database", nil, err)
			return err
		}
		if err := postgres.Migrate(db); err != nil {
			config.LogError(logger, "main", "migrate database", nil, err)
			return err
		}
		deps.Requisitions = postgres.NewRequisitionRepository(db)
		logger.Info("requisitions stored in postgres")
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			config.LogError(logger, "main", "connect redis", cfg.Redis.Addr, err)
			return err
		}
		deps.Locker = locking.NewRedisLocker(rdb, time.Duration(cfg.Redis.LockTTLSec)*time.Second)
		logger.WithField("addr", cfg.Redis.Addr).Info("using redis locks")
	}

	return commands.NewLifecycleCommand(cmdConfig, deps).Execute(context.Background())
}
