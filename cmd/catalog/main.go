package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tair/omnichannel-catalog/config"
	"github.com/tair/omnichannel-catalog/internal/catalog/repository"
	"github.com/tair/omnichannel-catalog/pkg/database"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog service - product type conversion, bundles and merged listings",
	Long: `Catalog service owning product categories (CONFIGURABLE, SIMPLE, BUNDLED, MERGED),
bundle composition and channel listing merges, and the stock derived from them.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(logger.Options{
		ServiceName: cfg.Service.Name,
		Environment: cfg.Service.Environment,
		Level:       cfg.Logging.Level,
		Pretty:      cfg.Logging.Pretty,
	})
	return nil
}

func databaseConfig(c config.DatabaseConfig) database.Config {
	return database.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// openGormStore connects to Postgres and returns the store plus a close func
func openGormStore(ctx context.Context) (*repository.GormCatalogStore, func() error, error) {
	sqlDB, err := database.NewPostgresConnection(ctx, databaseConfig(cfg.Database))
	if err != nil {
		return nil, nil, err
	}
	gdb, err := database.NewGormConnection(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return repository.NewGormCatalogStore(gdb, cfg.Database.TxAttempts), sqlDB.Close, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
