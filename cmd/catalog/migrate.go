package main

import (
	"github.com/spf13/cobra"

	"github.com/tair/omnichannel-catalog/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openGormStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	if err := store.AutoMigrate(); err != nil {
		return err
	}
	logger.Logger.Info().Msg("Catalog schema migrated")
	return nil
}
