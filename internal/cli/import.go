package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goodcabs/tripsense/internal/config"
	"github.com/goodcabs/tripsense/internal/database"
)

var importCmd = &cobra.Command{
	Use:   "import <trips.csv>",
	Short: "Import a trips CSV extract into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		db, err := database.NewDB(cfg.Data.Dir)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := database.NewTripRepository(db)
		rows, err := database.ImportCSV(context.Background(), repo, args[0])
		if err != nil {
			return err
		}

		slog.Info("Import finished", "rows", rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
