package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/goodcabs/tripsense/internal/config"
	"github.com/goodcabs/tripsense/internal/database"
	"github.com/goodcabs/tripsense/internal/satisfaction"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the satisfaction model from stored trips",
	Long: `Fits the satisfaction regression against all stored trips, persists
the model artifacts, and prints the evaluation report as JSON.`,
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
		store := satisfaction.NewFileModelStore(cfg.Data.ModelDir)
		trainer := satisfaction.NewTrainer(repo, store, satisfaction.TrainerConfig{
			MinRows:   cfg.Training.MinRows,
			TestRatio: cfg.Training.TestRatio,
			Folds:     cfg.Training.Folds,
			Seed:      cfg.Training.Seed,
		})

		report, err := trainer.Train(context.Background())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}
