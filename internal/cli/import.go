package cli

import (
	"fmt"
	"log"

	"introxpection-quiz/internal/config"
	"introxpection-quiz/internal/engine"
	"introxpection-quiz/internal/infra/file"
	pgstore "introxpection-quiz/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewImportCmd loads definition files into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Validate quiz files in DIR and store them in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			defs, err := file.NewLoader(args[0]).All()
			if err != nil {
				return err
			}
			for _, def := range defs {
				if err := engine.Validate(def); err != nil {
					return err
				}
			}
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := pgstore.NewQuizLoader(pool)
			for _, def := range defs {
				if err := loader.SaveQuiz(ctx, def); err != nil {
					return err
				}
				log.Printf("imported quiz %s (%d questions)", def.ID, len(def.Questions))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d quiz(zes) imported\n", len(defs))
			return nil
		},
	}
}
