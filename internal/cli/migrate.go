package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/beadhub/beadhub/internal/config"
	"github.com/beadhub/beadhub/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply forward-only schema migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitCode = 1
		return err
	}

	log := newLogger(cfg.LogLevel)

	ctx := context.Background()
	st, err := openStoreWithRetry(ctx, cfg, log)
	if err != nil {
		exitCode = 2
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		exitCode = 1
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}
