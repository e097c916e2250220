// Command vaultctl runs operator tasks against a docvault deployment:
// schema bootstrap, organization management and blob/catalog reconciliation.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"docvault/internal/config"
	"docvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// env is what every subcommand needs; filled in by PersistentPreRunE
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	pool      *pgxpool.Pool
	tables    *postgres.TableNames
}

func (e *env) repoConfig() *postgres.RepositoryConfig {
	return &postgres.RepositoryConfig{Pool: e.pool, Tables: e.tables, Logger: e.logger}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Operator tooling for the document vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, closer, err := config.NewLogger(cfg, "vaultctl")
			if err != nil {
				return err
			}
			pool, err := postgres.CreateConnectionPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				closer.Close()
				return err
			}

			e.cfg = cfg
			e.logger = logger
			e.logCloser = closer
			e.pool = pool
			e.tables = postgres.NewTableNames(cfg.TablePrefix)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.pool != nil {
				e.pool.Close()
			}
			if e.logCloser != nil {
				e.logCloser.Close()
			}
		},
	}

	root.AddCommand(newSchemaCmd(e), newOrgCmd(e), newReconcileCmd(e))
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "vaultctl:", err)
		os.Exit(1)
	}
}
