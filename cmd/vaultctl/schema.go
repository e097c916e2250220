package main

import (
	"errors"
	"fmt"

	"docvault/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func newSchemaCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create or drop the tables of the configured prefix",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create missing tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.EnsureSchema(cmd.Context(), e.pool, e.tables); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (prefix %q)\n", e.cfg.TablePrefix)
			return nil
		},
	})

	var confirm bool
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table of the prefix (destroys metadata, not blobs)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Environment == "prod" {
				return errors.New("refusing to drop tables in prod")
			}
			if !confirm {
				return errors.New("pass --yes to drop tables")
			}
			if err := postgres.DropSchema(cmd.Context(), e.pool, e.tables); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tables dropped (prefix %q)\n", e.cfg.TablePrefix)
			return nil
		},
	}
	drop.Flags().BoolVar(&confirm, "yes", false, "confirm the drop")
	cmd.AddCommand(drop)

	return cmd
}
