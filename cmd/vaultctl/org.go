package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	postgresVault "docvault/internal/repository/postgres/vault"
	serviceVault "docvault/internal/service/vault"

	"github.com/spf13/cobra"
)

func newOrgCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations (tenants)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Register an organization and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants := serviceVault.NewTenantDirectory(postgresVault.NewOrganizationRepository(e.repoConfig()), e.logger)
			org, err := tenants.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), org.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants := serviceVault.NewTenantDirectory(postgresVault.NewOrganizationRepository(e.repoConfig()), e.logger)
			orgs, err := tenants.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED")
			for _, org := range orgs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", org.ID, org.Name, org.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	})

	return cmd
}
