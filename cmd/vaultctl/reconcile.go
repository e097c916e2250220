package main

import (
	"encoding/json"
	"fmt"

	"docvault/internal/repository/blobstore"
	postgresVault "docvault/internal/repository/postgres/vault"
	serviceVault "docvault/internal/service/vault"

	"github.com/spf13/cobra"
)

func newReconcileCmd(e *env) *cobra.Command {
	var fix bool
	var all bool

	cmd := &cobra.Command{
		Use:   "reconcile [ORG_ID]",
		Short: "Find file rows without blobs and blobs without rows",
		Long: `Compares the file catalog with the blob store for one organization (or
every organization with --all) and prints a JSON report. With --fix, dangling
rows and orphan blobs are deleted. Run it while no uploads are in flight: a
blob that is being recorded looks like an orphan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass exactly one of ORG_ID or --all")
			}

			blobs, err := blobstore.Open(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return err
			}
			reconciler := serviceVault.NewReconciler(postgresVault.NewFileRepository(e.repoConfig()), blobs, e.logger)

			orgIDs := args
			if all {
				tenants := serviceVault.NewTenantDirectory(postgresVault.NewOrganizationRepository(e.repoConfig()), e.logger)
				orgs, err := tenants.List(cmd.Context())
				if err != nil {
					return err
				}
				orgIDs = orgIDs[:0]
				for _, org := range orgs {
					orgIDs = append(orgIDs, org.ID)
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, orgID := range orgIDs {
				report, err := reconciler.Scan(cmd.Context(), orgID, fix)
				if err != nil {
					return fmt.Errorf("reconcile %s: %w", orgID, err)
				}
				if err := enc.Encode(report); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "delete dangling rows and orphan blobs")
	cmd.Flags().BoolVar(&all, "all", false, "reconcile every organization")
	return cmd
}
