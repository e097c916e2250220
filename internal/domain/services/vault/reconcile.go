package vault

import "context"

// ReconcileReport lists blob/catalog divergences found for one organization
type ReconcileReport struct {
	OrganizationID string   `json:"organization_id"`
	DanglingRows   []string `json:"dangling_rows"` // file ids whose blob is missing
	OrphanBlobs    []string `json:"orphan_blobs"`  // keys with no file row
	Fixed          bool     `json:"fixed"`
}

// Reconciler detects (and optionally repairs) blob/catalog divergence left
// behind by consistency errors
type Reconciler interface {
	Scan(ctx context.Context, orgID string, fix bool) (*ReconcileReport, error)
}
