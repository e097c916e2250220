package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// TenantDirectory identifies organizations
type TenantDirectory interface {
	Get(ctx context.Context, orgID string) (*vault.Organization, error)

	// Require returns a not found error unless the organization exists
	Require(ctx context.Context, orgID string) error

	Create(ctx context.Context, name string) (*vault.Organization, error)
	List(ctx context.Context) ([]vault.Organization, error)
}
