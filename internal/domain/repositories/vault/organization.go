package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// OrganizationRepository defines data access operations for organizations
type OrganizationRepository interface {
	Create(ctx context.Context, org *vault.Organization) error
	GetByID(ctx context.Context, id string) (*vault.Organization, error)
	List(ctx context.Context) ([]vault.Organization, error)
}
