package vault

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docvault/internal/config"
	models "docvault/internal/domain/models/vault"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type tenantDirectory struct {
	orgRepo vaultRepo.OrganizationRepository
	logger  *slog.Logger
}

// NewTenantDirectory creates a new tenant directory
func NewTenantDirectory(orgRepo vaultRepo.OrganizationRepository, logger *slog.Logger) vaultSvc.TenantDirectory {
	return &tenantDirectory{orgRepo: orgRepo, logger: logger}
}

func (s *tenantDirectory) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	return s.orgRepo.GetByID(ctx, orgID)
}

func (s *tenantDirectory) Require(ctx context.Context, orgID string) error {
	_, err := s.orgRepo.GetByID(ctx, orgID)
	return err
}

// Create registers a new organization
func (s *tenantDirectory) Create(ctx context.Context, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("organization name is required"),
		validation.RuneLength(1, config.MaxOrganizationNameLength),
	)
	if err != nil {
		return nil, validationFailed(err)
	}

	org := &models.Organization{Name: name, CreatedAt: time.Now()}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("organization created", "id", org.ID, "name", org.Name)
	return org, nil
}

func (s *tenantDirectory) List(ctx context.Context) ([]models.Organization, error) {
	return s.orgRepo.List(ctx)
}
