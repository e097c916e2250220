package vault

import (
	"context"
	"testing"

	"docvault/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tenants.Create(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	org, err := env.tenants.Create(ctx, " Acme ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	_, err = env.tenants.Create(ctx, "Acme")
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, env.tenants.Require(ctx, org.ID))
	assert.ErrorIs(t, env.tenants.Require(ctx, "missing"), domain.ErrNotFound)

	orgs, err := env.tenants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}
