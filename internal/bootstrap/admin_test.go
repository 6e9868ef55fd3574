package bootstrap

import (
	"context"
	"testing"

	"chirp/internal/config"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin_NoEmailIsNoop(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	admin, err := EnsureAdmin(context.Background(), &config.Config{}, db)
	require.NoError(t, err)
	assert.Nil(t, admin)
}

func TestEnsureAdmin_CreatesThenPromotes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := &config.Config{
		BootstrapAdminEmail:    "Root@Example.com",
		BootstrapAdminUsername: "root_admin",
		BootstrapAdminPassword: "Sup3r-Secret-Pass",
	}

	admin, err := EnsureAdmin(context.Background(), cfg, db)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.Equal(t, "root_admin", admin.DisplayHandle())

	// Running again keeps the same account.
	again, err := EnsureAdmin(context.Background(), cfg, db)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	// An existing non-admin account is promoted.
	plain := testutil.CreateUser(t, db, "plain")
	cfg.BootstrapAdminEmail = plain.Email
	promoted, err := EnsureAdmin(context.Background(), cfg, db)
	require.NoError(t, err)
	assert.Equal(t, plain.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin)
}
