package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petclinic/internal/config"
	"petclinic/internal/platform/logger"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["seed"])
}

func TestSeed_Memory(t *testing.T) {
	t.Setenv("STORAGE", config.StorageMemory)
	t.Setenv("LOG_LEVEL", "error")
	require.NoError(t, run(t, "seed", "--reset"))
}

func TestMigrateAndSeed_GormSQLite(t *testing.T) {
	t.Setenv("STORAGE", config.StorageGorm)
	t.Setenv("GORM_DIALECT", "sqlite")
	t.Setenv("DB_DSN", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	t.Setenv("LOG_LEVEL", "error")

	require.NoError(t, run(t, "migrate"))
	require.NoError(t, run(t, "seed", "--reset"))
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("STORAGE", "cassandra")
	assert.Error(t, run(t, "migrate"))
}

func TestBackendApp_ServesSeededData(t *testing.T) {
	ctx := context.Background()
	b, err := openBackend(ctx, config.Default(), logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, b.migrate(ctx))
	require.NoError(t, b.store.Seed(ctx))

	a, err := b.app(logger.NewNop())
	require.NoError(t, err)

	vets, err := a.services.Vets.FindAllVets(ctx)
	require.NoError(t, err)
	assert.Len(t, vets, 6)

	_, err = a.services.Owners.FindAllOwners(ctx)
	require.NoError(t, err)

	families, err := a.registry.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "petclinic_tx_scopes_total" {
			found = true
		}
	}
	assert.True(t, found)
}
