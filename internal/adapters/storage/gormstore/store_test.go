package gormstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"petclinic/internal/adapters/storage/gormstore"
	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/clinic/clinictest"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/logger"
)

func openSQLite(t *testing.T, log logger.Logger) *gormstore.Store {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gormstore.Open(gormstore.DialectSQLite, dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	st := gormstore.NewStore(db)
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func harness(st *gormstore.Store) clinictest.Harness {
	return clinictest.Harness{
		Services: clinic.NewServices(st.Repositories(), st, logger.NewNop()),
		Users:    users.NewService(st.Users(), st, logger.NewNop()),
		Tx:       st,
	}
}

func TestSQLiteStore(t *testing.T) {
	clinictest.Run(t, func(t *testing.T) clinictest.Harness {
		st := openSQLite(t, logger.NewNop())
		require.NoError(t, st.Seed(context.Background()))
		return harness(st)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := gormstore.Open(gormstore.DialectPostgres, dsn, logger.NewNop())
	require.NoError(t, err)
	st := gormstore.NewStore(db)
	require.NoError(t, st.Migrate(context.Background()))

	clinictest.Run(t, func(t *testing.T) clinictest.Harness {
		ctx := context.Background()
		require.NoError(t, st.Reset(ctx))
		require.NoError(t, st.Seed(ctx))
		return harness(st)
	})
}

func TestMigrate_VetSpecialtyJoinTable(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gormstore.Open(gormstore.DialectSQLite, dsn, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	st := gormstore.NewStore(db)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx), "migrate twice")

	m := db.Migrator()
	require.True(t, m.HasTable("vet_specialties"))
	assert.True(t, m.HasColumn("vet_specialties", "vet_id"))
	assert.True(t, m.HasColumn("vet_specialties", "specialty_id"))
	assert.False(t, m.HasColumn("vet_specialties", "vet_record_id"))

	h := harness(st)
	surgery := clinic.Specialty{Name: "surgery"}
	require.NoError(t, h.Services.Specialties.SaveSpecialty(ctx, &surgery))
	v := clinic.Vet{FirstName: "Linda", LastName: "Douglas", Specialties: []clinic.Specialty{{ID: surgery.ID}}}
	require.NoError(t, h.Services.Vets.SaveVet(ctx, &v))

	l, err := h.Services.Vets.FindVetByID(ctx, v.ID)
	require.NoError(t, err)
	got, ok := l.Get()
	require.True(t, ok)
	require.Equal(t, 1, got.NrOfSpecialties())
	assert.Equal(t, "surgery", got.Specialties[0].Name)
}

func TestSeed_IdempotentAndCountersContinue(t *testing.T) {
	st := openSQLite(t, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, st.Seed(ctx))
	require.NoError(t, st.Seed(ctx))

	svc := clinic.NewServices(st.Repositories(), st, logger.NewNop())
	owners, err := svc.Owners.FindAllOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 10)

	o := clinic.Owner{FirstName: "a", LastName: "b", Address: "c", City: "d", Telephone: "1"}
	require.NoError(t, svc.Owners.SaveOwner(ctx, &o))
	assert.Equal(t, 11, o.ID)
}

func TestReset_EmptiesTables(t *testing.T) {
	st := openSQLite(t, logger.NewNop())
	ctx := context.Background()
	require.NoError(t, st.Seed(ctx))
	require.NoError(t, st.Reset(ctx))

	svc := clinic.NewServices(st.Repositories(), st, logger.NewNop())
	vets, err := svc.Vets.FindAllVets(ctx)
	require.NoError(t, err)
	assert.Empty(t, vets)

	pt := clinic.PetType{Name: "ferret"}
	require.NoError(t, svc.PetTypes.SavePetType(ctx, &pt))
	assert.Equal(t, 1, pt.ID)
}

func TestDuplicateRoleIsConstraint(t *testing.T) {
	st := openSQLite(t, logger.NewNop())
	ctx := context.Background()

	u := users.User{Username: "dup", Password: "x", Enabled: true, Roles: []users.Role{
		{Name: users.RoleAdmin}, {Name: users.RoleAdmin},
	}}
	err := st.Users().Save(ctx, &u)
	require.Error(t, err)
	assert.ErrorIs(t, err, clinic.ErrConstraint)

	_, err = st.Users().FindByUsername(ctx, "dup")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
}

func TestUnknownOwnerReferenceIsConstraint(t *testing.T) {
	st := openSQLite(t, logger.NewNop())
	ctx := context.Background()
	require.NoError(t, st.Seed(ctx))

	p := clinic.Pet{Name: "ghost", OwnerID: 999, Type: clinic.PetType{ID: 1}}
	err := st.Repositories().Pets.Save(ctx, &p)
	assert.ErrorIs(t, err, clinic.ErrConstraint)
	assert.Zero(t, p.ID)
}

func TestGormLogger_QueryErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	st := openSQLite(t, logger.FromZap(zap.New(core)))
	ctx := context.Background()

	_, err := st.Repositories().Owners.FindByID(ctx, 42)
	assert.ErrorIs(t, err, clinic.ErrNotFound)
	assert.Zero(t, logs.FilterMessage("gorm query failed").Len())

	u := users.User{Username: "dup", Password: "x", Roles: []users.Role{{Name: users.RoleAdmin}, {Name: users.RoleAdmin}}}
	require.Error(t, st.Users().Save(ctx, &u))
	failed := logs.FilterMessage("gorm query failed").All()
	require.NotEmpty(t, failed)
	assert.Equal(t, "gorm", failed[0].ContextMap()["component"])
	assert.Positive(t, logs.FilterMessage("gorm query").Len())
}
