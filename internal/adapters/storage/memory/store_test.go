package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petclinic/internal/adapters/storage/memory"
	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/clinic/clinictest"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

func newHarness(t *testing.T) clinictest.Harness {
	t.Helper()

	st := memory.NewStore()
	require.NoError(t, st.Seed(context.Background()))

	metrics, err := txscope.NewMetrics(nil)
	require.NoError(t, err)
	tx := txscope.Instrument(st, logger.NewNop(), metrics)

	return clinictest.Harness{
		Services: clinic.NewServices(st.Repositories(), tx, logger.NewNop()),
		Users:    users.NewService(st.Users(), tx, logger.NewNop()),
		Tx:       tx,
	}
}

func TestMemoryStore(t *testing.T) {
	clinictest.Run(t, newHarness)
}

func TestReadWrite_PanicRestoresSnapshot(t *testing.T) {
	st := memory.NewStore()
	require.NoError(t, st.Seed(context.Background()))
	svc := clinic.NewServices(st.Repositories(), st, logger.NewNop())

	assert.Panics(t, func() {
		_ = st.ReadWrite(context.Background(), func(ctx context.Context) error {
			_ = svc.Owners.DeleteOwner(ctx, clinic.Owner{ID: 1})
			panic("boom")
		})
	})

	l, err := svc.Owners.FindOwnerByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, l.Present())
}

func TestSeed_CountersContinueAfterSeedIDs(t *testing.T) {
	st := memory.NewStore()
	require.NoError(t, st.Seed(context.Background()))
	svc := clinic.NewServices(st.Repositories(), st, logger.NewNop())

	o := clinic.Owner{FirstName: "a", LastName: "b", Address: "c", City: "d", Telephone: "1"}
	require.NoError(t, svc.Owners.SaveOwner(context.Background(), &o))
	assert.Equal(t, 11, o.ID)

	v := clinic.Visit{PetID: 1, Description: "x", Date: clinic.NewVisit().Date}
	require.NoError(t, svc.Visits.SaveVisit(context.Background(), &v))
	assert.Equal(t, 5, v.ID)
}

func TestConcurrentSaves(t *testing.T) {
	st := memory.NewStore()
	svc := clinic.NewServices(st.Repositories(), st, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp := clinic.Specialty{Name: "s"}
			assert.NoError(t, svc.Specialties.SaveSpecialty(context.Background(), &sp))
		}()
	}
	wg.Wait()

	all, err := svc.Specialties.FindAllSpecialties(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 20)

	seen := map[int]bool{}
	for _, sp := range all {
		assert.False(t, seen[sp.ID])
		seen[sp.ID] = true
	}
}
