package clinic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petclinic/internal/platform/logger"
)

// table es un fake mínimo de repositorio por id.
type table[T any] struct {
	rows   map[int]T
	nextID int
	getID  func(T) int
	setID  func(*T, int)

	findErr error
	saveErr error
}

func newTable[T any](getID func(T) int, setID func(*T, int)) *table[T] {
	return &table[T]{rows: map[int]T{}, nextID: 1, getID: getID, setID: setID}
}

func (t *table[T]) FindByID(_ context.Context, id int) (T, error) {
	var zero T
	if t.findErr != nil {
		return zero, t.findErr
	}
	v, ok := t.rows[id]
	if !ok {
		return zero, fmt.Errorf("row %d: %w", id, ErrNotFound)
	}
	return v, nil
}

func (t *table[T]) FindAll(_ context.Context) ([]T, error) {
	return t.where(func(T) bool { return true }), nil
}

func (t *table[T]) where(keep func(T) bool) []T {
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []T{}
	for _, id := range ids {
		if keep(t.rows[id]) {
			out = append(out, t.rows[id])
		}
	}
	return out
}

func (t *table[T]) Save(_ context.Context, v *T) error {
	if t.saveErr != nil {
		if t.getID(*v) == 0 {
			t.setID(v, t.nextID)
		}
		return t.saveErr
	}
	id := t.getID(*v)
	if id == 0 {
		id = t.nextID
		t.nextID++
		t.setID(v, id)
	} else if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.rows[id] = *v
	return nil
}

func (t *table[T]) Delete(_ context.Context, v T) error {
	id := t.getID(v)
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

type fakeOwners struct{ *table[Owner] }

func (f fakeOwners) FindByLastName(_ context.Context, lastName string) ([]Owner, error) {
	return f.where(func(o Owner) bool { return o.LastName == lastName }), nil
}

type fakePets struct{ *table[Pet] }

func (f fakePets) FindByOwnerID(_ context.Context, ownerID int) ([]Pet, error) {
	return f.where(func(p Pet) bool { return p.OwnerID == ownerID }), nil
}

func (f fakePets) FindPetTypes(_ context.Context) ([]PetType, error) {
	seen := map[int]PetType{}
	for _, p := range f.rows {
		seen[p.Type.ID] = p.Type
	}
	out := make([]PetType, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeVisits struct{ *table[Visit] }

func (f fakeVisits) FindByPetID(_ context.Context, petID int) ([]Visit, error) {
	return f.where(func(v Visit) bool { return v.PetID == petID }), nil
}

type fixture struct {
	owners      fakeOwners
	pets        fakePets
	petTypes    *table[PetType]
	visits      fakeVisits
	vets        *table[Vet]
	specialties *table[Specialty]
	svc         *Services
}

type passthroughTx struct{}

func (passthroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newFixture() *fixture {
	f := &fixture{
		owners:      fakeOwners{newTable(func(o Owner) int { return o.ID }, func(o *Owner, id int) { o.ID = id })},
		pets:        fakePets{newTable(func(p Pet) int { return p.ID }, func(p *Pet, id int) { p.ID = id })},
		petTypes:    newTable(func(t PetType) int { return t.ID }, func(t *PetType, id int) { t.ID = id }),
		visits:      fakeVisits{newTable(func(v Visit) int { return v.ID }, func(v *Visit, id int) { v.ID = id })},
		vets:        newTable(func(v Vet) int { return v.ID }, func(v *Vet, id int) { v.ID = id }),
		specialties: newTable(func(s Specialty) int { return s.ID }, func(s *Specialty, id int) { s.ID = id }),
	}
	f.svc = NewServices(Repositories{
		Owners:      f.owners,
		Pets:        f.pets,
		PetTypes:    f.petTypes,
		Visits:      f.visits,
		Vets:        f.vets,
		Specialties: f.specialties,
	}, passthroughTx{}, logger.NewNop())
	return f
}

func validOwner() Owner {
	return Owner{FirstName: "Jean", LastName: "Coleman", Address: "105 N. Lake St.", City: "Monona", Telephone: "6085552654"}
}

func TestFindByID_WrappedNotFoundIsAbsent(t *testing.T) {
	f := newFixture()

	l, err := f.svc.Owners.FindOwnerByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, l.Present())

	lp, err := f.svc.Pets.FindPetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, lp.Present())
}

func TestFindByID_StorageErrorPropagates(t *testing.T) {
	f := newFixture()
	boom := errors.New("disk on fire")
	f.owners.findErr = boom
	f.vets.findErr = boom

	_, err := f.svc.Owners.FindOwnerByID(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	_, err = f.svc.Vets.FindVetByID(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}

func TestSaveOwner_AssignsIDAndResetsOnFailure(t *testing.T) {
	f := newFixture()

	o := validOwner()
	require.NoError(t, f.svc.Owners.SaveOwner(context.Background(), &o))
	assert.NotZero(t, o.ID)

	boom := errors.New("write failed")
	f.owners.saveErr = boom
	o2 := validOwner()
	err := f.svc.Owners.SaveOwner(context.Background(), &o2)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, o2.ID)
}

func TestSaveOwner_InvalidNeverReachesStorage(t *testing.T) {
	f := newFixture()
	o := validOwner()
	o.Telephone = "not-a-phone"

	err := f.svc.Owners.SaveOwner(context.Background(), &o)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, f.owners.rows)
}

func TestOwnerAggregate_PetsAndVisitsDerivedFromRepos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o := validOwner()
	require.NoError(t, f.svc.Owners.SaveOwner(ctx, &o))
	cat := PetType{Name: "cat"}
	require.NoError(t, f.svc.PetTypes.SavePetType(ctx, &cat))

	maxPet := Pet{Name: "max", Type: cat, OwnerID: o.ID, BirthDate: time.Date(2012, 9, 4, 0, 0, 0, 0, time.UTC)}
	sam := Pet{Name: "Samantha", Type: cat, OwnerID: o.ID}
	require.NoError(t, f.svc.Pets.SavePet(ctx, &maxPet))
	require.NoError(t, f.svc.Pets.SavePet(ctx, &sam))

	later := Visit{PetID: maxPet.ID, Date: time.Date(2013, 1, 3, 0, 0, 0, 0, time.UTC), Description: "neutered"}
	earlier := Visit{PetID: maxPet.ID, Date: time.Date(2013, 1, 2, 0, 0, 0, 0, time.UTC), Description: "rabies shot"}
	require.NoError(t, f.svc.Visits.SaveVisit(ctx, &later))
	require.NoError(t, f.svc.Visits.SaveVisit(ctx, &earlier))

	l, err := f.svc.Owners.FindOwnerByID(ctx, o.ID)
	require.NoError(t, err)
	got, ok := l.Get()
	require.True(t, ok)
	require.Len(t, got.Pets, 2)
	assert.Equal(t, "max", got.Pets[0].Name)
	assert.Equal(t, "Samantha", got.Pets[1].Name)

	// orden de inserción, no por fecha
	visits := got.Pets[0].Visits
	require.Len(t, visits, 2)
	assert.Equal(t, "neutered", visits[0].Description)
	assert.Equal(t, "rabies shot", visits[1].Description)
}

func TestSavePet_UnknownOwnerOrType(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cat := PetType{Name: "cat"}
	require.NoError(t, f.svc.PetTypes.SavePetType(ctx, &cat))

	p := Pet{Name: "Leo", Type: cat, OwnerID: 99}
	err := f.svc.Pets.SavePet(ctx, &p)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Zero(t, p.ID)

	o := validOwner()
	require.NoError(t, f.svc.Owners.SaveOwner(ctx, &o))
	p = Pet{Name: "Leo", Type: PetType{ID: 77}, OwnerID: o.ID}
	err = f.svc.Pets.SavePet(ctx, &p)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "type", ve.Field)
}

func TestSaveVisit_RequiresDateAndPet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.Visits.SaveVisit(ctx, &Visit{PetID: 1, Description: "x"})
	assert.ErrorIs(t, err, ErrInvalid)

	v := NewVisit()
	v.PetID = 5
	v.Description = "checkup"
	err = f.svc.Visits.SaveVisit(ctx, &v)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Zero(t, v.ID)
}

func TestDelete_IdempotentAndRequiresIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.NoError(t, f.svc.Owners.DeleteOwner(ctx, Owner{ID: 123}))
	assert.ErrorIs(t, f.svc.Owners.DeleteOwner(ctx, Owner{}), ErrInvalid)
	assert.NoError(t, f.svc.Specialties.DeleteSpecialty(ctx, Specialty{ID: 9}))
}

func TestSaveVet_ResolvesAndNormalizesSpecialties(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	surgery := Specialty{Name: "surgery"}
	radiology := Specialty{Name: "radiology"}
	require.NoError(t, f.svc.Specialties.SaveSpecialty(ctx, &surgery))
	require.NoError(t, f.svc.Specialties.SaveSpecialty(ctx, &radiology))

	v := Vet{FirstName: "Linda", LastName: "Douglas", Specialties: []Specialty{
		{ID: surgery.ID}, {ID: radiology.ID}, {ID: surgery.ID},
	}}
	require.NoError(t, f.svc.Vets.SaveVet(ctx, &v))
	require.Equal(t, 2, v.NrOfSpecialties())
	assert.Equal(t, "radiology", v.Specialties[0].Name)
	assert.Equal(t, "surgery", v.Specialties[1].Name)

	bad := Vet{FirstName: "a", LastName: "b", Specialties: []Specialty{{ID: 404}}}
	assert.ErrorIs(t, f.svc.Vets.SaveVet(ctx, &bad), ErrInvalid)

	unsaved := Vet{FirstName: "a", LastName: "b", Specialties: []Specialty{{Name: "new"}}}
	assert.ErrorIs(t, f.svc.Vets.SaveVet(ctx, &unsaved), ErrInvalid)
}

func TestSaveVet_FailedWriteLeavesInputUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	surgery := Specialty{Name: "surgery"}
	require.NoError(t, f.svc.Specialties.SaveSpecialty(ctx, &surgery))

	f.vets.saveErr = errors.New("disk full")
	v := Vet{FirstName: "Linda", LastName: "Douglas", Specialties: []Specialty{{ID: surgery.ID}, {ID: surgery.ID}}}
	want := v

	require.Error(t, f.svc.Vets.SaveVet(ctx, &v))
	assert.Equal(t, want, v)
}

func TestSavePet_FailedWriteLeavesInputUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o := validOwner()
	require.NoError(t, f.svc.Owners.SaveOwner(ctx, &o))
	cat := PetType{Name: "cat"}
	require.NoError(t, f.svc.PetTypes.SavePetType(ctx, &cat))

	f.pets.saveErr = errors.New("disk full")
	p := Pet{Name: "Leo", OwnerID: o.ID, Type: PetType{ID: cat.ID}, BirthDate: time.Date(2010, 9, 7, 8, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))}
	want := p

	require.Error(t, f.svc.Pets.SavePet(ctx, &p))
	assert.Equal(t, want, p)
}

func TestSaveVisit_StoresCalendarDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.pets.rows[7] = Pet{ID: 7, Name: "Samantha", OwnerID: 6, Type: PetType{ID: 1, Name: "cat"}}

	v := Visit{PetID: 7, Description: "rabies shot", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))}
	require.NoError(t, f.svc.Visits.SaveVisit(ctx, &v))

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), v.Date)
	assert.Equal(t, v.Date, f.visits.rows[v.ID].Date)
}

func TestFindPetTypes_OnlyInUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o := validOwner()
	require.NoError(t, f.svc.Owners.SaveOwner(ctx, &o))
	dog := PetType{Name: "dog"}
	snake := PetType{Name: "snake"}
	require.NoError(t, f.svc.PetTypes.SavePetType(ctx, &dog))
	require.NoError(t, f.svc.PetTypes.SavePetType(ctx, &snake))
	p := Pet{Name: "Rosy", Type: dog, OwnerID: o.ID}
	require.NoError(t, f.svc.Pets.SavePet(ctx, &p))

	all, err := f.svc.PetTypes.FindAllPetTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	used, err := f.svc.PetTypes.FindPetTypes(ctx)
	require.NoError(t, err)
	require.Len(t, used, 1)
	assert.Equal(t, "dog", used[0].Name)
}
