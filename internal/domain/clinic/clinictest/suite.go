// Package clinictest es la batería de comportamiento que todo adapter de
// storage tiene que pasar. Cada caso pide un store nuevo con el dataset
// canónico ya cargado.
package clinictest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/txscope"
)

type Harness struct {
	Services *clinic.Services
	Users    *users.Service
	Tx       txscope.Manager
}

// Factory devuelve un store recién sembrado. Los recursos se liberan con t.Cleanup.
type Factory func(t *testing.T) Harness

func Run(t *testing.T, factory Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, h Harness)
	}{
		{"FindOwnerByIDAssemblesAggregate", findOwnerByIDAssemblesAggregate},
		{"FindOwnerByLastName", findOwnerByLastName},
		{"InsertOwner", insertOwner},
		{"UpdateOwner", updateOwner},
		{"SaveUnknownIDIsNotFound", saveUnknownIDIsNotFound},
		{"AbsentLookups", absentLookups},
		{"InsertPetIntoOwner", insertPetIntoOwner},
		{"UpdatePet", updatePet},
		{"InvalidPetRejected", invalidPetRejected},
		{"PetTypes", petTypes},
		{"Vets", vets},
		{"SaveVetCollapsesDuplicates", saveVetCollapsesDuplicates},
		{"Specialties", specialties},
		{"AddVisit", addVisit},
		{"VisitDatedTodayKeepsCalendarDay", visitDatedTodayKeepsCalendarDay},
		{"DeleteOwnerCascades", deleteOwnerCascades},
		{"DeletePetTypeCascades", deletePetTypeCascades},
		{"DeleteSpecialtyUnlinksVets", deleteSpecialtyUnlinksVets},
		{"DeleteVetAndVisit", deleteVetAndVisit},
		{"DeleteIsIdempotent", deleteIsIdempotent},
		{"OuterScopeRollsBack", outerScopeRollsBack},
		{"OuterScopeCommits", outerScopeCommits},
		{"WriteInReadOnlyScopeFails", writeInReadOnlyScopeFails},
		{"Users", usersRoundTrip},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.fn(t, factory(t))
		})
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sameDay exige la fecha exacta: todo backend devuelve medianoche UTC.
func sameDay(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.Equal(t, want.Format("2006-01-02"), got.Format("2006-01-02"))
	assert.Equal(t, want, got)
}

func mustOwner(t *testing.T, h Harness, id int) clinic.Owner {
	t.Helper()
	l, err := h.Services.Owners.FindOwnerByID(context.Background(), id)
	require.NoError(t, err)
	o, ok := l.Get()
	require.True(t, ok, "owner %d", id)
	return o
}

func mustPet(t *testing.T, h Harness, id int) clinic.Pet {
	t.Helper()
	l, err := h.Services.Pets.FindPetByID(context.Background(), id)
	require.NoError(t, err)
	p, ok := l.Get()
	require.True(t, ok, "pet %d", id)
	return p
}

func mustVet(t *testing.T, h Harness, id int) clinic.Vet {
	t.Helper()
	l, err := h.Services.Vets.FindVetByID(context.Background(), id)
	require.NoError(t, err)
	v, ok := l.Get()
	require.True(t, ok, "vet %d", id)
	return v
}

func petNames(ps []clinic.Pet) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func specialtyNames(ss []clinic.Specialty) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Name)
	}
	return out
}

func findOwnerByIDAssemblesAggregate(t *testing.T, h Harness) {
	o := mustOwner(t, h, 1)
	assert.Equal(t, "George", o.FirstName)
	assert.Equal(t, "Franklin", o.LastName)
	assert.Equal(t, "110 W. Liberty St.", o.Address)
	assert.Equal(t, "6085551023", o.Telephone)
	require.Len(t, o.Pets, 1)
	assert.Equal(t, "Leo", o.Pets[0].Name)
	assert.Equal(t, "cat", o.Pets[0].Type.Name)
	sameDay(t, day(2010, 9, 7), o.Pets[0].BirthDate)

	jean := mustOwner(t, h, 6)
	assert.Equal(t, []string{"Max", "Samantha"}, petNames(jean.Pets))

	samantha, ok := jean.Pet("samantha", false)
	require.True(t, ok)
	require.Len(t, samantha.Visits, 2)
	assert.Equal(t, "rabies shot", samantha.Visits[0].Description)
	assert.Equal(t, "spayed", samantha.Visits[1].Description)
	for _, v := range samantha.Visits {
		assert.Equal(t, samantha.ID, v.PetID)
	}
}

func findOwnerByLastName(t *testing.T, h Harness) {
	ctx := context.Background()

	davis, err := h.Services.Owners.FindOwnerByLastName(ctx, "Davis")
	require.NoError(t, err)
	require.Len(t, davis, 2)
	assert.Equal(t, 2, davis[0].ID)
	assert.Equal(t, 4, davis[1].ID)
	assert.Equal(t, []string{"Basil"}, petNames(davis[0].Pets))

	none, err := h.Services.Owners.FindOwnerByLastName(ctx, "Daviss")
	require.NoError(t, err)
	assert.Empty(t, none)

	lower, err := h.Services.Owners.FindOwnerByLastName(ctx, "davis")
	require.NoError(t, err)
	assert.Empty(t, lower)
}

func insertOwner(t *testing.T, h Harness) {
	ctx := context.Background()

	before, err := h.Services.Owners.FindAllOwners(ctx)
	require.NoError(t, err)
	require.Len(t, before, 10)

	o := clinic.Owner{FirstName: "Sam", LastName: "Schultz", Address: "4, Evans Street", City: "Wollongong", Telephone: "4444444444"}
	require.NoError(t, h.Services.Owners.SaveOwner(ctx, &o))
	assert.NotZero(t, o.ID)

	after, err := h.Services.Owners.FindAllOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 11)

	got := mustOwner(t, h, o.ID)
	assert.Equal(t, "Schultz", got.LastName)
	assert.Empty(t, got.Pets)

	bad := clinic.Owner{FirstName: "x", LastName: "y", Address: "z", City: "w", Telephone: "12345678901"}
	err = h.Services.Owners.SaveOwner(ctx, &bad)
	assert.ErrorIs(t, err, clinic.ErrInvalid)
	assert.Zero(t, bad.ID)
}

func updateOwner(t *testing.T, h Harness) {
	o := mustOwner(t, h, 1)
	o.LastName = o.LastName + "X"
	require.NoError(t, h.Services.Owners.SaveOwner(context.Background(), &o))
	assert.Equal(t, 1, o.ID)

	got := mustOwner(t, h, 1)
	assert.Equal(t, "FranklinX", got.LastName)
	assert.Len(t, got.Pets, 1, "saving an owner leaves its pets untouched")
}

func saveUnknownIDIsNotFound(t *testing.T, h Harness) {
	o := clinic.Owner{ID: 9999, FirstName: "a", LastName: "b", Address: "c", City: "d", Telephone: "1"}
	err := h.Services.Owners.SaveOwner(context.Background(), &o)
	assert.True(t, clinic.IsNotFound(err), "got %v", err)
	assert.Equal(t, 9999, o.ID)
}

func absentLookups(t *testing.T, h Harness) {
	ctx := context.Background()
	const missing = 9999

	o, err := h.Services.Owners.FindOwnerByID(ctx, missing)
	require.NoError(t, err)
	assert.False(t, o.Present())

	p, err := h.Services.Pets.FindPetByID(ctx, missing)
	require.NoError(t, err)
	assert.False(t, p.Present())

	pt, err := h.Services.PetTypes.FindPetTypeByID(ctx, missing)
	require.NoError(t, err)
	assert.False(t, pt.Present())

	v, err := h.Services.Visits.FindVisitByID(ctx, missing)
	require.NoError(t, err)
	assert.False(t, v.Present())

	vet, err := h.Services.Vets.FindVetByID(ctx, missing)
	require.NoError(t, err)
	assert.False(t, vet.Present())

	sp, err := h.Services.Specialties.FindSpecialtyByID(ctx, missing)
	require.NoError(t, err)
	assert.False(t, sp.Present())

	visits, err := h.Services.Visits.FindVisitsByPetID(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func insertPetIntoOwner(t *testing.T, h Harness) {
	ctx := context.Background()
	o := mustOwner(t, h, 6)

	l, err := h.Services.PetTypes.FindPetTypeByID(ctx, 2)
	require.NoError(t, err)
	dog, ok := l.Get()
	require.True(t, ok)

	p := clinic.Pet{Name: "bowser", BirthDate: day(2020, 5, 1), Type: dog}
	o.AddPet(&p)
	require.NoError(t, h.Services.Pets.SavePet(ctx, &p))
	assert.NotZero(t, p.ID)

	got := mustOwner(t, h, 6)
	assert.Equal(t, []string{"bowser", "Max", "Samantha"}, petNames(got.Pets))

	bowser, ok := got.Pet("Bowser", true)
	require.True(t, ok)
	assert.Equal(t, "dog", bowser.Type.Name)
	assert.Equal(t, 6, bowser.OwnerID)
	sameDay(t, day(2020, 5, 1), bowser.BirthDate)
}

func updatePet(t *testing.T, h Harness) {
	p := mustPet(t, h, 7)
	p.Name = p.Name + "X"
	require.NoError(t, h.Services.Pets.SavePet(context.Background(), &p))

	got := mustPet(t, h, 7)
	assert.Equal(t, "SamanthaX", got.Name)
	assert.Len(t, got.Visits, 2, "saving a pet leaves its visits untouched")
}

func invalidPetRejected(t *testing.T, h Harness) {
	ctx := context.Background()

	p := clinic.Pet{Name: "ghost", Type: clinic.PetType{ID: 1}, OwnerID: 9999}
	assert.ErrorIs(t, h.Services.Pets.SavePet(ctx, &p), clinic.ErrInvalid)
	assert.Zero(t, p.ID)

	p = clinic.Pet{Name: "ghost", Type: clinic.PetType{ID: 9999}, OwnerID: 1}
	assert.ErrorIs(t, h.Services.Pets.SavePet(ctx, &p), clinic.ErrInvalid)

	all, err := h.Services.Pets.FindAllPets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 13)
}

func petTypes(t *testing.T, h Harness) {
	ctx := context.Background()

	fish := clinic.PetType{Name: "fish"}
	require.NoError(t, h.Services.PetTypes.SavePetType(ctx, &fish))
	assert.NotZero(t, fish.ID)

	all, err := h.Services.PetTypes.FindAllPetTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	used, err := h.Services.PetTypes.FindPetTypes(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(used))
	for _, pt := range used {
		names = append(names, pt.Name)
	}
	assert.Equal(t, []string{"bird", "cat", "dog", "hamster", "lizard", "snake"}, names)

	fish.Name = "fishes"
	require.NoError(t, h.Services.PetTypes.SavePetType(ctx, &fish))
	l, err := h.Services.PetTypes.FindPetTypeByID(ctx, fish.ID)
	require.NoError(t, err)
	assert.Equal(t, "fishes", l.OrZero().Name)

	assert.ErrorIs(t, h.Services.PetTypes.SavePetType(ctx, &clinic.PetType{Name: " "}), clinic.ErrInvalid)
}

func vets(t *testing.T, h Harness) {
	all, err := h.Services.Vets.FindAllVets(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, 0, all[0].NrOfSpecialties())

	linda := mustVet(t, h, 3)
	assert.Equal(t, "Douglas", linda.LastName)
	assert.Equal(t, []string{"dentistry", "surgery"}, specialtyNames(linda.Specialties))
}

func saveVetCollapsesDuplicates(t *testing.T, h Harness) {
	ctx := context.Background()

	v := clinic.Vet{FirstName: "John", LastName: "Dolittle", Specialties: []clinic.Specialty{
		{ID: 2}, {ID: 1}, {ID: 2},
	}}
	require.NoError(t, h.Services.Vets.SaveVet(ctx, &v))
	require.NotZero(t, v.ID)
	assert.Equal(t, []string{"radiology", "surgery"}, specialtyNames(v.Specialties))

	got := mustVet(t, h, v.ID)
	assert.Equal(t, []string{"radiology", "surgery"}, specialtyNames(got.Specialties))

	got.Specialties = []clinic.Specialty{{ID: 3}}
	require.NoError(t, h.Services.Vets.SaveVet(ctx, &got))
	assert.Equal(t, []string{"dentistry"}, specialtyNames(mustVet(t, h, v.ID).Specialties))

	bad := clinic.Vet{FirstName: "a", LastName: "b", Specialties: []clinic.Specialty{{ID: 9999}}}
	assert.ErrorIs(t, h.Services.Vets.SaveVet(ctx, &bad), clinic.ErrInvalid)
	assert.Zero(t, bad.ID)
}

func specialties(t *testing.T, h Harness) {
	ctx := context.Background()

	sp := clinic.Specialty{Name: "oncology"}
	require.NoError(t, h.Services.Specialties.SaveSpecialty(ctx, &sp))
	assert.NotZero(t, sp.ID)

	all, err := h.Services.Specialties.FindAllSpecialties(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	l, err := h.Services.Specialties.FindSpecialtyByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "surgery", l.OrZero().Name)
}

func addVisit(t *testing.T, h Harness) {
	ctx := context.Background()
	p := mustPet(t, h, 7)

	v := clinic.NewVisit()
	v.Date = day(2012, 1, 1)
	v.Description = "visit"
	p.AddVisit(&v)
	require.NoError(t, h.Services.Visits.SaveVisit(ctx, &v))
	assert.NotZero(t, v.ID)

	got := mustPet(t, h, 7)
	require.Len(t, got.Visits, 3)
	assert.Equal(t, "visit", got.Visits[2].Description, "visits stay in insertion order")
	sameDay(t, day(2012, 1, 1), got.Visits[2].Date)

	byPet, err := h.Services.Visits.FindVisitsByPetID(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, byPet, 3)

	all, err := h.Services.Visits.FindAllVisits(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	noDate := clinic.Visit{PetID: 7, Description: "x"}
	assert.ErrorIs(t, h.Services.Visits.SaveVisit(ctx, &noDate), clinic.ErrInvalid)

	orphan := clinic.NewVisit()
	orphan.PetID = 9999
	orphan.Description = "x"
	assert.ErrorIs(t, h.Services.Visits.SaveVisit(ctx, &orphan), clinic.ErrInvalid)
}

func visitDatedTodayKeepsCalendarDay(t *testing.T, h Harness) {
	prev := time.Local
	time.Local = time.FixedZone("UTC+9", 9*60*60)
	t.Cleanup(func() { time.Local = prev })

	ctx := context.Background()
	v := clinic.NewVisit()
	v.PetID = 7
	v.Description = "checkup"
	today := time.Now().Format("2006-01-02")
	require.Equal(t, today, v.Date.Format("2006-01-02"))
	require.NoError(t, h.Services.Visits.SaveVisit(ctx, &v))

	l, err := h.Services.Visits.FindVisitByID(ctx, v.ID)
	require.NoError(t, err)
	got, ok := l.Get()
	require.True(t, ok)
	sameDay(t, v.Date, got.Date)

	p := mustPet(t, h, 7)
	last, ok := p.Visit(v.ID)
	require.True(t, ok)
	sameDay(t, v.Date, last.Date)
}

func deleteOwnerCascades(t *testing.T, h Harness) {
	ctx := context.Background()
	o := mustOwner(t, h, 6)
	require.NoError(t, h.Services.Owners.DeleteOwner(ctx, o))

	l, err := h.Services.Owners.FindOwnerByID(ctx, 6)
	require.NoError(t, err)
	assert.False(t, l.Present())

	for _, id := range []int{7, 8} {
		lp, err := h.Services.Pets.FindPetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, lp.Present(), "pet %d", id)
	}
	for _, id := range []int{1, 2, 3, 4} {
		lv, err := h.Services.Visits.FindVisitByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, lv.Present(), "visit %d", id)
	}
}

func deletePetTypeCascades(t *testing.T, h Harness) {
	ctx := context.Background()
	require.NoError(t, h.Services.PetTypes.DeletePetType(ctx, clinic.PetType{ID: 1}))

	all, err := h.Services.Pets.FindAllPets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 9)
	for _, p := range all {
		assert.NotEqual(t, 1, p.Type.ID)
	}

	visits, err := h.Services.Visits.FindAllVisits(ctx)
	require.NoError(t, err)
	assert.Empty(t, visits)

	assert.Empty(t, mustOwner(t, h, 1).Pets)
}

func deleteSpecialtyUnlinksVets(t *testing.T, h Harness) {
	ctx := context.Background()
	require.NoError(t, h.Services.Specialties.DeleteSpecialty(ctx, clinic.Specialty{ID: 2}))

	assert.Equal(t, []string{"dentistry"}, specialtyNames(mustVet(t, h, 3).Specialties))
	assert.Empty(t, mustVet(t, h, 4).Specialties)
}

func deleteVetAndVisit(t *testing.T, h Harness) {
	ctx := context.Background()

	require.NoError(t, h.Services.Vets.DeleteVet(ctx, clinic.Vet{ID: 3}))
	l, err := h.Services.Vets.FindVetByID(ctx, 3)
	require.NoError(t, err)
	assert.False(t, l.Present())

	sps, err := h.Services.Specialties.FindAllSpecialties(ctx)
	require.NoError(t, err)
	assert.Len(t, sps, 3, "specialties survive their vets")

	require.NoError(t, h.Services.Visits.DeleteVisit(ctx, clinic.Visit{ID: 1}))
	assert.Len(t, mustPet(t, h, 7).Visits, 1)
}

func deleteIsIdempotent(t *testing.T, h Harness) {
	ctx := context.Background()

	require.NoError(t, h.Services.Pets.DeletePet(ctx, clinic.Pet{ID: 1}))
	require.NoError(t, h.Services.Pets.DeletePet(ctx, clinic.Pet{ID: 1}))
	assert.NoError(t, h.Services.Owners.DeleteOwner(ctx, clinic.Owner{ID: 9999}))
	assert.NoError(t, h.Services.Vets.DeleteVet(ctx, clinic.Vet{ID: 9999}))

	assert.ErrorIs(t, h.Services.Pets.DeletePet(ctx, clinic.Pet{}), clinic.ErrInvalid)
}

func outerScopeRollsBack(t *testing.T, h Harness) {
	ctx := context.Background()
	boom := errors.New("abort")

	err := h.Tx.ReadWrite(ctx, func(ctx context.Context) error {
		o := clinic.Owner{FirstName: "Tmp", LastName: "Owner", Address: "a", City: "b", Telephone: "1"}
		if err := h.Services.Owners.SaveOwner(ctx, &o); err != nil {
			return err
		}
		if err := h.Services.Pets.DeletePet(ctx, clinic.Pet{ID: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := h.Services.Owners.FindAllOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
	mustPet(t, h, 1)
}

func outerScopeCommits(t *testing.T, h Harness) {
	ctx := context.Background()

	var id int
	err := h.Tx.ReadWrite(ctx, func(ctx context.Context) error {
		o := clinic.Owner{FirstName: "Kept", LastName: "Owner", Address: "a", City: "b", Telephone: "1"}
		if err := h.Services.Owners.SaveOwner(ctx, &o); err != nil {
			return err
		}
		id = o.ID

		// lectura dentro del mismo scope ve la escritura
		l, err := h.Services.Owners.FindOwnerByID(ctx, o.ID)
		if err != nil {
			return err
		}
		if !l.Present() {
			return errors.New("owner not visible inside its own scope")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Kept", mustOwner(t, h, id).FirstName)
}

func writeInReadOnlyScopeFails(t *testing.T, h Harness) {
	ctx := context.Background()

	err := h.Tx.ReadOnly(ctx, func(ctx context.Context) error {
		o := clinic.Owner{FirstName: "No", LastName: "Way", Address: "a", City: "b", Telephone: "1"}
		return h.Services.Owners.SaveOwner(ctx, &o)
	})
	assert.ErrorIs(t, err, txscope.ErrReadOnly)

	all, err := h.Services.Owners.FindAllOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func usersRoundTrip(t *testing.T, h Harness) {
	ctx := context.Background()

	p, err := h.Users.Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.True(t, p.HasRole(users.RoleAdmin))
	assert.True(t, p.HasRole(users.RoleOwnerAdmin))
	assert.True(t, p.HasRole(users.RoleVetAdmin))

	u := users.User{Username: "vet1", Password: "pw", Enabled: true, Roles: []users.Role{{Name: "VET_ADMIN"}, {Name: "vet_admin"}}}
	require.NoError(t, h.Users.SaveUser(ctx, &u))

	l, err := h.Users.FindUser(ctx, "vet1")
	require.NoError(t, err)
	got, ok := l.Get()
	require.True(t, ok)
	assert.Equal(t, []string{users.RoleVetAdmin}, got.RoleNames())

	_, err = h.Users.Authenticate(ctx, "vet1", "nope")
	assert.ErrorIs(t, err, users.ErrBadCredentials)

	missing, err := h.Users.FindUser(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, missing.Present())
}
