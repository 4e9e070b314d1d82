package clinic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwner_AddPetKeepsNameOrder(t *testing.T) {
	o := Owner{ID: 7}
	o.AddPet(&Pet{Name: "rex"})
	o.AddPet(&Pet{ID: 3, Name: "Bella"})
	o.AddPet(&Pet{Name: "max"})

	names := make([]string, 0, len(o.Pets))
	for _, p := range o.Pets {
		names = append(names, p.Name)
		assert.Equal(t, 7, p.OwnerID)
	}
	assert.Equal(t, []string{"Bella", "max", "rex"}, names)
}

func TestOwner_PetByName(t *testing.T) {
	o := Owner{ID: 1}
	o.AddPet(&Pet{ID: 4, Name: "Leo"})
	o.AddPet(&Pet{Name: "Milo"})

	p, ok := o.Pet("leo", false)
	require.True(t, ok)
	assert.Equal(t, 4, p.ID)

	_, ok = o.Pet("MILO", false)
	assert.True(t, ok)

	_, ok = o.Pet("milo", true)
	assert.False(t, ok, "new pets are skipped with ignoreNew")

	_, ok = o.Pet("nobody", false)
	assert.False(t, ok)
}

func TestPet_VisitOnlyOwnVisits(t *testing.T) {
	p := Pet{ID: 8}
	p.AddVisit(&Visit{ID: 2, Description: "rabies shot"})
	p.Visits = append(p.Visits, Visit{ID: 9, PetID: 99})

	v, ok := p.Visit(2)
	require.True(t, ok)
	assert.Equal(t, 8, v.PetID)

	_, ok = p.Visit(9)
	assert.False(t, ok)
}

func TestNewVisit_DatedToday(t *testing.T) {
	now := time.Date(2024, 3, 5, 17, 45, 12, 99, time.UTC)
	v := newVisitAt(now)

	assert.True(t, v.IsNew())
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), v.Date)
	assert.False(t, NewVisit().Date.IsZero())
}

func TestNewVisit_UsesLocalCalendarDay(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	v := newVisitAt(time.Date(2024, 3, 5, 0, 30, 0, 0, tokyo))

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), v.Date)
}

func TestCalendarDate(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), CalendarDate(time.Date(2024, 3, 5, 23, 10, 0, 0, west)))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), CalendarDate(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, CalendarDate(time.Time{}).IsZero())
}

func TestVet_AddSpecialtyDedupesAndSorts(t *testing.T) {
	var v Vet
	v.AddSpecialty(Specialty{ID: 2, Name: "surgery"})
	v.AddSpecialty(Specialty{ID: 1, Name: "radiology"})
	v.AddSpecialty(Specialty{ID: 2, Name: "surgery"})
	v.AddSpecialty(Specialty{Name: "Dentistry "})
	v.AddSpecialty(Specialty{Name: "dentistry"})

	require.Equal(t, 3, v.NrOfSpecialties())
	assert.Equal(t, "Dentistry ", v.Specialties[0].Name)
	assert.Equal(t, "radiology", v.Specialties[1].Name)
	assert.Equal(t, "surgery", v.Specialties[2].Name)
}

func TestNormalizeSpecialties_EmptyIsNonNil(t *testing.T) {
	out := normalizeSpecialties(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestValidateOwnerTelephone(t *testing.T) {
	base := Owner{FirstName: "a", LastName: "b", Address: "c", City: "d"}

	for tel, ok := range map[string]bool{
		"6085551023":  true,
		"123":         true,
		"60855510231": false,
		"608-555":     false,
		"":            false,
	} {
		o := base
		o.Telephone = tel
		err := validateOwner(o)
		if ok {
			assert.NoError(t, err, tel)
		} else {
			assert.ErrorIs(t, err, ErrInvalid, tel)
		}
	}
}

func TestLookup(t *testing.T) {
	l := Found(PetType{ID: 1, Name: "cat"})
	v, ok := l.Get()
	assert.True(t, ok)
	assert.Equal(t, "cat", v.Name)

	a := Absent[PetType]()
	assert.False(t, a.Present())
	assert.Equal(t, PetType{}, a.OrZero())
}
