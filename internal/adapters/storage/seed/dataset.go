// Package seed contiene el dataset canónico de la clínica. Cada adapter de
// storage lo carga con sus propios ids explícitos.
package seed

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
)

// Link es una fila de vet_specialties.
type Link struct {
	VetID       int
	SpecialtyID int
}

type Dataset struct {
	PetTypes    []clinic.PetType
	Owners      []clinic.Owner
	Pets        []clinic.Pet
	Visits      []clinic.Visit
	Specialties []clinic.Specialty
	Vets        []clinic.Vet
	VetLinks    []Link
	Users       []users.User
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AdminPassword es la contraseña en claro del usuario admin sembrado.
const AdminPassword = "admin"

var (
	adminHashOnce sync.Once
	adminHash     string
)

// adminPasswordHash se calcula una sola vez por proceso.
func adminPasswordHash() string {
	adminHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			panic("seed: bcrypt: " + err.Error())
		}
		adminHash = string(h)
	})
	return adminHash
}

// Canonical devuelve una copia nueva del dataset en cada llamada.
func Canonical() Dataset {
	types := []clinic.PetType{
		{ID: 1, Name: "cat"},
		{ID: 2, Name: "dog"},
		{ID: 3, Name: "lizard"},
		{ID: 4, Name: "snake"},
		{ID: 5, Name: "bird"},
		{ID: 6, Name: "hamster"},
	}
	typ := func(id int) clinic.PetType { return types[id-1] }

	specialties := []clinic.Specialty{
		{ID: 1, Name: "radiology"},
		{ID: 2, Name: "surgery"},
		{ID: 3, Name: "dentistry"},
	}

	links := []Link{
		{VetID: 2, SpecialtyID: 1},
		{VetID: 3, SpecialtyID: 2},
		{VetID: 3, SpecialtyID: 3},
		{VetID: 4, SpecialtyID: 2},
		{VetID: 5, SpecialtyID: 1},
	}

	vets := []clinic.Vet{
		{ID: 1, FirstName: "James", LastName: "Carter"},
		{ID: 2, FirstName: "Helen", LastName: "Leary"},
		{ID: 3, FirstName: "Linda", LastName: "Douglas"},
		{ID: 4, FirstName: "Rafael", LastName: "Ortega"},
		{ID: 5, FirstName: "Henry", LastName: "Stevens"},
		{ID: 6, FirstName: "Sharon", LastName: "Jenkins"},
	}
	for i := range vets {
		for _, l := range links {
			if l.VetID == vets[i].ID {
				vets[i].Specialties = append(vets[i].Specialties, specialties[l.SpecialtyID-1])
			}
		}
	}

	return Dataset{
		PetTypes: types,
		Owners: []clinic.Owner{
			{ID: 1, FirstName: "George", LastName: "Franklin", Address: "110 W. Liberty St.", City: "Madison", Telephone: "6085551023"},
			{ID: 2, FirstName: "Betty", LastName: "Davis", Address: "638 Cardinal Ave.", City: "Sun Prairie", Telephone: "6085551749"},
			{ID: 3, FirstName: "Eduardo", LastName: "Rodriquez", Address: "2693 Commerce St.", City: "McFarland", Telephone: "6085558763"},
			{ID: 4, FirstName: "Harold", LastName: "Davis", Address: "563 Friendly St.", City: "Windsor", Telephone: "6085553198"},
			{ID: 5, FirstName: "Peter", LastName: "McTavish", Address: "2387 S. Fair Way", City: "Madison", Telephone: "6085552765"},
			{ID: 6, FirstName: "Jean", LastName: "Coleman", Address: "105 N. Lake St.", City: "Monona", Telephone: "6085552654"},
			{ID: 7, FirstName: "Jeff", LastName: "Black", Address: "1450 Oak Blvd.", City: "Monona", Telephone: "6085555387"},
			{ID: 8, FirstName: "Maria", LastName: "Escobito", Address: "345 Maple St.", City: "Madison", Telephone: "6085557683"},
			{ID: 9, FirstName: "David", LastName: "Schroeder", Address: "2749 Blackhawk Trail", City: "Madison", Telephone: "6085559435"},
			{ID: 10, FirstName: "Carlos", LastName: "Estaban", Address: "2335 Independence La.", City: "Waunakee", Telephone: "6085555487"},
		},
		Pets: []clinic.Pet{
			{ID: 1, Name: "Leo", BirthDate: date(2010, 9, 7), Type: typ(1), OwnerID: 1},
			{ID: 2, Name: "Basil", BirthDate: date(2012, 8, 6), Type: typ(6), OwnerID: 2},
			{ID: 3, Name: "Rosy", BirthDate: date(2011, 4, 17), Type: typ(2), OwnerID: 3},
			{ID: 4, Name: "Jewel", BirthDate: date(2010, 3, 7), Type: typ(2), OwnerID: 3},
			{ID: 5, Name: "Iggy", BirthDate: date(2010, 11, 30), Type: typ(3), OwnerID: 4},
			{ID: 6, Name: "George", BirthDate: date(2010, 1, 20), Type: typ(4), OwnerID: 5},
			{ID: 7, Name: "Samantha", BirthDate: date(2012, 9, 4), Type: typ(1), OwnerID: 6},
			{ID: 8, Name: "Max", BirthDate: date(2012, 9, 4), Type: typ(1), OwnerID: 6},
			{ID: 9, Name: "Lucky", BirthDate: date(2011, 8, 6), Type: typ(5), OwnerID: 7},
			{ID: 10, Name: "Mulligan", BirthDate: date(2007, 2, 24), Type: typ(2), OwnerID: 8},
			{ID: 11, Name: "Freddy", BirthDate: date(2010, 3, 9), Type: typ(5), OwnerID: 9},
			{ID: 12, Name: "Lucky", BirthDate: date(2010, 6, 24), Type: typ(2), OwnerID: 10},
			{ID: 13, Name: "Sly", BirthDate: date(2012, 6, 8), Type: typ(1), OwnerID: 10},
		},
		Visits: []clinic.Visit{
			{ID: 1, PetID: 7, Date: date(2013, 1, 1), Description: "rabies shot"},
			{ID: 2, PetID: 8, Date: date(2013, 1, 2), Description: "rabies shot"},
			{ID: 3, PetID: 8, Date: date(2013, 1, 3), Description: "neutered"},
			{ID: 4, PetID: 7, Date: date(2013, 1, 4), Description: "spayed"},
		},
		Specialties: specialties,
		Vets:        vets,
		VetLinks:    links,
		Users: []users.User{
			{
				Username: "admin",
				Password: adminPasswordHash(),
				Enabled:  true,
				Roles: []users.Role{
					{ID: 1, Name: users.RoleOwnerAdmin},
					{ID: 2, Name: users.RoleVetAdmin},
					{ID: 3, Name: users.RoleAdmin},
				},
			},
		},
	}
}
