package clinic

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Owner es la raíz del agregado por la que se llega a las mascotas.
// Pets es una proyección de lectura: se arma desde el repositorio de mascotas,
// guardar un Owner nunca guarda sus mascotas.
type Owner struct {
	ID int

	FirstName string
	LastName  string
	Address   string
	City      string
	Telephone string

	Pets []Pet
}

func (o Owner) IsNew() bool { return o.ID == 0 }

// AddPet enlaza la mascota con el owner (solo en memoria).
// La mascota se persiste aparte con PetService.SavePet.
func (o *Owner) AddPet(p *Pet) {
	p.OwnerID = o.ID
	o.Pets = append(o.Pets, *p)
	sortPets(o.Pets)
}

// Pet busca una mascota por nombre (case-insensitive).
// Con ignoreNew=true se saltan las mascotas todavía sin identidad.
func (o Owner) Pet(name string, ignoreNew bool) (Pet, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range o.Pets {
		if ignoreNew && p.IsNew() {
			continue
		}
		if strings.ToLower(p.Name) == name {
			return p, true
		}
	}
	return Pet{}, false
}

// Pet guarda solo la referencia al owner (OwnerID); la relación inversa
// se deriva consultando el repositorio.
type Pet struct {
	ID int

	Name      string
	BirthDate time.Time
	Type      PetType

	OwnerID int

	// Visits en orden de inserción (ID asc), sin importar la fecha de la visita.
	Visits []Visit
}

func (p Pet) IsNew() bool { return p.ID == 0 }

// AddVisit enlaza la visita con la mascota (solo en memoria).
func (p *Pet) AddVisit(v *Visit) {
	v.PetID = p.ID
	p.Visits = append(p.Visits, *v)
}

// Visit devuelve la visita con ese id solo si pertenece a esta mascota.
func (p Pet) Visit(id int) (Visit, bool) {
	for _, v := range p.Visits {
		if v.ID == id && v.PetID == p.ID {
			return v, true
		}
	}
	return Visit{}, false
}

type PetType struct {
	ID   int
	Name string
}

func (t PetType) IsNew() bool { return t.ID == 0 }

type Visit struct {
	ID int

	Date        time.Time
	Description string

	PetID int
}

func (v Visit) IsNew() bool { return v.ID == 0 }

// NewVisit crea una visita fechada hoy.
func NewVisit() Visit {
	return newVisitAt(time.Now())
}

func newVisitAt(now time.Time) Visit {
	return Visit{Date: CalendarDate(now)}
}

// CalendarDate deja solo el día de t (en su propia zona) como medianoche UTC.
// Las fechas de visitas y nacimientos se guardan y comparan así.
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Vet struct {
	ID int

	FirstName string
	LastName  string

	Specialties []Specialty
}

func (v Vet) IsNew() bool { return v.ID == 0 }

func (v Vet) NrOfSpecialties() int { return len(v.Specialties) }

func (v *Vet) AddSpecialty(s Specialty) {
	v.Specialties = normalizeSpecialties(append(v.Specialties, s))
}

type Specialty struct {
	ID   int
	Name string
}

func (s Specialty) IsNew() bool { return s.ID == 0 }

func sortPets(ps []Pet) {
	sort.SliceStable(ps, func(i, j int) bool {
		return strings.ToLower(ps[i].Name) < strings.ToLower(ps[j].Name)
	})
}

// normalizeSpecialties deduplica (por ID, o por nombre si no tiene identidad)
// y ordena por nombre ascendente.
func normalizeSpecialties(in []Specialty) []Specialty {
	if len(in) == 0 {
		return []Specialty{}
	}

	seen := map[string]struct{}{}
	out := make([]Specialty, 0, len(in))
	for _, s := range in {
		key := specialtyKey(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func specialtyKey(s Specialty) string {
	if s.ID != 0 {
		return "id:" + strconv.Itoa(s.ID)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(s.Name))
}
