package memory

import (
	"context"

	"petclinic/internal/domain/clinic"
)

type vetRepo struct {
	s *Store
}

// withSpecialties arma el vet desde la tabla de vínculos, en orden de id.
// El orden por nombre lo aplica el servicio.
func withSpecialties(t tables, v clinic.Vet) clinic.Vet {
	v.Specialties = make([]clinic.Specialty, 0, len(t.vetSpecialties[v.ID]))
	for _, id := range sortedIDs(t.vetSpecialties[v.ID]) {
		if sp, ok := t.specialties[id]; ok {
			v.Specialties = append(v.Specialties, sp)
		}
	}
	return v
}

func (r *vetRepo) FindByID(ctx context.Context, id int) (clinic.Vet, error) {
	var out clinic.Vet
	err := r.s.read(ctx, func(t tables) error {
		v, ok := t.vets[id]
		if !ok {
			return notFound("vet", id)
		}
		out = withSpecialties(t, v)
		return nil
	})
	return out, err
}

func (r *vetRepo) FindAll(ctx context.Context) ([]clinic.Vet, error) {
	out := make([]clinic.Vet, 0)
	err := r.s.read(ctx, func(t tables) error {
		for _, id := range sortedIDs(t.vets) {
			out = append(out, withSpecialties(t, t.vets[id]))
		}
		return nil
	})
	return out, err
}

// Save reemplaza el conjunto completo de vínculos del vet.
func (r *vetRepo) Save(ctx context.Context, v *clinic.Vet) error {
	return r.s.write(ctx, func(t tables) error {
		links := map[int]struct{}{}
		for _, sp := range v.Specialties {
			if _, ok := t.specialties[sp.ID]; !ok {
				return constraint("vet references unknown specialty %d", sp.ID)
			}
			links[sp.ID] = struct{}{}
		}

		row := *v
		row.Specialties = nil
		if v.IsNew() {
			row.ID = t.next("vets")
		} else if _, ok := t.vets[v.ID]; !ok {
			return notFound("vet", v.ID)
		}
		t.vets[row.ID] = row
		t.vetSpecialties[row.ID] = links
		v.ID = row.ID
		return nil
	})
}

func (r *vetRepo) Delete(ctx context.Context, v clinic.Vet) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.vets[v.ID]; !ok {
			return notFound("vet", v.ID)
		}
		delete(t.vetSpecialties, v.ID)
		delete(t.vets, v.ID)
		return nil
	})
}
