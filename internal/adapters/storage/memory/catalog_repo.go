package memory

import (
	"context"

	"petclinic/internal/domain/clinic"
)

type petTypeRepo struct {
	s *Store
}

func (r *petTypeRepo) FindByID(ctx context.Context, id int) (clinic.PetType, error) {
	var out clinic.PetType
	err := r.s.read(ctx, func(t tables) error {
		pt, ok := t.petTypes[id]
		if !ok {
			return notFound("pet type", id)
		}
		out = pt
		return nil
	})
	return out, err
}

func (r *petTypeRepo) FindAll(ctx context.Context) ([]clinic.PetType, error) {
	out := make([]clinic.PetType, 0)
	err := r.s.read(ctx, func(t tables) error {
		for _, id := range sortedIDs(t.petTypes) {
			out = append(out, t.petTypes[id])
		}
		return nil
	})
	return out, err
}

func (r *petTypeRepo) Save(ctx context.Context, pt *clinic.PetType) error {
	return r.s.write(ctx, func(t tables) error {
		row := *pt
		if pt.IsNew() {
			row.ID = t.next("types")
		} else if _, ok := t.petTypes[pt.ID]; !ok {
			return notFound("pet type", pt.ID)
		}
		t.petTypes[row.ID] = row
		pt.ID = row.ID
		return nil
	})
}

// Delete borra en cascada las mascotas de ese tipo (y sus visitas).
func (r *petTypeRepo) Delete(ctx context.Context, pt clinic.PetType) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.petTypes[pt.ID]; !ok {
			return notFound("pet type", pt.ID)
		}
		for id, p := range t.pets {
			if p.typeID == pt.ID {
				deletePet(t, id)
			}
		}
		delete(t.petTypes, pt.ID)
		return nil
	})
}

type specialtyRepo struct {
	s *Store
}

func (r *specialtyRepo) FindByID(ctx context.Context, id int) (clinic.Specialty, error) {
	var out clinic.Specialty
	err := r.s.read(ctx, func(t tables) error {
		sp, ok := t.specialties[id]
		if !ok {
			return notFound("specialty", id)
		}
		out = sp
		return nil
	})
	return out, err
}

func (r *specialtyRepo) FindAll(ctx context.Context) ([]clinic.Specialty, error) {
	out := make([]clinic.Specialty, 0)
	err := r.s.read(ctx, func(t tables) error {
		for _, id := range sortedIDs(t.specialties) {
			out = append(out, t.specialties[id])
		}
		return nil
	})
	return out, err
}

func (r *specialtyRepo) Save(ctx context.Context, sp *clinic.Specialty) error {
	return r.s.write(ctx, func(t tables) error {
		row := *sp
		if sp.IsNew() {
			row.ID = t.next("specialties")
		} else if _, ok := t.specialties[sp.ID]; !ok {
			return notFound("specialty", sp.ID)
		}
		t.specialties[row.ID] = row
		sp.ID = row.ID
		return nil
	})
}

// Delete quita la especialidad de todos los vets que la tenían.
func (r *specialtyRepo) Delete(ctx context.Context, sp clinic.Specialty) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.specialties[sp.ID]; !ok {
			return notFound("specialty", sp.ID)
		}
		for _, set := range t.vetSpecialties {
			delete(set, sp.ID)
		}
		delete(t.specialties, sp.ID)
		return nil
	})
}
