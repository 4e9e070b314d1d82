package memory

import (
	"context"
	"sort"

	"petclinic/internal/domain/clinic"
)

type petRepo struct {
	s *Store
}

// materialize resuelve el tipo actual; las visitas las arma el servicio.
func materialize(t tables, row petRow) clinic.Pet {
	p := row.Pet
	p.Type = t.petTypes[row.typeID]
	p.Visits = nil
	return p
}

func (r *petRepo) FindByID(ctx context.Context, id int) (clinic.Pet, error) {
	var out clinic.Pet
	err := r.s.read(ctx, func(t tables) error {
		row, ok := t.pets[id]
		if !ok {
			return notFound("pet", id)
		}
		out = materialize(t, row)
		return nil
	})
	return out, err
}

func (r *petRepo) FindAll(ctx context.Context) ([]clinic.Pet, error) {
	return r.where(ctx, func(petRow) bool { return true })
}

func (r *petRepo) FindByOwnerID(ctx context.Context, ownerID int) ([]clinic.Pet, error) {
	return r.where(ctx, func(p petRow) bool { return p.OwnerID == ownerID })
}

func (r *petRepo) where(ctx context.Context, keep func(petRow) bool) ([]clinic.Pet, error) {
	out := make([]clinic.Pet, 0)
	err := r.s.read(ctx, func(t tables) error {
		for _, id := range sortedIDs(t.pets) {
			if row := t.pets[id]; keep(row) {
				out = append(out, materialize(t, row))
			}
		}
		return nil
	})
	return out, err
}

func (r *petRepo) FindPetTypes(ctx context.Context) ([]clinic.PetType, error) {
	out := make([]clinic.PetType, 0)
	err := r.s.read(ctx, func(t tables) error {
		used := map[int]struct{}{}
		for _, p := range t.pets {
			used[p.typeID] = struct{}{}
		}
		for id := range used {
			if pt, ok := t.petTypes[id]; ok {
				out = append(out, pt)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *petRepo) Save(ctx context.Context, p *clinic.Pet) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.owners[p.OwnerID]; !ok {
			return constraint("pet references unknown owner %d", p.OwnerID)
		}
		if _, ok := t.petTypes[p.Type.ID]; !ok {
			return constraint("pet references unknown type %d", p.Type.ID)
		}

		row := petRow{Pet: *p, typeID: p.Type.ID}
		row.Type = clinic.PetType{}
		row.Visits = nil
		if p.IsNew() {
			row.ID = t.next("pets")
		} else if _, ok := t.pets[p.ID]; !ok {
			return notFound("pet", p.ID)
		}
		t.pets[row.ID] = row
		p.ID = row.ID
		return nil
	})
}

func (r *petRepo) Delete(ctx context.Context, p clinic.Pet) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.pets[p.ID]; !ok {
			return notFound("pet", p.ID)
		}
		deletePet(t, p.ID)
		return nil
	})
}

// deletePet borra la mascota y sus visitas.
func deletePet(t tables, id int) {
	for vid, v := range t.visits {
		if v.PetID == id {
			delete(t.visits, vid)
		}
	}
	delete(t.pets, id)
}
