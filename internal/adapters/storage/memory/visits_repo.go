package memory

import (
	"context"

	"petclinic/internal/domain/clinic"
)

type visitRepo struct {
	s *Store
}

func (r *visitRepo) FindByID(ctx context.Context, id int) (clinic.Visit, error) {
	var out clinic.Visit
	err := r.s.read(ctx, func(t tables) error {
		v, ok := t.visits[id]
		if !ok {
			return notFound("visit", id)
		}
		out = v
		return nil
	})
	return out, err
}

func (r *visitRepo) FindAll(ctx context.Context) ([]clinic.Visit, error) {
	return r.where(ctx, func(clinic.Visit) bool { return true })
}

func (r *visitRepo) FindByPetID(ctx context.Context, petID int) ([]clinic.Visit, error) {
	return r.where(ctx, func(v clinic.Visit) bool { return v.PetID == petID })
}

func (r *visitRepo) where(ctx context.Context, keep func(clinic.Visit) bool) ([]clinic.Visit, error) {
	out := make([]clinic.Visit, 0)
	err := r.s.read(ctx, func(t tables) error {
		for _, id := range sortedIDs(t.visits) {
			if v := t.visits[id]; keep(v) {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

func (r *visitRepo) Save(ctx context.Context, v *clinic.Visit) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.pets[v.PetID]; !ok {
			return constraint("visit references unknown pet %d", v.PetID)
		}
		row := *v
		if v.IsNew() {
			row.ID = t.next("visits")
		} else if _, ok := t.visits[v.ID]; !ok {
			return notFound("visit", v.ID)
		}
		t.visits[row.ID] = row
		v.ID = row.ID
		return nil
	})
}

func (r *visitRepo) Delete(ctx context.Context, v clinic.Visit) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.visits[v.ID]; !ok {
			return notFound("visit", v.ID)
		}
		delete(t.visits, v.ID)
		return nil
	})
}
