package memory

import (
	"context"

	"petclinic/internal/domain/clinic"
)

type ownerRepo struct {
	s *Store
}

func (r *ownerRepo) FindByID(ctx context.Context, id int) (clinic.Owner, error) {
	var out clinic.Owner
	err := r.s.read(ctx, func(t tables) error {
		o, ok := t.owners[id]
		if !ok {
			return notFound("owner", id)
		}
		out = o
		return nil
	})
	return out, err
}

func (r *ownerRepo) FindAll(ctx context.Context) ([]clinic.Owner, error) {
	return r.where(ctx, func(clinic.Owner) bool { return true })
}

func (r *ownerRepo) FindByLastName(ctx context.Context, lastName string) ([]clinic.Owner, error) {
	return r.where(ctx, func(o clinic.Owner) bool { return o.LastName == lastName })
}

func (r *ownerRepo) where(ctx context.Context, keep func(clinic.Owner) bool) ([]clinic.Owner, error) {
	out := make([]clinic.Owner, 0)
	err := r.s.read(ctx, func(t tables) error {
		for _, id := range sortedIDs(t.owners) {
			if o := t.owners[id]; keep(o) {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}

func (r *ownerRepo) Save(ctx context.Context, o *clinic.Owner) error {
	return r.s.write(ctx, func(t tables) error {
		row := *o
		row.Pets = nil
		if o.IsNew() {
			row.ID = t.next("owners")
		} else if _, ok := t.owners[o.ID]; !ok {
			return notFound("owner", o.ID)
		}
		t.owners[row.ID] = row
		o.ID = row.ID
		return nil
	})
}

// Delete borra en cascada las mascotas del owner y sus visitas.
func (r *ownerRepo) Delete(ctx context.Context, o clinic.Owner) error {
	return r.s.write(ctx, func(t tables) error {
		if _, ok := t.owners[o.ID]; !ok {
			return notFound("owner", o.ID)
		}
		for id, p := range t.pets {
			if p.OwnerID == o.ID {
				deletePet(t, id)
			}
		}
		delete(t.owners, o.ID)
		return nil
	})
}
