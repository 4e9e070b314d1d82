package memory

import (
	"context"
	"slices"

	"petclinic/internal/adapters/storage/seed"
)

// Seed carga el dataset canónico con sus ids; los contadores quedan por
// encima del id más alto de cada tabla.
func (s *Store) Seed(ctx context.Context) error {
	ds := seed.Canonical()

	return s.ReadWrite(ctx, func(context.Context) error {
		t := s.t
		for _, pt := range ds.PetTypes {
			t.petTypes[pt.ID] = pt
			t.bump("types", pt.ID)
		}
		for _, o := range ds.Owners {
			t.owners[o.ID] = o
			t.bump("owners", o.ID)
		}
		for _, p := range ds.Pets {
			t.pets[p.ID] = petRow{Pet: p, typeID: p.Type.ID}
			t.bump("pets", p.ID)
		}
		for _, v := range ds.Visits {
			t.visits[v.ID] = v
			t.bump("visits", v.ID)
		}
		for _, sp := range ds.Specialties {
			t.specialties[sp.ID] = sp
			t.bump("specialties", sp.ID)
		}
		for _, v := range ds.Vets {
			row := v
			row.Specialties = nil
			t.vets[v.ID] = row
			t.bump("vets", v.ID)
			if t.vetSpecialties[v.ID] == nil {
				t.vetSpecialties[v.ID] = map[int]struct{}{}
			}
		}
		for _, l := range ds.VetLinks {
			t.vetSpecialties[l.VetID][l.SpecialtyID] = struct{}{}
		}
		for _, u := range ds.Users {
			u.Roles = slices.Clone(u.Roles)
			for _, r := range u.Roles {
				t.bump("roles", r.ID)
			}
			t.users[u.Username] = u
		}
		return nil
	})
}
