package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"petclinic/internal/adapters/storage/seed"
)

// Seed inserta el dataset canónico respetando ids y filas existentes.
// En PostgreSQL además reposiciona las secuencias.
func (s *Store) Seed(ctx context.Context) error {
	ds := seed.Canonical()

	var (
		types       []petTypeRecord
		owners      []ownerRecord
		pets        []petRecord
		visits      []visitRecord
		specialties []specialtyRecord
		vets        []vetRecord
		links       []vetSpecialtyRecord
		userRows    []userRecord
		roles       []roleRecord
	)
	for _, t := range ds.PetTypes {
		types = append(types, petTypeRecord{ID: t.ID, Name: t.Name})
	}
	for _, o := range ds.Owners {
		owners = append(owners, ownerRecord{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName, Address: o.Address, City: o.City, Telephone: o.Telephone})
	}
	for _, p := range ds.Pets {
		pets = append(pets, newPetRecord(p))
	}
	for _, v := range ds.Visits {
		visits = append(visits, visitRecord{ID: v.ID, PetID: v.PetID, Date: v.Date, Description: v.Description})
	}
	for _, sp := range ds.Specialties {
		specialties = append(specialties, specialtyRecord{ID: sp.ID, Name: sp.Name})
	}
	for _, v := range ds.Vets {
		vets = append(vets, vetRecord{ID: v.ID, FirstName: v.FirstName, LastName: v.LastName})
	}
	for _, l := range ds.VetLinks {
		links = append(links, vetSpecialtyRecord{VetID: l.VetID, SpecialtyID: l.SpecialtyID})
	}
	for _, u := range ds.Users {
		userRows = append(userRows, userRecord{Username: u.Username, Password: u.Password, Enabled: u.Enabled})
		for _, r := range u.Roles {
			roles = append(roles, roleRecord{ID: r.ID, Username: u.Username, Role: r.Name})
		}
	}

	return s.ReadWrite(ctx, func(ctx context.Context) error {
		steps := []struct {
			table string
			rows  any
			n     int
		}{
			{"types", &types, len(types)},
			{"owners", &owners, len(owners)},
			{"pets", &pets, len(pets)},
			{"visits", &visits, len(visits)},
			{"specialties", &specialties, len(specialties)},
			{"vets", &vets, len(vets)},
			{"vet_specialties", &links, len(links)},
			{"users", &userRows, len(userRows)},
			{"roles", &roles, len(roles)},
		}
		for _, st := range steps {
			if st.n == 0 {
				continue
			}
			err := s.conn(ctx).
				Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(st.rows).Error
			if err != nil {
				return fmt.Errorf("gormstore: seed %s: %w", st.table, classify(err))
			}
		}

		if s.dialect != DialectPostgres {
			return nil
		}
		for _, table := range []string{"types", "owners", "pets", "visits", "specialties", "vets", "roles"} {
			q := fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
				table,
			)
			if err := s.conn(ctx).Exec(q).Error; err != nil {
				return fmt.Errorf("gormstore: seed sequence %s: %w", table, err)
			}
		}
		return nil
	})
}

// Reset vacía todas las tablas y reinicia los contadores de ids.
func (s *Store) Reset(ctx context.Context) error {
	return s.ReadWrite(ctx, func(ctx context.Context) error {
		if s.dialect == DialectPostgres {
			return s.conn(ctx).Exec(
				`TRUNCATE vet_specialties, vets, specialties, visits, pets, owners, types, roles, users RESTART IDENTITY CASCADE`,
			).Error
		}
		for _, table := range []string{"vet_specialties", "vets", "specialties", "visits", "pets", "owners", "types", "roles", "users", "sqlite_sequence"} {
			if err := s.conn(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("gormstore: reset %s: %w", table, err)
			}
		}
		return nil
	})
}
