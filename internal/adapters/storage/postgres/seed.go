package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/adapters/storage/seed"
)

// Seed inserta el dataset canónico con sus ids (las filas existentes se
// respetan) y deja cada secuencia apuntando al id más alto.
func (s *Store) Seed(ctx context.Context) error {
	ds := seed.Canonical()

	return s.ReadWrite(ctx, func(ctx context.Context) error {
		insert := func(table string, rows []any) error {
			if len(rows) == 0 {
				return nil
			}
			_, err := s.execCount(ctx, dialect.Insert(table).
				Rows(rows...).
				OnConflict(goqu.DoNothing()).
				Prepared(true))
			if err != nil {
				return fmt.Errorf("postgres: seed %s: %w", table, err)
			}
			return nil
		}

		var types, owners, pets, visits, specialties, vets, links, usersRows, roles []any
		for _, t := range ds.PetTypes {
			types = append(types, goqu.Record{"id": t.ID, "name": t.Name})
		}
		for _, o := range ds.Owners {
			rec := ownerRecord(o)
			rec["id"] = o.ID
			owners = append(owners, rec)
		}
		for _, p := range ds.Pets {
			rec := petRecord(p)
			rec["id"] = p.ID
			pets = append(pets, rec)
		}
		for _, v := range ds.Visits {
			rec := visitRecord(v)
			rec["id"] = v.ID
			visits = append(visits, rec)
		}
		for _, sp := range ds.Specialties {
			specialties = append(specialties, goqu.Record{"id": sp.ID, "name": sp.Name})
		}
		for _, v := range ds.Vets {
			vets = append(vets, goqu.Record{"id": v.ID, "first_name": v.FirstName, "last_name": v.LastName})
		}
		for _, l := range ds.VetLinks {
			links = append(links, goqu.Record{"vet_id": l.VetID, "specialty_id": l.SpecialtyID})
		}
		for _, u := range ds.Users {
			usersRows = append(usersRows, goqu.Record{"username": u.Username, "password": u.Password, "enabled": u.Enabled})
			for _, r := range u.Roles {
				roles = append(roles, goqu.Record{"id": r.ID, "username": u.Username, "role": r.Name})
			}
		}

		steps := []struct {
			table string
			rows  []any
		}{
			{tableTypes, types},
			{tableOwners, owners},
			{tablePets, pets},
			{tableVisits, visits},
			{tableSpecialties, specialties},
			{tableVets, vets},
			{tableVetSpecialties, links},
			{tableUsers, usersRows},
			{tableRoles, roles},
		}
		for _, st := range steps {
			if err := insert(st.table, st.rows); err != nil {
				return err
			}
		}

		for _, table := range []string{tableTypes, tableOwners, tablePets, tableVisits, tableSpecialties, tableVets, tableRoles} {
			q := fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
				table,
			)
			if _, err := s.conn(ctx).ExecContext(ctx, q); err != nil {
				return fmt.Errorf("postgres: seed sequence %s: %w", table, err)
			}
		}
		return nil
	})
}
