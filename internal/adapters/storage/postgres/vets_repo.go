package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/domain/clinic"
)

type vetRow struct {
	ID        int    `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

type vetSpecialtyRow struct {
	VetID int    `db:"vet_id"`
	ID    int    `db:"id"`
	Name  string `db:"name"`
}

type vetRepo struct {
	s *Store
}

func (r *vetRepo) FindByID(ctx context.Context, id int) (clinic.Vet, error) {
	var row vetRow
	err := r.s.selectOne(ctx, &row, dialect.From(tableVets).
		Select("id", "first_name", "last_name").
		Where(goqu.C("id").Eq(id)).
		Prepared(true))
	if err != nil {
		return clinic.Vet{}, wrapNotFound(err, "vet", id)
	}
	vets, err := r.attach(ctx, []vetRow{row})
	if err != nil {
		return clinic.Vet{}, err
	}
	return vets[0], nil
}

func (r *vetRepo) FindAll(ctx context.Context) ([]clinic.Vet, error) {
	var rows []vetRow
	err := r.s.selectAll(ctx, &rows, dialect.From(tableVets).
		Select("id", "first_name", "last_name").
		Order(goqu.C("id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	return r.attach(ctx, rows)
}

// attach carga las especialidades de todos los vets en una sola consulta.
func (r *vetRepo) attach(ctx context.Context, rows []vetRow) ([]clinic.Vet, error) {
	out := make([]clinic.Vet, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var links []vetSpecialtyRow
	err := r.s.selectAll(ctx, &links, dialect.From(goqu.T(tableVetSpecialties).As("vs")).
		Join(goqu.T(tableSpecialties).As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("vs.specialty_id")))).
		Select(goqu.I("vs.vet_id"), goqu.I("s.id"), goqu.I("s.name")).
		Where(goqu.I("vs.vet_id").In(ids)).
		Order(goqu.I("vs.vet_id").Asc(), goqu.I("s.id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	byVet := make(map[int][]clinic.Specialty, len(rows))
	for _, l := range links {
		byVet[l.VetID] = append(byVet[l.VetID], clinic.Specialty{ID: l.ID, Name: l.Name})
	}
	for _, row := range rows {
		specialties := byVet[row.ID]
		if specialties == nil {
			specialties = []clinic.Specialty{}
		}
		out = append(out, clinic.Vet{
			ID:          row.ID,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			Specialties: specialties,
		})
	}
	return out, nil
}

// Save reemplaza el conjunto de vínculos del vet dentro del mismo scope.
func (r *vetRepo) Save(ctx context.Context, v *clinic.Vet) error {
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		rec := goqu.Record{"first_name": v.FirstName, "last_name": v.LastName}

		id := v.ID
		if v.IsNew() {
			newID, err := r.s.insertReturningID(ctx, dialect.Insert(tableVets).
				Rows(rec).
				Returning("id").
				Prepared(true))
			if err != nil {
				return err
			}
			id = newID
		} else {
			err := r.s.exec(ctx, dialect.Update(tableVets).
				Set(rec).
				Where(goqu.C("id").Eq(v.ID)).
				Prepared(true))
			if err != nil {
				return wrapNotFound(err, "vet", v.ID)
			}
			if _, err := r.s.execCount(ctx, dialect.Delete(tableVetSpecialties).
				Where(goqu.C("vet_id").Eq(v.ID)).
				Prepared(true)); err != nil {
				return err
			}
		}

		if len(v.Specialties) > 0 {
			rows := make([]any, 0, len(v.Specialties))
			for _, sp := range v.Specialties {
				rows = append(rows, goqu.Record{"vet_id": id, "specialty_id": sp.ID})
			}
			if _, err := r.s.execCount(ctx, dialect.Insert(tableVetSpecialties).
				Rows(rows...).
				OnConflict(goqu.DoNothing()).
				Prepared(true)); err != nil {
				return err
			}
		}

		v.ID = id
		return nil
	})
}

// Delete: los vínculos caen por cascada; las especialidades quedan.
func (r *vetRepo) Delete(ctx context.Context, v clinic.Vet) error {
	err := r.s.exec(ctx, dialect.Delete(tableVets).
		Where(goqu.C("id").Eq(v.ID)).
		Prepared(true))
	return wrapNotFound(err, "vet", v.ID)
}
