package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/domain/clinic"
)

type petTypeRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

func petTypesToDomain(rows []petTypeRow) []clinic.PetType {
	out := make([]clinic.PetType, 0, len(rows))
	for _, row := range rows {
		out = append(out, clinic.PetType{ID: row.ID, Name: row.Name})
	}
	return out
}

type petTypeRepo struct {
	s *Store
}

func (r *petTypeRepo) FindByID(ctx context.Context, id int) (clinic.PetType, error) {
	var row petTypeRow
	err := r.s.selectOne(ctx, &row, dialect.From(tableTypes).
		Select("id", "name").
		Where(goqu.C("id").Eq(id)).
		Prepared(true))
	if err != nil {
		return clinic.PetType{}, wrapNotFound(err, "pet type", id)
	}
	return clinic.PetType{ID: row.ID, Name: row.Name}, nil
}

func (r *petTypeRepo) FindAll(ctx context.Context) ([]clinic.PetType, error) {
	var rows []petTypeRow
	err := r.s.selectAll(ctx, &rows, dialect.From(tableTypes).
		Select("id", "name").
		Order(goqu.C("id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	return petTypesToDomain(rows), nil
}

func (r *petTypeRepo) Save(ctx context.Context, t *clinic.PetType) error {
	if t.IsNew() {
		id, err := r.s.insertReturningID(ctx, dialect.Insert(tableTypes).
			Rows(goqu.Record{"name": t.Name}).
			Returning("id").
			Prepared(true))
		if err != nil {
			return err
		}
		t.ID = id
		return nil
	}
	err := r.s.exec(ctx, dialect.Update(tableTypes).
		Set(goqu.Record{"name": t.Name}).
		Where(goqu.C("id").Eq(t.ID)).
		Prepared(true))
	return wrapNotFound(err, "pet type", t.ID)
}

// Delete: las mascotas de este tipo (y sus visitas) caen por cascada.
func (r *petTypeRepo) Delete(ctx context.Context, t clinic.PetType) error {
	err := r.s.exec(ctx, dialect.Delete(tableTypes).
		Where(goqu.C("id").Eq(t.ID)).
		Prepared(true))
	return wrapNotFound(err, "pet type", t.ID)
}

type specialtyRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type specialtyRepo struct {
	s *Store
}

func (r *specialtyRepo) FindByID(ctx context.Context, id int) (clinic.Specialty, error) {
	var row specialtyRow
	err := r.s.selectOne(ctx, &row, dialect.From(tableSpecialties).
		Select("id", "name").
		Where(goqu.C("id").Eq(id)).
		Prepared(true))
	if err != nil {
		return clinic.Specialty{}, wrapNotFound(err, "specialty", id)
	}
	return clinic.Specialty{ID: row.ID, Name: row.Name}, nil
}

func (r *specialtyRepo) FindAll(ctx context.Context) ([]clinic.Specialty, error) {
	var rows []specialtyRow
	err := r.s.selectAll(ctx, &rows, dialect.From(tableSpecialties).
		Select("id", "name").
		Order(goqu.C("id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	out := make([]clinic.Specialty, 0, len(rows))
	for _, row := range rows {
		out = append(out, clinic.Specialty{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (r *specialtyRepo) Save(ctx context.Context, sp *clinic.Specialty) error {
	if sp.IsNew() {
		id, err := r.s.insertReturningID(ctx, dialect.Insert(tableSpecialties).
			Rows(goqu.Record{"name": sp.Name}).
			Returning("id").
			Prepared(true))
		if err != nil {
			return err
		}
		sp.ID = id
		return nil
	}
	err := r.s.exec(ctx, dialect.Update(tableSpecialties).
		Set(goqu.Record{"name": sp.Name}).
		Where(goqu.C("id").Eq(sp.ID)).
		Prepared(true))
	return wrapNotFound(err, "specialty", sp.ID)
}

// Delete: los vínculos vet_specialties caen por cascada.
func (r *specialtyRepo) Delete(ctx context.Context, sp clinic.Specialty) error {
	err := r.s.exec(ctx, dialect.Delete(tableSpecialties).
		Where(goqu.C("id").Eq(sp.ID)).
		Prepared(true))
	return wrapNotFound(err, "specialty", sp.ID)
}
