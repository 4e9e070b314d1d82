package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/domain/clinic"
)

type ownerRow struct {
	ID        int    `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Address   string `db:"address"`
	City      string `db:"city"`
	Telephone string `db:"telephone"`
}

func (r ownerRow) toDomain() clinic.Owner {
	return clinic.Owner{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Address:   r.Address,
		City:      r.City,
		Telephone: r.Telephone,
	}
}

func ownerRecord(o clinic.Owner) goqu.Record {
	return goqu.Record{
		"first_name": o.FirstName,
		"last_name":  o.LastName,
		"address":    o.Address,
		"city":       o.City,
		"telephone":  o.Telephone,
	}
}

type ownerRepo struct {
	s *Store
}

func (r *ownerRepo) selectOwners() *goqu.SelectDataset {
	return dialect.From(tableOwners).
		Select("id", "first_name", "last_name", "address", "city", "telephone").
		Order(goqu.C("id").Asc()).
		Prepared(true)
}

func (r *ownerRepo) FindByID(ctx context.Context, id int) (clinic.Owner, error) {
	var row ownerRow
	if err := r.s.selectOne(ctx, &row, r.selectOwners().Where(goqu.C("id").Eq(id))); err != nil {
		return clinic.Owner{}, wrapNotFound(err, "owner", id)
	}
	return row.toDomain(), nil
}

func (r *ownerRepo) FindAll(ctx context.Context) ([]clinic.Owner, error) {
	return r.list(ctx, r.selectOwners())
}

func (r *ownerRepo) FindByLastName(ctx context.Context, lastName string) ([]clinic.Owner, error) {
	return r.list(ctx, r.selectOwners().Where(goqu.C("last_name").Eq(lastName)))
}

func (r *ownerRepo) list(ctx context.Context, ds *goqu.SelectDataset) ([]clinic.Owner, error) {
	var rows []ownerRow
	if err := r.s.selectAll(ctx, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]clinic.Owner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ownerRepo) Save(ctx context.Context, o *clinic.Owner) error {
	if o.IsNew() {
		id, err := r.s.insertReturningID(ctx, dialect.Insert(tableOwners).
			Rows(ownerRecord(*o)).
			Returning("id").
			Prepared(true))
		if err != nil {
			return err
		}
		o.ID = id
		return nil
	}

	err := r.s.exec(ctx, dialect.Update(tableOwners).
		Set(ownerRecord(*o)).
		Where(goqu.C("id").Eq(o.ID)).
		Prepared(true))
	return wrapNotFound(err, "owner", o.ID)
}

// Delete: pets y visits caen por ON DELETE CASCADE.
func (r *ownerRepo) Delete(ctx context.Context, o clinic.Owner) error {
	err := r.s.exec(ctx, dialect.Delete(tableOwners).
		Where(goqu.C("id").Eq(o.ID)).
		Prepared(true))
	return wrapNotFound(err, "owner", o.ID)
}
