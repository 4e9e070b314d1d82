package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/domain/clinic"
)

type visitRow struct {
	ID          int       `db:"id"`
	PetID       int       `db:"pet_id"`
	Date        time.Time `db:"visit_date"`
	Description string    `db:"description"`
}

func (r visitRow) toDomain() clinic.Visit {
	return clinic.Visit{ID: r.ID, PetID: r.PetID, Date: clinic.CalendarDate(r.Date), Description: r.Description}
}

func visitRecord(v clinic.Visit) goqu.Record {
	return goqu.Record{
		"pet_id":      v.PetID,
		"visit_date":  v.Date,
		"description": v.Description,
	}
}

type visitRepo struct {
	s *Store
}

func (r *visitRepo) selectVisits() *goqu.SelectDataset {
	return dialect.From(tableVisits).
		Select("id", "pet_id", "visit_date", "description").
		Order(goqu.C("id").Asc()).
		Prepared(true)
}

func (r *visitRepo) FindByID(ctx context.Context, id int) (clinic.Visit, error) {
	var row visitRow
	if err := r.s.selectOne(ctx, &row, r.selectVisits().Where(goqu.C("id").Eq(id))); err != nil {
		return clinic.Visit{}, wrapNotFound(err, "visit", id)
	}
	return row.toDomain(), nil
}

func (r *visitRepo) FindAll(ctx context.Context) ([]clinic.Visit, error) {
	return r.list(ctx, r.selectVisits())
}

func (r *visitRepo) FindByPetID(ctx context.Context, petID int) ([]clinic.Visit, error) {
	return r.list(ctx, r.selectVisits().Where(goqu.C("pet_id").Eq(petID)))
}

func (r *visitRepo) list(ctx context.Context, ds *goqu.SelectDataset) ([]clinic.Visit, error) {
	var rows []visitRow
	if err := r.s.selectAll(ctx, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]clinic.Visit, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *visitRepo) Save(ctx context.Context, v *clinic.Visit) error {
	if v.IsNew() {
		id, err := r.s.insertReturningID(ctx, dialect.Insert(tableVisits).
			Rows(visitRecord(*v)).
			Returning("id").
			Prepared(true))
		if err != nil {
			return err
		}
		v.ID = id
		return nil
	}
	err := r.s.exec(ctx, dialect.Update(tableVisits).
		Set(visitRecord(*v)).
		Where(goqu.C("id").Eq(v.ID)).
		Prepared(true))
	return wrapNotFound(err, "visit", v.ID)
}

func (r *visitRepo) Delete(ctx context.Context, v clinic.Visit) error {
	err := r.s.exec(ctx, dialect.Delete(tableVisits).
		Where(goqu.C("id").Eq(v.ID)).
		Prepared(true))
	return wrapNotFound(err, "visit", v.ID)
}
