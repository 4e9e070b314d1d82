package postgres

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/domain/clinic"
)

type petRow struct {
	ID        int          `db:"id"`
	Name      string       `db:"name"`
	BirthDate sql.NullTime `db:"birth_date"`
	OwnerID   int          `db:"owner_id"`
	TypeID    int          `db:"type_id"`
	TypeName  string       `db:"type_name"`
}

func (r petRow) toDomain() clinic.Pet {
	p := clinic.Pet{
		ID:      r.ID,
		Name:    r.Name,
		OwnerID: r.OwnerID,
		Type:    clinic.PetType{ID: r.TypeID, Name: r.TypeName},
	}
	// birth_date es DATE; pgx lo entrega como medianoche UTC
	if r.BirthDate.Valid {
		p.BirthDate = clinic.CalendarDate(r.BirthDate.Time)
	}
	return p
}

func petRecord(p clinic.Pet) goqu.Record {
	rec := goqu.Record{
		"name":       p.Name,
		"birth_date": nil,
		"type_id":    p.Type.ID,
		"owner_id":   p.OwnerID,
	}
	if !p.BirthDate.IsZero() {
		rec["birth_date"] = p.BirthDate
	}
	return rec
}

type petRepo struct {
	s *Store
}

func (r *petRepo) selectPets() *goqu.SelectDataset {
	return dialect.From(goqu.T(tablePets).As("p")).
		Join(goqu.T(tableTypes).As("t"), goqu.On(goqu.I("t.id").Eq(goqu.I("p.type_id")))).
		Select(
			goqu.I("p.id"),
			goqu.I("p.name"),
			goqu.I("p.birth_date"),
			goqu.I("p.owner_id"),
			goqu.I("t.id").As("type_id"),
			goqu.I("t.name").As("type_name"),
		).
		Order(goqu.I("p.id").Asc()).
		Prepared(true)
}

func (r *petRepo) FindByID(ctx context.Context, id int) (clinic.Pet, error) {
	var row petRow
	if err := r.s.selectOne(ctx, &row, r.selectPets().Where(goqu.I("p.id").Eq(id))); err != nil {
		return clinic.Pet{}, wrapNotFound(err, "pet", id)
	}
	return row.toDomain(), nil
}

func (r *petRepo) FindAll(ctx context.Context) ([]clinic.Pet, error) {
	return r.list(ctx, r.selectPets())
}

func (r *petRepo) FindByOwnerID(ctx context.Context, ownerID int) ([]clinic.Pet, error) {
	return r.list(ctx, r.selectPets().Where(goqu.I("p.owner_id").Eq(ownerID)))
}

func (r *petRepo) list(ctx context.Context, ds *goqu.SelectDataset) ([]clinic.Pet, error) {
	var rows []petRow
	if err := r.s.selectAll(ctx, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]clinic.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *petRepo) FindPetTypes(ctx context.Context) ([]clinic.PetType, error) {
	used := dialect.From(tablePets).Select("type_id")

	var rows []petTypeRow
	err := r.s.selectAll(ctx, &rows, dialect.From(tableTypes).
		Select("id", "name").
		Where(goqu.C("id").In(used)).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	return petTypesToDomain(rows), nil
}

func (r *petRepo) Save(ctx context.Context, p *clinic.Pet) error {
	if p.IsNew() {
		id, err := r.s.insertReturningID(ctx, dialect.Insert(tablePets).
			Rows(petRecord(*p)).
			Returning("id").
			Prepared(true))
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	}

	err := r.s.exec(ctx, dialect.Update(tablePets).
		Set(petRecord(*p)).
		Where(goqu.C("id").Eq(p.ID)).
		Prepared(true))
	return wrapNotFound(err, "pet", p.ID)
}

func (r *petRepo) Delete(ctx context.Context, p clinic.Pet) error {
	err := r.s.exec(ctx, dialect.Delete(tablePets).
		Where(goqu.C("id").Eq(p.ID)).
		Prepared(true))
	return wrapNotFound(err, "pet", p.ID)
}
