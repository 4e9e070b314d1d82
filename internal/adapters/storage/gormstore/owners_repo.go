package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petclinic/internal/domain/clinic"
)

type ownerRepo struct {
	s *Store
}

func (r *ownerRepo) FindByID(ctx context.Context, id int) (clinic.Owner, error) {
	var rec ownerRecord
	if err := r.s.conn(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return clinic.Owner{}, wrapNotFound(classify(err), "owner", id)
	}
	return rec.toDomain(), nil
}

func (r *ownerRepo) FindAll(ctx context.Context) ([]clinic.Owner, error) {
	return r.list(r.s.conn(ctx))
}

func (r *ownerRepo) FindByLastName(ctx context.Context, lastName string) ([]clinic.Owner, error) {
	return r.list(r.s.conn(ctx).Where("last_name = ?", lastName))
}

func (r *ownerRepo) list(q *gorm.DB) ([]clinic.Owner, error) {
	var recs []ownerRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]clinic.Owner, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (r *ownerRepo) Save(ctx context.Context, o *clinic.Owner) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	if o.IsNew() {
		rec := ownerRecord{
			FirstName: o.FirstName,
			LastName:  o.LastName,
			Address:   o.Address,
			City:      o.City,
			Telephone: o.Telephone,
		}
		if err := r.s.conn(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
			return classify(err)
		}
		o.ID = rec.ID
		return nil
	}
	res := r.s.conn(ctx).Model(&ownerRecord{}).Where("id = ?", o.ID).Updates(ownerColumns(*o))
	return updated(res, "owner", o.ID)
}

// Delete borra en cascada visitas y mascotas del owner sin depender de las FKs.
func (r *ownerRepo) Delete(ctx context.Context, o clinic.Owner) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		db := r.s.conn(ctx)
		pets := db.Model(&petRecord{}).Select("id").Where("owner_id = ?", o.ID)
		if err := r.s.conn(ctx).Where("pet_id IN (?)", pets).Delete(&visitRecord{}).Error; err != nil {
			return classify(err)
		}
		if err := r.s.conn(ctx).Where("owner_id = ?", o.ID).Delete(&petRecord{}).Error; err != nil {
			return classify(err)
		}
		return updated(r.s.conn(ctx).Where("id = ?", o.ID).Delete(&ownerRecord{}), "owner", o.ID)
	})
}
