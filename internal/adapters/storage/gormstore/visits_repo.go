package gormstore

import (
	"context"

	"gorm.io/gorm"

	"petclinic/internal/domain/clinic"
)

type visitRepo struct {
	s *Store
}

func (r *visitRepo) FindByID(ctx context.Context, id int) (clinic.Visit, error) {
	var rec visitRecord
	if err := r.s.conn(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return clinic.Visit{}, wrapNotFound(classify(err), "visit", id)
	}
	return rec.toDomain(), nil
}

func (r *visitRepo) FindAll(ctx context.Context) ([]clinic.Visit, error) {
	return r.list(r.s.conn(ctx))
}

func (r *visitRepo) FindByPetID(ctx context.Context, petID int) ([]clinic.Visit, error) {
	return r.list(r.s.conn(ctx).Where("pet_id = ?", petID))
}

func (r *visitRepo) list(q *gorm.DB) ([]clinic.Visit, error) {
	var recs []visitRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]clinic.Visit, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (r *visitRepo) Save(ctx context.Context, v *clinic.Visit) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	if v.IsNew() {
		rec := visitRecord{PetID: v.PetID, Date: v.Date, Description: v.Description}
		if err := r.s.conn(ctx).Create(&rec).Error; err != nil {
			return classify(err)
		}
		v.ID = rec.ID
		return nil
	}
	res := r.s.conn(ctx).Model(&visitRecord{}).Where("id = ?", v.ID).Updates(map[string]any{
		"pet_id":      v.PetID,
		"visit_date":  v.Date,
		"description": v.Description,
	})
	return updated(res, "visit", v.ID)
}

func (r *visitRepo) Delete(ctx context.Context, v clinic.Visit) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return updated(r.s.conn(ctx).Where("id = ?", v.ID).Delete(&visitRecord{}), "visit", v.ID)
}
