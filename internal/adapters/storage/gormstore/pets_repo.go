package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petclinic/internal/domain/clinic"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) query(ctx context.Context) *gorm.DB {
	return r.s.conn(ctx).Joins("Type").Order("pets.id")
}

func (r *petRepo) FindByID(ctx context.Context, id int) (clinic.Pet, error) {
	var rec petRecord
	if err := r.query(ctx).Where("pets.id = ?", id).Take(&rec).Error; err != nil {
		return clinic.Pet{}, wrapNotFound(classify(err), "pet", id)
	}
	return rec.toDomain(), nil
}

func (r *petRepo) FindAll(ctx context.Context) ([]clinic.Pet, error) {
	return r.list(r.query(ctx))
}

func (r *petRepo) FindByOwnerID(ctx context.Context, ownerID int) ([]clinic.Pet, error) {
	return r.list(r.query(ctx).Where("pets.owner_id = ?", ownerID))
}

func (r *petRepo) list(q *gorm.DB) ([]clinic.Pet, error) {
	var recs []petRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]clinic.Pet, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (r *petRepo) FindPetTypes(ctx context.Context) ([]clinic.PetType, error) {
	used := r.s.conn(ctx).Model(&petRecord{}).Select("type_id")

	var recs []petTypeRecord
	if err := r.s.conn(ctx).Where("id IN (?)", used).Order("name").Order("id").Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	return petTypesToDomain(recs), nil
}

func (r *petRepo) Save(ctx context.Context, p *clinic.Pet) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	if p.IsNew() {
		rec := newPetRecord(*p)
		if err := r.s.conn(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
			return classify(err)
		}
		p.ID = rec.ID
		return nil
	}
	res := r.s.conn(ctx).Model(&petRecord{}).Where("id = ?", p.ID).Updates(petColumns(*p))
	return updated(res, "pet", p.ID)
}

func (r *petRepo) Delete(ctx context.Context, p clinic.Pet) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		if err := r.s.conn(ctx).Where("pet_id = ?", p.ID).Delete(&visitRecord{}).Error; err != nil {
			return classify(err)
		}
		return updated(r.s.conn(ctx).Where("id = ?", p.ID).Delete(&petRecord{}), "pet", p.ID)
	})
}
