package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petclinic/internal/domain/clinic"
)

type vetRepo struct {
	s *Store
}

func (r *vetRepo) query(ctx context.Context) *gorm.DB {
	return r.s.conn(ctx).Preload("Specialties", func(db *gorm.DB) *gorm.DB {
		return db.Order("specialties.id")
	})
}

func (r *vetRepo) FindByID(ctx context.Context, id int) (clinic.Vet, error) {
	var rec vetRecord
	if err := r.query(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return clinic.Vet{}, wrapNotFound(classify(err), "vet", id)
	}
	return rec.toDomain(), nil
}

func (r *vetRepo) FindAll(ctx context.Context) ([]clinic.Vet, error) {
	var recs []vetRecord
	if err := r.query(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]clinic.Vet, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// Save reemplaza todos los vínculos del vet en la misma transacción.
func (r *vetRepo) Save(ctx context.Context, v *clinic.Vet) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		id := v.ID
		if v.IsNew() {
			rec := vetRecord{FirstName: v.FirstName, LastName: v.LastName}
			if err := r.s.conn(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
				return classify(err)
			}
			id = rec.ID
		} else {
			res := r.s.conn(ctx).Model(&vetRecord{}).Where("id = ?", v.ID).Updates(map[string]any{
				"first_name": v.FirstName,
				"last_name":  v.LastName,
			})
			if err := updated(res, "vet", v.ID); err != nil {
				return err
			}
			if err := r.s.conn(ctx).Where("vet_id = ?", v.ID).Delete(&vetSpecialtyRecord{}).Error; err != nil {
				return classify(err)
			}
		}

		if len(v.Specialties) > 0 {
			links := make([]vetSpecialtyRecord, 0, len(v.Specialties))
			seen := map[int]struct{}{}
			for _, sp := range v.Specialties {
				if _, dup := seen[sp.ID]; dup {
					continue
				}
				seen[sp.ID] = struct{}{}
				links = append(links, vetSpecialtyRecord{VetID: id, SpecialtyID: sp.ID})
			}
			if err := r.s.conn(ctx).Create(&links).Error; err != nil {
				return classify(err)
			}
		}

		v.ID = id
		return nil
	})
}

func (r *vetRepo) Delete(ctx context.Context, v clinic.Vet) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		if err := r.s.conn(ctx).Where("vet_id = ?", v.ID).Delete(&vetSpecialtyRecord{}).Error; err != nil {
			return classify(err)
		}
		return updated(r.s.conn(ctx).Where("id = ?", v.ID).Delete(&vetRecord{}), "vet", v.ID)
	})
}
