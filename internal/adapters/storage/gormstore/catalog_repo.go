package gormstore

import (
	"context"

	"petclinic/internal/domain/clinic"
)

func petTypesToDomain(recs []petTypeRecord) []clinic.PetType {
	out := make([]clinic.PetType, 0, len(recs))
	for _, rec := range recs {
		out = append(out, clinic.PetType{ID: rec.ID, Name: rec.Name})
	}
	return out
}

type petTypeRepo struct {
	s *Store
}

func (r *petTypeRepo) FindByID(ctx context.Context, id int) (clinic.PetType, error) {
	var rec petTypeRecord
	if err := r.s.conn(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return clinic.PetType{}, wrapNotFound(classify(err), "pet type", id)
	}
	return clinic.PetType{ID: rec.ID, Name: rec.Name}, nil
}

func (r *petTypeRepo) FindAll(ctx context.Context) ([]clinic.PetType, error) {
	var recs []petTypeRecord
	if err := r.s.conn(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	return petTypesToDomain(recs), nil
}

func (r *petTypeRepo) Save(ctx context.Context, t *clinic.PetType) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	if t.IsNew() {
		rec := petTypeRecord{Name: t.Name}
		if err := r.s.conn(ctx).Create(&rec).Error; err != nil {
			return classify(err)
		}
		t.ID = rec.ID
		return nil
	}
	res := r.s.conn(ctx).Model(&petTypeRecord{}).Where("id = ?", t.ID).Update("name", t.Name)
	return updated(res, "pet type", t.ID)
}

// Delete arrastra las mascotas del tipo y sus visitas.
func (r *petTypeRepo) Delete(ctx context.Context, t clinic.PetType) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		pets := r.s.conn(ctx).Model(&petRecord{}).Select("id").Where("type_id = ?", t.ID)
		if err := r.s.conn(ctx).Where("pet_id IN (?)", pets).Delete(&visitRecord{}).Error; err != nil {
			return classify(err)
		}
		if err := r.s.conn(ctx).Where("type_id = ?", t.ID).Delete(&petRecord{}).Error; err != nil {
			return classify(err)
		}
		return updated(r.s.conn(ctx).Where("id = ?", t.ID).Delete(&petTypeRecord{}), "pet type", t.ID)
	})
}

type specialtyRepo struct {
	s *Store
}

func (r *specialtyRepo) FindByID(ctx context.Context, id int) (clinic.Specialty, error) {
	var rec specialtyRecord
	if err := r.s.conn(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return clinic.Specialty{}, wrapNotFound(classify(err), "specialty", id)
	}
	return clinic.Specialty{ID: rec.ID, Name: rec.Name}, nil
}

func (r *specialtyRepo) FindAll(ctx context.Context) ([]clinic.Specialty, error) {
	var recs []specialtyRecord
	if err := r.s.conn(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]clinic.Specialty, 0, len(recs))
	for _, rec := range recs {
		out = append(out, clinic.Specialty{ID: rec.ID, Name: rec.Name})
	}
	return out, nil
}

func (r *specialtyRepo) Save(ctx context.Context, sp *clinic.Specialty) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	if sp.IsNew() {
		rec := specialtyRecord{Name: sp.Name}
		if err := r.s.conn(ctx).Create(&rec).Error; err != nil {
			return classify(err)
		}
		sp.ID = rec.ID
		return nil
	}
	res := r.s.conn(ctx).Model(&specialtyRecord{}).Where("id = ?", sp.ID).Update("name", sp.Name)
	return updated(res, "specialty", sp.ID)
}

// Delete quita los vínculos con vets antes de borrar.
func (r *specialtyRepo) Delete(ctx context.Context, sp clinic.Specialty) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		if err := r.s.conn(ctx).Where("specialty_id = ?", sp.ID).Delete(&vetSpecialtyRecord{}).Error; err != nil {
			return classify(err)
		}
		return updated(r.s.conn(ctx).Where("id = ?", sp.ID).Delete(&specialtyRecord{}), "specialty", sp.ID)
	})
}
