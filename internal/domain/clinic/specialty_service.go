package clinic

import (
	"context"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

type SpecialtyService struct {
	specialties SpecialtyRepository
	tx          txscope.Manager
	log         logger.Logger
}

func NewSpecialtyService(repos Repositories, tx txscope.Manager, log logger.Logger) *SpecialtyService {
	return &SpecialtyService{
		specialties: repos.Specialties,
		tx:          tx,
		log:         log.With(map[string]any{"service": "specialties"}),
	}
}

func (s *SpecialtyService) FindSpecialtyByID(ctx context.Context, id int) (Lookup[Specialty], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (Lookup[Specialty], error) {
		return lookupOf(s.specialties.FindByID(ctx, id))
	})
}

func (s *SpecialtyService) FindAllSpecialties(ctx context.Context) ([]Specialty, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Specialty, error) {
		return s.specialties.FindAll(ctx)
	})
}

func (s *SpecialtyService) SaveSpecialty(ctx context.Context, sp *Specialty) error {
	if err := validateName("specialty", sp.Name); err != nil {
		return err
	}
	isNew := sp.IsNew()
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.specialties.Save(ctx, sp)
	})
	if err != nil {
		if isNew {
			sp.ID = 0
		}
		return err
	}
	s.log.Info("specialty saved", map[string]any{"specialty_id": sp.ID})
	return nil
}

// DeleteSpecialty: si algún vet la usa, storage decide (quita el vínculo).
func (s *SpecialtyService) DeleteSpecialty(ctx context.Context, sp Specialty) error {
	if err := requireIdentity("specialty", sp.ID); err != nil {
		return err
	}
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.specialties.Delete(ctx, sp)
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	s.log.Info("specialty deleted", map[string]any{"specialty_id": sp.ID})
	return nil
}
