package clinic

import (
	"context"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

// PetTypeService además lee el repositorio de mascotas para FindPetTypes
// (lectura cruzada, sin efectos).
type PetTypeService struct {
	petTypes PetTypeRepository
	pets     PetRepository
	tx       txscope.Manager
	log      logger.Logger
}

func NewPetTypeService(repos Repositories, tx txscope.Manager, log logger.Logger) *PetTypeService {
	return &PetTypeService{
		petTypes: repos.PetTypes,
		pets:     repos.Pets,
		tx:       tx,
		log:      log.With(map[string]any{"service": "pettypes"}),
	}
}

func (s *PetTypeService) FindPetTypeByID(ctx context.Context, id int) (Lookup[PetType], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (Lookup[PetType], error) {
		return lookupOf(s.petTypes.FindByID(ctx, id))
	})
}

// FindAllPetTypes incluye los tipos sin mascotas.
func (s *PetTypeService) FindAllPetTypes(ctx context.Context) ([]PetType, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]PetType, error) {
		return s.petTypes.FindAll(ctx)
	})
}

// FindPetTypes devuelve solo los tipos usados por al menos una mascota.
func (s *PetTypeService) FindPetTypes(ctx context.Context) ([]PetType, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]PetType, error) {
		return s.pets.FindPetTypes(ctx)
	})
}

func (s *PetTypeService) SavePetType(ctx context.Context, t *PetType) error {
	if err := validateName("pet_type", t.Name); err != nil {
		return err
	}
	isNew := t.IsNew()
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.petTypes.Save(ctx, t)
	})
	if err != nil {
		if isNew {
			t.ID = 0
		}
		return err
	}
	s.log.Info("pet type saved", map[string]any{"pet_type_id": t.ID})
	return nil
}

// DeletePetType: la integridad referencial (cascada o rechazo) la decide storage.
func (s *PetTypeService) DeletePetType(ctx context.Context, t PetType) error {
	if err := requireIdentity("pet_type", t.ID); err != nil {
		return err
	}
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.petTypes.Delete(ctx, t)
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	s.log.Info("pet type deleted", map[string]any{"pet_type_id": t.ID})
	return nil
}
