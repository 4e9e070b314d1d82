package clinic

import (
	"context"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

// VetService garantiza que las especialidades de un vet salgan deduplicadas y
// ordenadas por nombre, sin importar el orden que devuelva storage.
type VetService struct {
	vets        VetRepository
	specialties SpecialtyRepository
	tx          txscope.Manager
	log         logger.Logger
}

func NewVetService(repos Repositories, tx txscope.Manager, log logger.Logger) *VetService {
	return &VetService{
		vets:        repos.Vets,
		specialties: repos.Specialties,
		tx:          tx,
		log:         log.With(map[string]any{"service": "vets"}),
	}
}

func (s *VetService) FindVetByID(ctx context.Context, id int) (Lookup[Vet], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (Lookup[Vet], error) {
		l, err := lookupOf(s.vets.FindByID(ctx, id))
		if err != nil || !l.Present() {
			return l, err
		}
		v := l.OrZero()
		v.Specialties = normalizeSpecialties(v.Specialties)
		return Found(v), nil
	})
}

func (s *VetService) FindAllVets(ctx context.Context) ([]Vet, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Vet, error) {
		items, err := s.vets.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].Specialties = normalizeSpecialties(items[i].Specialties)
		}
		return items, nil
	})
}

// SaveVet colapsa especialidades repetidas; todas tienen que existir.
func (s *VetService) SaveVet(ctx context.Context, v *Vet) error {
	if err := validateVet(*v); err != nil {
		return err
	}
	isNew := v.IsNew()
	prev := *v
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		resolved := make([]Specialty, 0, len(v.Specialties))
		for _, sp := range v.Specialties {
			found, err := s.specialties.FindByID(ctx, sp.ID)
			if err != nil {
				return mustExist("vet", "specialties", err)
			}
			resolved = append(resolved, found)
		}
		v.Specialties = normalizeSpecialties(resolved)
		return s.vets.Save(ctx, v)
	})
	if err != nil {
		*v = prev
		return err
	}
	s.log.Info("vet saved", map[string]any{"vet_id": v.ID, "specialties": v.NrOfSpecialties(), "created": isNew})
	return nil
}

// DeleteVet borra el vet y sus vínculos con especialidades.
func (s *VetService) DeleteVet(ctx context.Context, v Vet) error {
	if err := requireIdentity("vet", v.ID); err != nil {
		return err
	}
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.vets.Delete(ctx, v)
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	s.log.Info("vet deleted", map[string]any{"vet_id": v.ID})
	return nil
}
