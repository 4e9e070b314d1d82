package clinic

import (
	"context"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

type VisitService struct {
	visits VisitRepository
	pets   PetRepository
	tx     txscope.Manager
	log    logger.Logger
}

func NewVisitService(repos Repositories, tx txscope.Manager, log logger.Logger) *VisitService {
	return &VisitService{
		visits: repos.Visits,
		pets:   repos.Pets,
		tx:     tx,
		log:    log.With(map[string]any{"service": "visits"}),
	}
}

// FindVisitsByPetID devuelve las visitas de la mascota en orden de inserción.
func (s *VisitService) FindVisitsByPetID(ctx context.Context, petID int) ([]Visit, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Visit, error) {
		vs, err := s.visits.FindByPetID(ctx, petID)
		if err != nil {
			return nil, err
		}
		return visitsInInsertionOrder(vs, petID), nil
	})
}

func (s *VisitService) FindVisitByID(ctx context.Context, id int) (Lookup[Visit], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (Lookup[Visit], error) {
		return lookupOf(s.visits.FindByID(ctx, id))
	})
}

func (s *VisitService) FindAllVisits(ctx context.Context) ([]Visit, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Visit, error) {
		return s.visits.FindAll(ctx)
	})
}

// SaveVisit valida descripción, fecha y que la mascota exista antes de escribir.
// La fecha nunca se completa aquí: la pone NewVisit al construir.
func (s *VisitService) SaveVisit(ctx context.Context, v *Visit) error {
	if err := validateVisit(*v); err != nil {
		return err
	}
	isNew := v.IsNew()
	prev := *v
	v.Date = CalendarDate(v.Date)
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		if _, err := s.pets.FindByID(ctx, v.PetID); err != nil {
			return mustExist("visit", "pet", err)
		}
		return s.visits.Save(ctx, v)
	})
	if err != nil {
		*v = prev
		return err
	}
	s.log.Info("visit saved", map[string]any{"visit_id": v.ID, "pet_id": v.PetID, "created": isNew})
	return nil
}

func (s *VisitService) DeleteVisit(ctx context.Context, v Visit) error {
	if err := requireIdentity("visit", v.ID); err != nil {
		return err
	}
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.visits.Delete(ctx, v)
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	s.log.Info("visit deleted", map[string]any{"visit_id": v.ID})
	return nil
}
