package clinic

import (
	"context"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

type OwnerService struct {
	owners OwnerRepository
	pets   PetRepository
	visits VisitRepository
	tx     txscope.Manager
	log    logger.Logger
}

func NewOwnerService(repos Repositories, tx txscope.Manager, log logger.Logger) *OwnerService {
	return &OwnerService{
		owners: repos.Owners,
		pets:   repos.Pets,
		visits: repos.Visits,
		tx:     tx,
		log:    log.With(map[string]any{"service": "owners"}),
	}
}

// FindOwnerByID devuelve el owner con sus mascotas (y las visitas de cada una).
func (s *OwnerService) FindOwnerByID(ctx context.Context, id int) (Lookup[Owner], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (Lookup[Owner], error) {
		l, err := lookupOf(s.owners.FindByID(ctx, id))
		if err != nil || !l.Present() {
			return l, err
		}
		o, err := assembleOwner(ctx, s.pets, s.visits, l.OrZero())
		if err != nil {
			return Absent[Owner](), err
		}
		return Found(o), nil
	})
}

// FindAllOwners devuelve todos los owners ordenados por ID.
func (s *OwnerService) FindAllOwners(ctx context.Context) ([]Owner, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Owner, error) {
		items, err := s.owners.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return s.assembleAll(ctx, items)
	})
}

// FindOwnerByLastName compara por igualdad exacta (case-sensitive).
func (s *OwnerService) FindOwnerByLastName(ctx context.Context, lastName string) ([]Owner, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Owner, error) {
		items, err := s.owners.FindByLastName(ctx, lastName)
		if err != nil {
			return nil, err
		}
		return s.assembleAll(ctx, items)
	})
}

// SaveOwner inserta o actualiza. Las mascotas del owner no se guardan aquí.
func (s *OwnerService) SaveOwner(ctx context.Context, o *Owner) error {
	if err := validateOwner(*o); err != nil {
		return err
	}
	isNew := o.IsNew()
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.owners.Save(ctx, o)
	})
	if err != nil {
		if isNew {
			o.ID = 0
		}
		return err
	}
	s.log.Info("owner saved", map[string]any{"owner_id": o.ID, "created": isNew})
	return nil
}

// DeleteOwner borra el owner; storage borra en cascada sus mascotas y visitas.
func (s *OwnerService) DeleteOwner(ctx context.Context, o Owner) error {
	if err := requireIdentity("owner", o.ID); err != nil {
		return err
	}
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.owners.Delete(ctx, o)
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	s.log.Info("owner deleted", map[string]any{"owner_id": o.ID})
	return nil
}

func (s *OwnerService) assembleAll(ctx context.Context, items []Owner) ([]Owner, error) {
	out := make([]Owner, 0, len(items))
	for _, o := range items {
		full, err := assembleOwner(ctx, s.pets, s.visits, o)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, nil
}
