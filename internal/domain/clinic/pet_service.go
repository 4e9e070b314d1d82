package clinic

import (
	"context"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

type PetService struct {
	pets     PetRepository
	owners   OwnerRepository
	petTypes PetTypeRepository
	visits   VisitRepository
	tx       txscope.Manager
	log      logger.Logger
}

func NewPetService(repos Repositories, tx txscope.Manager, log logger.Logger) *PetService {
	return &PetService{
		pets:     repos.Pets,
		owners:   repos.Owners,
		petTypes: repos.PetTypes,
		visits:   repos.Visits,
		tx:       tx,
		log:      log.With(map[string]any{"service": "pets"}),
	}
}

func (s *PetService) FindPetByID(ctx context.Context, id int) (Lookup[Pet], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (Lookup[Pet], error) {
		l, err := lookupOf(s.pets.FindByID(ctx, id))
		if err != nil || !l.Present() {
			return l, err
		}
		p, err := assemblePet(ctx, s.visits, l.OrZero())
		if err != nil {
			return Absent[Pet](), err
		}
		return Found(p), nil
	})
}

func (s *PetService) FindAllPets(ctx context.Context) ([]Pet, error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) ([]Pet, error) {
		items, err := s.pets.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return assemblePets(ctx, s.visits, items)
	})
}

// SavePet guarda solo la mascota: ni el owner ni las visitas.
// El owner y el tipo referenciados tienen que existir.
func (s *PetService) SavePet(ctx context.Context, p *Pet) error {
	if err := validatePet(*p); err != nil {
		return err
	}
	isNew := p.IsNew()
	prev := *p
	p.BirthDate = CalendarDate(p.BirthDate)
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		if _, err := s.owners.FindByID(ctx, p.OwnerID); err != nil {
			return mustExist("pet", "owner", err)
		}
		t, err := s.petTypes.FindByID(ctx, p.Type.ID)
		if err != nil {
			return mustExist("pet", "type", err)
		}
		p.Type = t
		return s.pets.Save(ctx, p)
	})
	if err != nil {
		*p = prev
		return err
	}
	s.log.Info("pet saved", map[string]any{"pet_id": p.ID, "owner_id": p.OwnerID, "created": isNew})
	return nil
}

// DeletePet borra la mascota; storage borra en cascada sus visitas.
func (s *PetService) DeletePet(ctx context.Context, p Pet) error {
	if err := requireIdentity("pet", p.ID); err != nil {
		return err
	}
	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.pets.Delete(ctx, p)
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	s.log.Info("pet deleted", map[string]any{"pet_id": p.ID})
	return nil
}
