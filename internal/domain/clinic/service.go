package clinic

import (
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

// Services es el punto de entrada de las demás capas. Cada servicio envuelve
// su repositorio y aplica el scope transaccional en cada operación.
type Services struct {
	Owners      *OwnerService
	Pets        *PetService
	PetTypes    *PetTypeService
	Visits      *VisitService
	Vets        *VetService
	Specialties *SpecialtyService
}

func NewServices(repos Repositories, tx txscope.Manager, log logger.Logger) *Services {
	if log == nil {
		log = logger.NewNop()
	}
	return &Services{
		Owners:      NewOwnerService(repos, tx, log),
		Pets:        NewPetService(repos, tx, log),
		PetTypes:    NewPetTypeService(repos, tx, log),
		Visits:      NewVisitService(repos, tx, log),
		Vets:        NewVetService(repos, tx, log),
		Specialties: NewSpecialtyService(repos, tx, log),
	}
}
