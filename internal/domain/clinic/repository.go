package clinic

import "context"

// Contratos de persistencia. FindByID devuelve ErrNotFound (puede venir envuelto)
// cuando no existe la fila. Save asigna el ID en el valor recibido si era nuevo;
// si el ID no existe devuelve ErrNotFound.

type OwnerRepository interface {
	FindByID(ctx context.Context, id int) (Owner, error)
	FindAll(ctx context.Context) ([]Owner, error)
	FindByLastName(ctx context.Context, lastName string) ([]Owner, error)
	Save(ctx context.Context, o *Owner) error
	Delete(ctx context.Context, o Owner) error
}

type PetRepository interface {
	FindByID(ctx context.Context, id int) (Pet, error)
	FindAll(ctx context.Context) ([]Pet, error)
	FindByOwnerID(ctx context.Context, ownerID int) ([]Pet, error)
	// FindPetTypes devuelve los tipos usados por al menos una mascota, ordenados por nombre.
	FindPetTypes(ctx context.Context) ([]PetType, error)
	Save(ctx context.Context, p *Pet) error
	Delete(ctx context.Context, p Pet) error
}

type PetTypeRepository interface {
	FindByID(ctx context.Context, id int) (PetType, error)
	FindAll(ctx context.Context) ([]PetType, error)
	Save(ctx context.Context, t *PetType) error
	Delete(ctx context.Context, t PetType) error
}

type VisitRepository interface {
	FindByID(ctx context.Context, id int) (Visit, error)
	FindAll(ctx context.Context) ([]Visit, error)
	FindByPetID(ctx context.Context, petID int) ([]Visit, error)
	Save(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, v Visit) error
}

type VetRepository interface {
	FindByID(ctx context.Context, id int) (Vet, error)
	FindAll(ctx context.Context) ([]Vet, error)
	Save(ctx context.Context, v *Vet) error
	Delete(ctx context.Context, v Vet) error
}

type SpecialtyRepository interface {
	FindByID(ctx context.Context, id int) (Specialty, error)
	FindAll(ctx context.Context) ([]Specialty, error)
	Save(ctx context.Context, s *Specialty) error
	Delete(ctx context.Context, s Specialty) error
}

// Repositories agrupa los contratos que implementa cada adapter de storage.
type Repositories struct {
	Owners      OwnerRepository
	Pets        PetRepository
	PetTypes    PetTypeRepository
	Visits      VisitRepository
	Vets        VetRepository
	Specialties SpecialtyRepository
}
