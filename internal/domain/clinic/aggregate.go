package clinic

import (
	"context"
	"sort"
)

// Reglas de agregado: los hijos se derivan por consulta al repositorio,
// nunca desde una lista mantenida en el padre.

func lookupOf[T any](v T, err error) (Lookup[T], error) {
	if err != nil {
		if IsNotFound(err) {
			return Absent[T](), nil
		}
		return Absent[T](), err
	}
	return Found(v), nil
}

func assemblePet(ctx context.Context, visits VisitRepository, p Pet) (Pet, error) {
	vs, err := visits.FindByPetID(ctx, p.ID)
	if err != nil {
		return Pet{}, err
	}
	p.Visits = visitsInInsertionOrder(vs, p.ID)
	return p, nil
}

func assemblePets(ctx context.Context, visits VisitRepository, ps []Pet) ([]Pet, error) {
	out := make([]Pet, 0, len(ps))
	for _, p := range ps {
		full, err := assemblePet(ctx, visits, p)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, nil
}

func assembleOwner(ctx context.Context, pets PetRepository, visits VisitRepository, o Owner) (Owner, error) {
	ps, err := pets.FindByOwnerID(ctx, o.ID)
	if err != nil {
		return Owner{}, err
	}
	ps, err = assemblePets(ctx, visits, ps)
	if err != nil {
		return Owner{}, err
	}
	sortPets(ps)
	o.Pets = ps
	return o, nil
}

// visitsInInsertionOrder descarta visitas de otras mascotas y ordena por ID.
func visitsInInsertionOrder(vs []Visit, petID int) []Visit {
	out := make([]Visit, 0, len(vs))
	for _, v := range vs {
		if v.PetID == petID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// mustExist traduce un ErrNotFound de una referencia en un error de validación.
func mustExist(entity, field string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return invalid(entity, field, "does not exist")
	}
	return err
}
