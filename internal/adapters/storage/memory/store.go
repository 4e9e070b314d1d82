// Package memory implementa el storage completo en memoria. Un solo Store
// guarda todas las tablas bajo un RWMutex; un scope ReadWrite toma el lock
// exclusivo, saca un snapshot y lo restaura si fn falla o entra en pánico.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/txscope"
)

type petRow struct {
	clinic.Pet
	typeID int
}

type tables struct {
	owners      map[int]clinic.Owner
	pets        map[int]petRow
	petTypes    map[int]clinic.PetType
	visits      map[int]clinic.Visit
	vets        map[int]clinic.Vet
	specialties map[int]clinic.Specialty
	// vetSpecialties: vetID -> specialtyID
	vetSpecialties map[int]map[int]struct{}
	users          map[string]users.User

	seq map[string]int
}

func newTables() tables {
	return tables{
		owners:         map[int]clinic.Owner{},
		pets:           map[int]petRow{},
		petTypes:       map[int]clinic.PetType{},
		visits:         map[int]clinic.Visit{},
		vets:           map[int]clinic.Vet{},
		specialties:    map[int]clinic.Specialty{},
		vetSpecialties: map[int]map[int]struct{}{},
		users:          map[string]users.User{},
		seq:            map[string]int{},
	}
}

func (t tables) clone() tables {
	links := make(map[int]map[int]struct{}, len(t.vetSpecialties))
	for vetID, set := range t.vetSpecialties {
		links[vetID] = maps.Clone(set)
	}
	return tables{
		owners:         maps.Clone(t.owners),
		pets:           maps.Clone(t.pets),
		petTypes:       maps.Clone(t.petTypes),
		visits:         maps.Clone(t.visits),
		vets:           maps.Clone(t.vets),
		specialties:    maps.Clone(t.specialties),
		vetSpecialties: links,
		users:          maps.Clone(t.users),
		seq:            maps.Clone(t.seq),
	}
}

// next devuelve el siguiente id de la tabla (auto-increment).
func (t tables) next(table string) int {
	t.seq[table]++
	return t.seq[table]
}

// bump deja el contador por encima de un id explícito (seed).
func (t tables) bump(table string, id int) {
	if id > t.seq[table] {
		t.seq[table] = id
	}
}

type Store struct {
	mu sync.RWMutex
	t  tables
}

func NewStore() *Store {
	return &Store{t: newTables()}
}

// Repositories devuelve los repositorios de la clínica sobre este store.
func (s *Store) Repositories() clinic.Repositories {
	return clinic.Repositories{
		Owners:      &ownerRepo{s: s},
		Pets:        &petRepo{s: s},
		PetTypes:    &petTypeRepo{s: s},
		Visits:      &visitRepo{s: s},
		Vets:        &vetRepo{s: s},
		Specialties: &specialtyRepo{s: s},
	}
}

func (s *Store) Users() users.Repository {
	return &userRepo{s: s}
}

func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txscope.Joined(ctx, s); ok {
		return fn(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, _ = txscope.Begin(ctx, s, txscope.ReadOnly, nil)
	return fn(ctx)
}

func (s *Store) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txscope.Joined(ctx, s); ok {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	defer func() {
		if r := recover(); r != nil {
			s.t = snapshot
			panic(r)
		}
		if err != nil {
			s.t = snapshot
		}
	}()

	ctx, _ = txscope.Begin(ctx, s, txscope.ReadWrite, nil)
	return fn(ctx)
}

// read corre fn con el lock compartido, salvo que ya estemos dentro de un scope propio.
func (s *Store) read(ctx context.Context, fn func(t tables) error) error {
	if _, ok := txscope.Joined(ctx, s); ok {
		return fn(s.t)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.t)
}

// write es atómica aun fuera de un scope: si fn falla se descarta lo que hizo.
func (s *Store) write(ctx context.Context, fn func(t tables) error) error {
	if sc, ok := txscope.Joined(ctx, s); ok {
		if sc.Mode == txscope.ReadOnly {
			return txscope.ErrReadOnly
		}
		return fn(s.t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	if err := fn(s.t); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

func notFound(entity string, id any) error {
	return fmt.Errorf("memory: %s %v: %w", entity, id, clinic.ErrNotFound)
}

func constraint(format string, args ...any) error {
	return fmt.Errorf("memory: %s: %w", fmt.Sprintf(format, args...), clinic.ErrConstraint)
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
