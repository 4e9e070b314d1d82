package clinic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound lo devuelven los repositorios cuando no existe la fila.
	// Los servicios lo convierten en un Lookup ausente.
	ErrNotFound = errors.New("not found")

	// ErrInvalid agrupa todos los ValidationError.
	ErrInvalid = errors.New("invalid input")

	// ErrConstraint marca violaciones de unicidad / FK reportadas por storage.
	ErrConstraint = errors.New("constraint violation")
)

// ValidationError se reporta antes de cualquier escritura.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(entity, field, reason string) error {
	return &ValidationError{Entity: entity, Field: field, Reason: reason}
}

// IsNotFound reconoce la ausencia "genuina" (no hay fila). Cualquier otro
// error de storage se propaga tal cual.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
