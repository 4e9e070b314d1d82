// Package txscope define el alcance transaccional explícito que los servicios
// aplican alrededor de cada operación.
//
// Cada operación pública abre su propio scope. Si el context ya trae un scope
// del mismo storage (un orquestador externo o un test envolvió varias llamadas),
// la llamada interna se une a él y el modo del scope externo manda.
package txscope

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read_write"
	}
	return "read_only"
}

var (
	// ErrReadOnly se devuelve cuando se intenta escribir dentro de un scope de solo lectura.
	ErrReadOnly = errors.New("write attempted in read-only transaction scope")
)

// Manager lo implementa cada adapter de storage.
type Manager interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error
}

// Scope es el estado de una transacción activa. Tx es el handle propio del
// adapter (*sqlx.Tx, *gorm.DB, ...).
type Scope struct {
	ID   string
	Mode Mode
	Tx   any

	owner any
}

type ctxKey struct{}

// Begin registra un scope nuevo en el context. owner identifica al storage
// dueño de la transacción (normalmente el propio Manager).
func Begin(ctx context.Context, owner any, mode Mode, tx any) (context.Context, *Scope) {
	s := &Scope{
		ID:    uuid.NewString(),
		Mode:  mode,
		Tx:    tx,
		owner: owner,
	}
	return context.WithValue(ctx, ctxKey{}, s), s
}

// From devuelve el scope activo, sea del storage que sea.
func From(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Scope)
	return s, ok && s != nil
}

// Joined devuelve el scope activo solo si pertenece a owner.
func Joined(ctx context.Context, owner any) (*Scope, bool) {
	s, ok := From(ctx)
	if !ok || s.owner != owner {
		return nil, false
	}
	return s, true
}

// CheckWritable falla si el context trae un scope de solo lectura de owner.
func CheckWritable(ctx context.Context, owner any) error {
	if s, ok := Joined(ctx, owner); ok && s.Mode == ReadOnly {
		return ErrReadOnly
	}
	return nil
}

// Read ejecuta fn en un scope de solo lectura y devuelve su resultado.
func Read[T any](ctx context.Context, m Manager, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := m.ReadOnly(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Write ejecuta fn en un scope de lectura-escritura.
func Write(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	return m.ReadWrite(ctx, fn)
}
