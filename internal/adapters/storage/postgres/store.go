// Package postgres implementa el storage sobre PostgreSQL: sqlx con el driver
// pgx para ejecutar y goqu para armar el SQL. Cada scope es una transacción
// real (BEGIN READ ONLY / READ WRITE) que viaja en el context.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/txscope"
)

var dialect = goqu.Dialect("postgres")

const (
	tableOwners         = "owners"
	tablePets           = "pets"
	tableTypes          = "types"
	tableVisits         = "visits"
	tableVets           = "vets"
	tableSpecialties    = "specialties"
	tableVetSpecialties = "vet_specialties"
	tableUsers          = "users"
	tableRoles          = "roles"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB { return s.db }

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
	return s.run(ctx, txscope.ReadOnly, fn)
}

func (s *Store) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, txscope.ReadWrite, fn)
}

func (s *Store) run(ctx context.Context, mode txscope.Mode, fn func(ctx context.Context) error) error {
	if _, ok := txscope.Joined(ctx, s); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: mode == txscope.ReadOnly})
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	ctx, _ = txscope.Begin(ctx, s, mode, tx)
	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return classify(tx.Commit())
}

// conn devuelve la transacción del scope activo o el pool.
func (s *Store) conn(ctx context.Context) sqlx.ExtContext {
	if sc, ok := txscope.Joined(ctx, s); ok {
		if tx, ok := sc.Tx.(*sqlx.Tx); ok {
			return tx
		}
	}
	return s.db
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func (s *Store) selectAll(ctx context.Context, dest any, b sqlBuilder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return err
	}
	return classify(sqlx.SelectContext(ctx, s.conn(ctx), dest, query, args...))
}

// selectOne devuelve clinic.ErrNotFound si no hay fila.
func (s *Store) selectOne(ctx context.Context, dest any, b sqlBuilder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return err
	}
	err = sqlx.GetContext(ctx, s.conn(ctx), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return clinic.ErrNotFound
	}
	return classify(err)
}

func (s *Store) insertReturningID(ctx context.Context, b sqlBuilder) (int, error) {
	if err := txscope.CheckWritable(ctx, s); err != nil {
		return 0, err
	}
	var id int
	if err := s.selectOne(ctx, &id, b); err != nil {
		return 0, err
	}
	return id, nil
}

// exec devuelve clinic.ErrNotFound si la sentencia no tocó ninguna fila.
func (s *Store) exec(ctx context.Context, b sqlBuilder) error {
	n, err := s.execCount(ctx, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (s *Store) execCount(ctx context.Context, b sqlBuilder) (int64, error) {
	if err := txscope.CheckWritable(ctx, s); err != nil {
		return 0, err
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return 0, err
	}
	res, err := s.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

// classify traduce los códigos SQLSTATE que el dominio distingue.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505", "23503": // unique_violation, foreign_key_violation
			return errors.Join(clinic.ErrConstraint, err)
		case "25006": // read_only_sql_transaction
			return errors.Join(txscope.ErrReadOnly, err)
		}
	}
	return err
}

func notFound(entity string, id any) error {
	return fmt.Errorf("postgres: %s %v: %w", entity, id, clinic.ErrNotFound)
}

// wrapNotFound agrega contexto solo cuando la fila no existe.
func wrapNotFound(err error, entity string, id any) error {
	if errors.Is(err, clinic.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}
