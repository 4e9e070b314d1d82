// Package gormstore implementa el storage con gorm, sobre PostgreSQL o SQLite.
// El scope transaccional es una db.Transaction cuyo *gorm.DB viaja en el context.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Open abre la base con el dialecto pedido. En SQLite se fuerza una sola
// conexión (las bases en memoria son por conexión) y se activan las FKs.
func Open(dialect, dsn string, log logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore: unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("gormstore: enable foreign keys: %w", err)
		}
	}
	return db, nil
}

type Store struct {
	db      *gorm.DB
	dialect string
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, dialect: db.Dialector.Name()}
}

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

// Migrate crea o ajusta las tablas con AutoMigrate.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.SetupJoinTable(&vetRecord{}, "Specialties", &vetSpecialtyRecord{}); err != nil {
		return fmt.Errorf("gormstore: join table: %w", err)
	}
	return db.AutoMigrate(
		&petTypeRecord{},
		&ownerRecord{},
		&petRecord{},
		&visitRecord{},
		&specialtyRecord{},
		&vetRecord{},
		&vetSpecialtyRecord{},
		&userRecord{},
		&roleRecord{},
	)
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

	var opts []*sql.TxOptions
	if mode == txscope.ReadOnly && s.dialect == DialectPostgres {
		opts = append(opts, &sql.TxOptions{ReadOnly: true})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx, _ := txscope.Begin(ctx, s, mode, tx)
		return fn(ctx)
	}, opts...)
}

// conn devuelve una sesión limpia sobre la transacción activa o sobre el pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	base := s.db
	if sc, ok := txscope.Joined(ctx, s); ok {
		if tx, ok := sc.Tx.(*gorm.DB); ok {
			base = tx
		}
	}
	return base.Session(&gorm.Session{NewDB: true, Context: ctx})
}

func (s *Store) writable(ctx context.Context) error {
	return txscope.CheckWritable(ctx, s)
}

// classify traduce los errores ya normalizados por TranslateError.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return clinic.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(clinic.ErrConstraint, err)
	default:
		return err
	}
}

func notFound(entity string, id any) error {
	return fmt.Errorf("gormstore: %s %v: %w", entity, id, clinic.ErrNotFound)
}

func wrapNotFound(err error, entity string, id any) error {
	if errors.Is(err, clinic.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

// updated convierte "ninguna fila tocada" en ErrNotFound.
func updated(res *gorm.DB, entity string, id any) error {
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, id)
	}
	return nil
}
