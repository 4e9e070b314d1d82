package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed sql/schema.sql
var schemaSQL string

// Migrate crea las tablas si no existen. Es idempotente.
func (s *Store) Migrate(ctx context.Context) error {
	return s.ReadWrite(ctx, func(ctx context.Context) error {
		for i, stmt := range statements(schemaSQL) {
			if _, err := s.conn(ctx).ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("postgres: migrate statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Reset vacía todas las tablas y reinicia las secuencias.
func (s *Store) Reset(ctx context.Context) error {
	return s.ReadWrite(ctx, func(ctx context.Context) error {
		_, err := s.conn(ctx).ExecContext(ctx, `
			TRUNCATE visits, pets, owners, types, vet_specialties, vets, specialties, roles, users
			RESTART IDENTITY CASCADE
		`)
		return err
	})
}

func statements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
