package users

import "context"

type Repository interface {
	// FindByUsername devuelve clinic.ErrNotFound si no existe.
	FindByUsername(ctx context.Context, username string) (User, error)
	// Save inserta o reemplaza el usuario junto con sus roles.
	Save(ctx context.Context, u *User) error
}
