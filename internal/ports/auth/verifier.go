package auth

import "context"

// Authenticator valida credenciales (basic auth) y devuelve el principal o error.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Principal, error)
}
