package middleware

import (
	"context"
	"net/http"

	"petclinic/internal/ports/auth"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
	securityKey  ctxKey = "security"
)

// AuthContext:
// - Si authn == nil => seguridad deshabilitada: RequireRole deja pasar todo.
// - Si viene Basic auth => intenta Authenticate() y setea el principal.
// - Credenciales inválidas no cortan el request; RequireRole decide 401/403.
func AuthContext(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authn == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), securityKey, true)

			username, password, ok := r.BasicAuth()
			if !ok || username == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			p, err := authn.Authenticate(ctx, username, password)
			if err != nil {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = context.WithValue(ctx, principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole exige que el principal tenga al menos uno de los roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !securityEnabled(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			p, ok := GetPrincipal(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="petclinic"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func securityEnabled(ctx context.Context) bool {
	on, _ := ctx.Value(securityKey).(bool)
	return on
}
