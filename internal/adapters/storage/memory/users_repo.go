package memory

import (
	"context"
	"slices"

	"petclinic/internal/domain/users"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (users.User, error) {
	var out users.User
	err := r.s.read(ctx, func(t tables) error {
		u, ok := t.users[username]
		if !ok {
			return notFound("user", username)
		}
		u.Roles = slices.Clone(u.Roles)
		out = u
		return nil
	})
	return out, err
}

// Save reemplaza el usuario y sus roles; (username, role) queda único.
func (r *userRepo) Save(ctx context.Context, u *users.User) error {
	return r.s.write(ctx, func(t tables) error {
		seen := map[string]struct{}{}
		roles := make([]users.Role, 0, len(u.Roles))
		for _, role := range u.Roles {
			if _, dup := seen[role.Name]; dup {
				return constraint("duplicate role %s for user %s", role.Name, u.Username)
			}
			seen[role.Name] = struct{}{}
			if role.ID == 0 {
				role.ID = t.next("roles")
			} else {
				t.bump("roles", role.ID)
			}
			roles = append(roles, role)
		}

		row := *u
		row.Roles = roles
		t.users[u.Username] = row
		u.Roles = slices.Clone(roles)
		return nil
	})
}
