package users

import (
	"strings"

	"petclinic/internal/ports/auth"
)

const (
	RolePrefix = "ROLE_"

	RoleOwnerAdmin = auth.RoleOwnerAdmin
	RoleVetAdmin   = auth.RoleVetAdmin
	RoleAdmin      = auth.RoleAdmin
)

// User y sus roles. (username, role) es único: storage lo refuerza con un
// constraint y el servicio colapsa duplicados antes de guardar.
type User struct {
	Username string
	Password string // hash bcrypt
	Enabled  bool

	Roles []Role
}

type Role struct {
	ID   int
	Name string
}

func (u User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// normalizeRoleName agrega el prefijo ROLE_ si falta.
func normalizeRoleName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if !strings.HasPrefix(name, RolePrefix) {
		name = RolePrefix + name
	}
	return name
}
