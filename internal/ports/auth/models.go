package auth

// Roles conocidos. Los nombres llevan el prefijo ROLE_ como los guarda storage.
const (
	RoleOwnerAdmin = "ROLE_OWNER_ADMIN"
	RoleVetAdmin   = "ROLE_VET_ADMIN"
	RoleAdmin      = "ROLE_ADMIN"
)

// Principal es el usuario autenticado de la request.
type Principal struct {
	Username string
	Roles    []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
