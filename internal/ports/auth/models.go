package auth

// Role del usuario dentro de la clínica.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RoleGroomer      Role = "groomer"
)

// ParseRole normaliza un rol; vacío o desconocido devuelve "".
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RoleGroomer:
		return r
	default:
		return ""
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
	Role     Role
}

// HasRole indica si el usuario tiene alguno de los roles dados.
func (c Claims) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
