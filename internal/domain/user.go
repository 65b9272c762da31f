package domain

import "time"

// UserRole encodes the caller's role. The integer values are persisted and
// must not be renumbered.
type UserRole int

const (
	RoleUsuario       UserRole = 0
	RoleTecnico       UserRole = 1
	RoleAdministrador UserRole = 2
)

// Label returns the display name for the role.
func (r UserRole) Label() string {
	switch r {
	case RoleTecnico:
		return "Técnico"
	case RoleAdministrador:
		return "Administrador"
	default:
		return "Usuário"
	}
}

// RoleFromLabel parses a display name back to a role, defaulting to Usuario.
func RoleFromLabel(label string) UserRole {
	switch label {
	case "Técnico", "Tecnico", "técnico", "tecnico":
		return RoleTecnico
	case "Administrador", "administrador", "Admin", "admin":
		return RoleAdministrador
	default:
		return RoleUsuario
	}
}

// User is the single account model: requesters, technicians and
// administrators all live in one table, distinguished by Role.
//
// LastActivityAt is refreshed by the heartbeat endpoint and drives the
// "online" check during escalation.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           UserRole
	CreatedAt      time.Time
	LastLoginAt    *time.Time
	LastActivityAt *time.Time
}
