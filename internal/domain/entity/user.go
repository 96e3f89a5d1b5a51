package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a un único Tenant).
// Nunca se borra físicamente mientras el historial lo referencie.
type User struct {
	ID        string
	TenantID  string
	Email     string
	Name      string
	Role      string // admin, manager, member
	Lifecycle Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}
