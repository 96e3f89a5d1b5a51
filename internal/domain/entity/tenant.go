package entity

import "time"

// Tenant representa una organización aislada del sistema (multi-tenant).
// Toda otra entidad lleva TenantID y ninguna lectura o escritura cruza tenants.
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	Lifecycle Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Caller identidad del llamador, acotada a un tenant (viene del JWT).
type Caller struct {
	TenantID string
	UserID   string
	Role     string
}

// Valid indica si el llamador trae tenant y usuario.
func (c Caller) Valid() bool { return c.TenantID != "" && c.UserID != "" }
