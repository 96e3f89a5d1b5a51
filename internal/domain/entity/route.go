package entity

import "time"

// Quorum regla de quórum de un grupo de pasos.
type Quorum string

const (
	// QuorumAll todos los aprobadores del grupo deben aprobar.
	QuorumAll Quorum = "all"
	// QuorumAny la primera aprobación completa el paso.
	QuorumAny Quorum = "any"
)

// Valid indica si q es una regla conocida.
func (q Quorum) Valid() bool { return q == QuorumAll || q == QuorumAny }

// Route plantilla ordenada y con nombre de pasos de aprobación.
type Route struct {
	ID          string
	TenantID    string
	Name        string
	NameKey     string // nombre normalizado (case folding), único por tenant entre rutas activas
	Description string
	IsActive    bool
	Version     int
	Lifecycle   Lifecycle
	Steps       []Step
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Usable indica si se pueden crear solicitudes contra la ruta.
func (r *Route) Usable() bool {
	return r != nil && r.IsActive && r.Lifecycle.IsActive() && len(r.Steps) > 0
}

// Step un aprobador dentro de una ruta. Los Steps que comparten Order forman un grupo paralelo.
type Step struct {
	ID         string
	RouteID    string
	TenantID   string
	Order      int
	ApproverID string
	Quorum     Quorum
	IsRequired bool // reservado para pasos opcionales; un paso requerido no se puede saltar
}
