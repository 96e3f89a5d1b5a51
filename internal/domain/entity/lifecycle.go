package entity

// Lifecycle estado de vida lógico de una entidad. Reemplaza los flags de borrado por timestamp:
// todas las consultas filtran por LifecycleActive salvo que pidan explícitamente lo contrario.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleDeleted Lifecycle = "deleted"
)

// IsActive indica si la entidad no fue borrada lógicamente.
func (l Lifecycle) IsActive() bool { return l == LifecycleActive }
