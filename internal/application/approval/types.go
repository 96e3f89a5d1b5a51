package approval

import (
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
)

// Alcances de listado.
const (
	ScopeMine     = "mine"     // solicitudes del llamador
	ScopeAssigned = "assigned" // pendientes donde el llamador es aprobador efectivo del paso actual
	ScopeAll      = "all"      // todas las del tenant (admin, manager)
)

// Estados de avance de un paso en el detalle de una solicitud.
const (
	StepApproved = "approved"
	StepPending  = "pending"
	StepWaiting  = "waiting"
	StepRejected = "rejected"
)

// CreateInput entrada de Create.
type CreateInput struct {
	RouteID     string
	Title       string
	Description string
	Form        entity.FormPayload
	TemplateID  *string
}

// ActResult resultado de Act.
// Advanced indica que el paso actual se completó; Completed que la solicitud quedó aprobada.
// Duplicate indica una aprobación repetida del mismo actor: se registra pero no avanza.
type ActResult struct {
	Instance  *entity.ApprovalInstance
	Entry     *entity.HistoryEntry
	Advanced  bool
	Completed bool
	Duplicate bool
}

// ListInput filtros de List.
type ListInput struct {
	Scope  string
	Status entity.ApprovalStatus
	Limit  int
	Offset int
}

// ListResult página de solicitudes.
type ListResult struct {
	Items  []*entity.ApprovalInstance
	Total  int
	Limit  int
	Offset int
}

// ApproverProgress estado de un puesto dentro de un paso.
type ApproverProgress struct {
	Nominal   string
	Effective string
	Approved  bool
}

// StepProgress avance de un grupo de pasos.
type StepProgress struct {
	Order     int
	Quorum    entity.Quorum
	Status    string
	Approvers []ApproverProgress
}

// Detail solicitud con avance por paso e historial completo.
type Detail struct {
	Instance *entity.ApprovalInstance
	Steps    []StepProgress
	History  []*entity.HistoryEntry
}

// Verification resultado de reconstruir el estado desde el historial.
type Verification struct {
	Stored   workflow.State
	Replayed workflow.State
	Entries  int
}

// Consistent indica si el estado persistido coincide con el reconstruido.
func (v Verification) Consistent() bool { return v.Stored == v.Replayed }
