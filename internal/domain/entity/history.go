package entity

import "time"

// HistoryAction tipo de acción registrada en el historial.
type HistoryAction string

const (
	ActionApproved  HistoryAction = "approved"
	ActionRejected  HistoryAction = "rejected"
	ActionWithdrawn HistoryAction = "withdrawn"
	ActionCommented HistoryAction = "commented"
)

// HistoryEntry registro inmutable de una acción sobre una solicitud. Solo se agrega, nunca
// se actualiza ni se borra. StatusAfter y StepAfter permiten reconstruir el estado.
type HistoryEntry struct {
	ID          string
	Seq         int64
	TenantID    string
	InstanceID  string
	StepOrder   int
	ActorID     string
	Action      HistoryAction
	Comment     string
	StatusAfter ApprovalStatus
	StepAfter   int
	CreatedAt   time.Time
}
