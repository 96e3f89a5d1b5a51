package entity

import (
	"encoding/json"
	"time"
)

// ApprovalStatus estado de una solicitud de aprobación.
type ApprovalStatus string

const (
	StatusPending   ApprovalStatus = "pending"
	StatusApproved  ApprovalStatus = "approved"
	StatusRejected  ApprovalStatus = "rejected"
	StatusWithdrawn ApprovalStatus = "withdrawn"
)

// Terminal indica si no se permite ninguna transición desde el estado.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWithdrawn
}

// Valid indica si s es un estado conocido.
func (s ApprovalStatus) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Decision decisión de un aprobador sobre el paso actual.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// FormPayload datos estructurados del formulario de la solicitud.
// Kind identifica el esquema; Data es un objeto JSON opaco para el motor.
type FormPayload struct {
	Kind string          `json:"kind,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Empty indica si no se enviaron datos.
func (f FormPayload) Empty() bool { return len(f.Data) == 0 }

// ApprovalInstance una ejecución concreta de una ruta. Steps es la copia de los pasos
// de la ruta tomada al crear la solicitud: ediciones posteriores de la ruta no la afectan.
type ApprovalInstance struct {
	ID           string
	TenantID     string
	RouteID      string
	RouteVersion int
	ApplicantID  string
	Title        string
	Description  string
	Form         FormPayload
	TemplateID   *string
	Status       ApprovalStatus
	CurrentStep  int
	TotalSteps   int
	Steps        []Step
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
