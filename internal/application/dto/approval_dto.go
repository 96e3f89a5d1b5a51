package dto

import (
	"encoding/json"
	"time"
)

// FormPayload datos de formulario: kind identifica el esquema, data es un objeto JSON.
type FormPayload struct {
	Kind string          `json:"kind" validate:"max=100"`
	Data json.RawMessage `json:"data" swaggertype:"object"`
}

// CreateApprovalRequest entrada para crear una solicitud.
type CreateApprovalRequest struct {
	RouteID     string       `json:"route_id" validate:"required"`
	Title       string       `json:"title" validate:"required,min=1,max=300"`
	Description string       `json:"description" validate:"max=5000"`
	Form        *FormPayload `json:"form"`
	TemplateID  *string      `json:"template_id" validate:"omitempty,min=1"`
}

// ActionRequest entrada de approve, reject y withdraw.
type ActionRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// CommentRequest entrada para comentar una solicitud.
type CommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

// ListApprovalsQuery filtros de listado.
type ListApprovalsQuery struct {
	Scope  string `query:"scope" validate:"omitempty,oneof=mine assigned all"`
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected withdrawn"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
	Offset int    `query:"offset" validate:"min=0"`
}

// ApprovalResponse salida de una solicitud.
type ApprovalResponse struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	RouteID      string       `json:"route_id"`
	RouteVersion int          `json:"route_version"`
	ApplicantID  string       `json:"applicant_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Form         *FormPayload `json:"form,omitempty"`
	TemplateID   *string      `json:"template_id,omitempty"`
	Status       string       `json:"status"`
	CurrentStep  int          `json:"current_step"`
	TotalSteps   int          `json:"total_steps"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ApproverProgressResponse puesto de aprobación dentro de un paso.
type ApproverProgressResponse struct {
	ApproverID          string `json:"approver_id"`
	EffectiveApproverID string `json:"effective_approver_id"`
	Approved            bool   `json:"approved"`
}

// StepProgressResponse avance de un paso: approved, pending, waiting o rejected.
type StepProgressResponse struct {
	Order     int                        `json:"order"`
	Quorum    string                     `json:"quorum"`
	Status    string                     `json:"status"`
	Approvers []ApproverProgressResponse `json:"approvers"`
}

// HistoryEntryResponse una entrada del historial.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	StepOrder   int       `json:"step_order"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	Comment     string    `json:"comment,omitempty"`
	StatusAfter string    `json:"status_after"`
	StepAfter   int       `json:"step_after"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApprovalDetailResponse solicitud con avance por paso e historial.
type ApprovalDetailResponse struct {
	ApprovalResponse
	Steps   []StepProgressResponse `json:"steps"`
	History []HistoryEntryResponse `json:"history"`
}

// ActionResponse resultado de una decisión.
type ActionResponse struct {
	Approval  ApprovalResponse     `json:"approval"`
	Entry     HistoryEntryResponse `json:"entry"`
	Advanced  bool                 `json:"advanced"`
	Completed bool                 `json:"completed"`
	Duplicate bool                 `json:"duplicate"`
}

// ApprovalListResponse lista paginada de solicitudes.
type ApprovalListResponse struct {
	Items []ApprovalResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// HistoryListResponse página del historial.
type HistoryListResponse struct {
	Items []HistoryEntryResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// VerificationResponse comparación del estado persistido contra el reconstruido desde el historial.
type VerificationResponse struct {
	ID                  string `json:"id"`
	Consistent          bool   `json:"consistent"`
	StoredStatus        string `json:"stored_status"`
	StoredCurrentStep   int    `json:"stored_current_step"`
	ReplayedStatus      string `json:"replayed_status"`
	ReplayedCurrentStep int    `json:"replayed_current_step"`
	Entries             int    `json:"entries"`
}
