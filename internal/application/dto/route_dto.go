package dto

import "time"

// StepRequest un aprobador de la ruta. Los pasos con el mismo order forman un grupo paralelo.
type StepRequest struct {
	Order      int    `json:"order" validate:"required,min=1"`
	ApproverID string `json:"approver_id" validate:"required"`
	Quorum     string `json:"quorum" validate:"omitempty,oneof=all any"`
	IsRequired *bool  `json:"is_required"`
}

// CreateRouteRequest entrada para crear una ruta de aprobación.
type CreateRouteRequest struct {
	Name        string        `json:"name" validate:"required,min=1,max=200"`
	Description string        `json:"description" validate:"max=2000"`
	IsActive    *bool         `json:"is_active"`
	Steps       []StepRequest `json:"steps" validate:"required,min=1,dive"`
}

// UpdateRouteRequest entrada para actualizar una ruta. Steps, si viene, reemplaza todos los pasos.
type UpdateRouteRequest struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool         `json:"is_active"`
	Steps       []StepRequest `json:"steps" validate:"omitempty,min=1,dive"`
}

// StepResponse salida de un paso.
type StepResponse struct {
	ID         string `json:"id"`
	Order      int    `json:"order"`
	ApproverID string `json:"approver_id"`
	Quorum     string `json:"quorum"`
	IsRequired bool   `json:"is_required"`
}

// RouteResponse salida de una ruta.
type RouteResponse struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	IsActive    bool           `json:"is_active"`
	Version     int            `json:"version"`
	TotalSteps  int            `json:"total_steps"`
	Steps       []StepResponse `json:"steps"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RouteListResponse lista paginada de rutas.
type RouteListResponse struct {
	Items []RouteResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
