package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormFieldRequest campo de una plantilla.
type FormFieldRequest struct {
	Key      string           `json:"key" validate:"required,max=100"`
	Label    string           `json:"label" validate:"max=200"`
	Type     string           `json:"type" validate:"required,oneof=text textarea number date select checkbox"`
	Required bool             `json:"required"`
	Options  []string         `json:"options"`
	Min      *decimal.Decimal `json:"min" swaggertype:"string"`
	Max      *decimal.Decimal `json:"max" swaggertype:"string"`
	Pattern  string           `json:"pattern" validate:"max=500"`
}

// CreateFormTemplateRequest entrada para crear una plantilla de formulario.
type CreateFormTemplateRequest struct {
	Name        string             `json:"name" validate:"required,min=1,max=200"`
	Description string             `json:"description" validate:"max=2000"`
	Fields      []FormFieldRequest `json:"fields" validate:"required,min=1,dive"`
}

// FormFieldResponse salida de un campo.
type FormFieldResponse struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Type     string           `json:"type"`
	Required bool             `json:"required"`
	Options  []string         `json:"options,omitempty"`
	Min      *decimal.Decimal `json:"min,omitempty" swaggertype:"string"`
	Max      *decimal.Decimal `json:"max,omitempty" swaggertype:"string"`
	Pattern  string           `json:"pattern,omitempty"`
}

// FormTemplateResponse salida de una plantilla.
type FormTemplateResponse struct {
	ID          string              `json:"id"`
	TenantID    string              `json:"tenant_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Fields      []FormFieldResponse `json:"fields"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// FormTemplateListResponse lista paginada de plantillas.
type FormTemplateListResponse struct {
	Items []FormTemplateResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
