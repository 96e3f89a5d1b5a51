package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de campo soportados por las plantillas de formulario.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldSelect   = "select"
	FieldCheckbox = "checkbox"
)

// FormTemplate plantilla de formulario asociable a una solicitud (por tenant).
type FormTemplate struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Fields      []FormField
	Lifecycle   Lifecycle
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FormField campo de una plantilla. Min/Max aplican a campos number (valor) y text (longitud).
type FormField struct {
	Key      string
	Label    string
	Type     string
	Required bool
	Options  []string
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	Pattern  string
	Position int
}
