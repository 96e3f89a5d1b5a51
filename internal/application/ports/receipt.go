package ports

import (
	"context"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// ReceiptStep avance de un paso para el comprobante.
type ReceiptStep struct {
	Order     int
	Quorum    entity.Quorum
	Status    string
	Approvers []string // nombres de los aprobadores efectivos
}

// ReceiptData todo lo necesario para renderizar el comprobante de una solicitud.
type ReceiptData struct {
	TenantName    string
	ApplicantName string
	Instance      *entity.ApprovalInstance
	Steps         []ReceiptStep
	History       []*entity.HistoryEntry
	// UserNames nombre visible por ID de usuario (actores del historial).
	UserNames map[string]string
}

// ReceiptGenerator abstrae la generación del PDF del comprobante (implementación: maroto).
type ReceiptGenerator interface {
	GenerateApprovalReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}
