package repository

import (
	"context"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// ApprovalFilter criterios de listado de solicitudes (siempre acotado a un tenant).
type ApprovalFilter struct {
	TenantID    string
	Status      entity.ApprovalStatus // vacío = todos
	ApplicantID string                // vacío = cualquiera
	// ApproverIDs filtra solicitudes pendientes cuyo paso actual lista a alguno de estos aprobadores nominales.
	ApproverIDs []string
	Limit       int // <= 0 = sin tope
	Offset      int
}

// ApprovalRepository define el puerto de persistencia para ApprovalInstance (DIP).
// No existe borrado físico: la baja equivalente es el estado withdrawn.
type ApprovalRepository interface {
	// Create persiste la solicitud junto con la copia de los pasos de la ruta.
	Create(ctx context.Context, instance *entity.ApprovalInstance) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalInstance, error)
	// GetForUpdate bloquea la fila de la solicitud (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ApprovalInstance, error)
	// UpdateState persiste Status, CurrentStep y UpdatedAt.
	UpdateState(ctx context.Context, instance *entity.ApprovalInstance) error
	List(ctx context.Context, filter ApprovalFilter) ([]*entity.ApprovalInstance, int, error)
}
