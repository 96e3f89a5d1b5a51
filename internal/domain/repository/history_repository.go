package repository

import (
	"context"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// HistoryRepository historial append-only de acciones. No existe Update ni Delete.
type HistoryRepository interface {
	// Append inserta la entrada y le asigna Seq.
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	// ListByInstance devuelve las entradas en orden (created_at, seq) ascendente. limit <= 0 = sin tope.
	ListByInstance(ctx context.Context, tenantID, instanceID string, limit, offset int) ([]*entity.HistoryEntry, error)
	// ListByStep devuelve las entradas de un orden de paso.
	ListByStep(ctx context.Context, tenantID, instanceID string, stepOrder int) ([]*entity.HistoryEntry, error)
}
