package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// DelegationRepository define el puerto de persistencia para Delegation (DIP).
type DelegationRepository interface {
	Create(ctx context.Context, delegation *entity.Delegation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Delegation, error)
	// ListActiveByUser devuelve las delegaciones activas donde userID es el delegante.
	ListActiveByUser(ctx context.Context, tenantID, userID string) ([]*entity.Delegation, error)
	// ListCovering devuelve las delegaciones activas del delegante que cubren la fecha.
	ListCovering(ctx context.Context, tenantID, userID string, date time.Time) ([]*entity.Delegation, error)
	// ListByDelegateCovering devuelve las delegaciones activas hacia delegateID que cubren la fecha.
	ListByDelegateCovering(ctx context.Context, tenantID, delegateID string, date time.Time) ([]*entity.Delegation, error)
	// ListInvolving devuelve las delegaciones activas donde userID es delegante o delegado.
	ListInvolving(ctx context.Context, tenantID, userID string) ([]*entity.Delegation, error)
	SoftDelete(ctx context.Context, tenantID, id string) error
}
