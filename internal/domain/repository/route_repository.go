package repository

import (
	"context"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// RouteRepository define el puerto de persistencia para Route y sus Steps (DIP).
// Los Get devuelven la ruta en cualquier lifecycle; el caso de uso decide si es utilizable.
type RouteRepository interface {
	Create(ctx context.Context, route *entity.Route) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Route, error)
	// GetForUpdate bloquea la fila de la ruta (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Route, error)
	// Update reemplaza nombre, estado, versión y pasos de la ruta.
	Update(ctx context.Context, route *entity.Route) error
	SoftDelete(ctx context.Context, tenantID, id string) error
	ListByTenant(ctx context.Context, tenantID string, onlyActive bool, limit, offset int) ([]*entity.Route, error)
	// NameTaken indica si otra ruta activa del tenant usa la clave de nombre.
	NameTaken(ctx context.Context, tenantID, nameKey, excludeID string) (bool, error)
}
