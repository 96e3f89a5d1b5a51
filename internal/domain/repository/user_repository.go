package repository

import (
	"context"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID no filtra por tenant: lo usan los casos de uso para distinguir
// "no existe" de "pertenece a otro tenant".
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetForUpdate bloquea la fila del usuario (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.User, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error)
	SoftDelete(ctx context.Context, tenantID, id string) error
}
