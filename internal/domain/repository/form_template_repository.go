package repository

import (
	"context"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// FormTemplateRepository define el puerto de persistencia para FormTemplate (DIP).
type FormTemplateRepository interface {
	Create(ctx context.Context, template *entity.FormTemplate) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.FormTemplate, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.FormTemplate, error)
}
