package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// TenantUseCase alta y consulta de tenants. No se expone por HTTP: lo usa el seed.
type TenantUseCase struct {
	txRunner ports.TxRunner
	clock    ports.Clock
}

// NewTenantUseCase construye el caso de uso.
func NewTenantUseCase(txRunner ports.TxRunner, clock ports.Clock) *TenantUseCase {
	return &TenantUseCase{txRunner: txRunner, clock: clock}
}

// Create crea un tenant. Devuelve domain.ErrDuplicate si el slug ya existe.
func (uc *TenantUseCase) Create(ctx context.Context, name, slug string) (*entity.Tenant, error) {
	name, slug = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(slug))
	if name == "" || slug == "" {
		return nil, fmt.Errorf("%w: nombre y slug del tenant son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.clock.Now().UTC()
	tenant := &entity.Tenant{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		Lifecycle: entity.LifecycleActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		existing, err := repos.Tenants.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return repos.Tenants.Create(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetBySlug obtiene un tenant activo por slug; domain.ErrNotFound si no existe.
func (uc *TenantUseCase) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	var tenant *entity.Tenant
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		t, err := repos.Tenants.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
		if err != nil {
			return err
		}
		if t == nil || !t.Lifecycle.IsActive() {
			return domain.ErrNotFound
		}
		tenant = t
		return nil
	})
	return tenant, err
}
