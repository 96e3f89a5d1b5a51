package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación de TenantRepository sobre PostgreSQL.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Acepta pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `id, name, slug, lifecycle, created_at, updated_at`

func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, lifecycle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, t.ID, t.Name, t.Slug, t.Lifecycle, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	return r.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	return r.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
}

func (r *TenantRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.q.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Name, &t.Slug, &t.Lifecycle, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}
