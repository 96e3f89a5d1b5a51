package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

var _ repository.DelegationRepository = (*DelegationRepo)(nil)

// DelegationRepo implementación de DelegationRepository sobre PostgreSQL.
// start_date y end_date son DATE: se leen como medianoche UTC.
type DelegationRepo struct {
	q Querier
}

// NewDelegationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewDelegationRepository(q Querier) *DelegationRepo {
	return &DelegationRepo{q: q}
}

const delegationColumns = `id, tenant_id, user_id, delegate_user_id, start_date, end_date, reason, lifecycle, created_at, updated_at`

func (r *DelegationRepo) Create(ctx context.Context, d *entity.Delegation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delegations (id, tenant_id, user_id, delegate_user_id, start_date, end_date, reason, lifecycle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.TenantID, d.UserID, d.DelegateUserID, d.StartDate, d.EndDate, d.Reason, d.Lifecycle, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert delegation: %w", err)
	}
	return nil
}

func (r *DelegationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Delegation, error) {
	list, err := r.list(ctx, `tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *DelegationRepo) ListActiveByUser(ctx context.Context, tenantID, userID string) ([]*entity.Delegation, error) {
	return r.list(ctx, `tenant_id = $1 AND user_id = $2 AND lifecycle = 'active'`, tenantID, userID)
}

func (r *DelegationRepo) ListCovering(ctx context.Context, tenantID, userID string, date time.Time) ([]*entity.Delegation, error) {
	return r.list(ctx, `tenant_id = $1 AND user_id = $2 AND lifecycle = 'active' AND start_date <= $3 AND end_date >= $3`,
		tenantID, userID, civilDate(date))
}

func (r *DelegationRepo) ListByDelegateCovering(ctx context.Context, tenantID, delegateID string, date time.Time) ([]*entity.Delegation, error) {
	return r.list(ctx, `tenant_id = $1 AND delegate_user_id = $2 AND lifecycle = 'active' AND start_date <= $3 AND end_date >= $3`,
		tenantID, delegateID, civilDate(date))
}

func (r *DelegationRepo) ListInvolving(ctx context.Context, tenantID, userID string) ([]*entity.Delegation, error) {
	return r.list(ctx, `tenant_id = $1 AND (user_id = $2 OR delegate_user_id = $2) AND lifecycle = 'active'`, tenantID, userID)
}

func (r *DelegationRepo) SoftDelete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE delegations SET lifecycle = 'deleted', updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND lifecycle = 'active'`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete delegation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DelegationRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Delegation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE `+where+` ORDER BY start_date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list delegations: %w", err)
	}
	defer rows.Close()
	list := []*entity.Delegation{}
	for rows.Next() {
		var d entity.Delegation
		if err := rows.Scan(&d.ID, &d.TenantID, &d.UserID, &d.DelegateUserID, &d.StartDate, &d.EndDate,
			&d.Reason, &d.Lifecycle, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan delegation: %w", err)
		}
		d.StartDate = d.StartDate.UTC()
		d.EndDate = d.EndDate.UTC()
		list = append(list, &d)
	}
	return list, rows.Err()
}

// civilDate trunca a la fecha civil en UTC para comparar contra columnas DATE.
func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
