package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo historial append-only sobre approval_history. Un trigger rechaza UPDATE y DELETE.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador. Acepta pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

const historyColumns = `id, seq, tenant_id, instance_id, step_order, actor_id, action, comment, status_after, step_after, created_at`

// Append inserta la entrada y asigna Seq desde la secuencia de la tabla.
func (r *HistoryRepo) Append(ctx context.Context, e *entity.HistoryEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO approval_history (id, tenant_id, instance_id, step_order, actor_id, action, comment, status_after, step_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`,
		e.ID, e.TenantID, e.InstanceID, e.StepOrder, e.ActorID, e.Action, e.Comment, e.StatusAfter, e.StepAfter, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByInstance(ctx context.Context, tenantID, instanceID string, limit, offset int) ([]*entity.HistoryEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+historyColumns+`
		FROM approval_history WHERE tenant_id = $1 AND instance_id = $2
		ORDER BY created_at, seq LIMIT $3 OFFSET $4`, tenantID, instanceID, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return collectHistory(rows)
}

func (r *HistoryRepo) ListByStep(ctx context.Context, tenantID, instanceID string, stepOrder int) ([]*entity.HistoryEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+historyColumns+`
		FROM approval_history WHERE tenant_id = $1 AND instance_id = $2 AND step_order = $3
		ORDER BY created_at, seq`, tenantID, instanceID, stepOrder)
	if err != nil {
		return nil, fmt.Errorf("list history by step: %w", err)
	}
	return collectHistory(rows)
}

func collectHistory(rows pgx.Rows) ([]*entity.HistoryEntry, error) {
	defer rows.Close()
	list := []*entity.HistoryEntry{}
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Seq, &e.TenantID, &e.InstanceID, &e.StepOrder, &e.ActorID, &e.Action,
			&e.Comment, &e.StatusAfter, &e.StepAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
