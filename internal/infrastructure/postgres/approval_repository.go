package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

var _ repository.ApprovalRepository = (*ApprovalRepo)(nil)

// ApprovalRepo implementación de ApprovalRepository sobre PostgreSQL
// (approval_instances + approval_instance_steps).
type ApprovalRepo struct {
	q Querier
}

// NewApprovalRepository construye el adaptador. Acepta pool o tx (Querier).
func NewApprovalRepository(q Querier) *ApprovalRepo {
	return &ApprovalRepo{q: q}
}

const instanceColumns = `i.id, i.tenant_id, i.route_id, i.route_version, i.applicant_id, i.title, i.description,
	i.form_kind, i.form_data, i.template_id, i.status, i.current_step, i.total_steps, i.created_at, i.updated_at`

// Create inserta la solicitud y la copia de pasos de la ruta.
func (r *ApprovalRepo) Create(ctx context.Context, inst *entity.ApprovalInstance) error {
	var formData []byte
	if !inst.Form.Empty() {
		formData = inst.Form.Data
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO approval_instances (id, tenant_id, route_id, route_version, applicant_id, title, description,
			form_kind, form_data, template_id, status, current_step, total_steps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inst.ID, inst.TenantID, inst.RouteID, inst.RouteVersion, inst.ApplicantID, inst.Title, inst.Description,
		inst.Form.Kind, formData, inst.TemplateID, inst.Status, inst.CurrentStep, inst.TotalSteps,
		inst.CreatedAt, inst.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert approval instance: %w", err)
	}
	for _, s := range inst.Steps {
		_, err := r.q.Exec(ctx, `
			INSERT INTO approval_instance_steps (instance_id, step_id, tenant_id, route_id, step_order, approver_id, quorum, is_required)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			inst.ID, s.ID, inst.TenantID, s.RouteID, s.Order, s.ApproverID, s.Quorum, s.IsRequired,
		)
		if err != nil {
			return fmt.Errorf("insert approval instance step: %w", err)
		}
	}
	return nil
}

func (r *ApprovalRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalInstance, error) {
	return r.findOne(ctx, `SELECT `+instanceColumns+` FROM approval_instances i WHERE i.tenant_id = $1 AND i.id = $2`, tenantID, id)
}

// GetForUpdate bloquea la fila de la solicitud hasta el fin de la transacción.
func (r *ApprovalRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ApprovalInstance, error) {
	return r.findOne(ctx, `SELECT `+instanceColumns+` FROM approval_instances i WHERE i.tenant_id = $1 AND i.id = $2 FOR UPDATE`, tenantID, id)
}

// UpdateState persiste Status, CurrentStep y UpdatedAt.
func (r *ApprovalRepo) UpdateState(ctx context.Context, inst *entity.ApprovalInstance) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE approval_instances SET status = $3, current_step = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2`,
		inst.TenantID, inst.ID, inst.Status, inst.CurrentStep, inst.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update approval state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

// List filtra por tenant y criterios opcionales, ordenado por created_at desc. Devuelve también el total.
func (r *ApprovalRepo) List(ctx context.Context, f repository.ApprovalFilter) ([]*entity.ApprovalInstance, int, error) {
	where := []string{"i.tenant_id = $1"}
	args := []any{f.TenantID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("i.status = $%d", f.Status)
	}
	if f.ApplicantID != "" {
		add("i.applicant_id = $%d", f.ApplicantID)
	}
	if len(f.ApproverIDs) > 0 {
		where = append(where, "i.status = 'pending'")
		add(`EXISTS (SELECT 1 FROM approval_instance_steps s
			WHERE s.instance_id = i.id AND s.step_order = i.current_step AND s.approver_id = ANY($%d))`, f.ApproverIDs)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM approval_instances i WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count approvals: %w", err)
	}

	args = append(args, limitArg(f.Limit), f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM approval_instances i WHERE %s
		ORDER BY i.created_at DESC, i.id LIMIT $%d OFFSET $%d`, instanceColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list approvals: %w", err)
	}
	list := []*entity.ApprovalInstance{}
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		list = append(list, inst)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list approvals: %w", err)
	}
	if err := r.loadSteps(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ApprovalRepo) findOne(ctx context.Context, query string, args ...any) (*entity.ApprovalInstance, error) {
	inst, err := scanInstance(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadSteps(ctx, []*entity.ApprovalInstance{inst}); err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *ApprovalRepo) loadSteps(ctx context.Context, list []*entity.ApprovalInstance) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.ApprovalInstance, len(list))
	ids := make([]string, 0, len(list))
	for _, inst := range list {
		byID[inst.ID] = inst
		ids = append(ids, inst.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT instance_id, step_id, tenant_id, route_id, step_order, approver_id, quorum, is_required
		FROM approval_instance_steps WHERE instance_id = ANY($1)
		ORDER BY instance_id, step_order, approver_id`, ids)
	if err != nil {
		return fmt.Errorf("list approval steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var instanceID string
		var s entity.Step
		if err := rows.Scan(&instanceID, &s.ID, &s.TenantID, &s.RouteID, &s.Order, &s.ApproverID, &s.Quorum, &s.IsRequired); err != nil {
			return fmt.Errorf("scan approval step: %w", err)
		}
		if inst := byID[instanceID]; inst != nil {
			inst.Steps = append(inst.Steps, s)
		}
	}
	return rows.Err()
}

func scanInstance(row pgx.Row) (*entity.ApprovalInstance, error) {
	var inst entity.ApprovalInstance
	var formData []byte
	err := row.Scan(&inst.ID, &inst.TenantID, &inst.RouteID, &inst.RouteVersion, &inst.ApplicantID,
		&inst.Title, &inst.Description, &inst.Form.Kind, &formData, &inst.TemplateID, &inst.Status,
		&inst.CurrentStep, &inst.TotalSteps, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan approval instance: %w", err)
	}
	if len(formData) > 0 {
		inst.Form.Data = formData
	}
	return &inst, nil
}
