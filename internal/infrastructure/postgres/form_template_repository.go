package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

var _ repository.FormTemplateRepository = (*FormTemplateRepo)(nil)

// FormTemplateRepo plantillas de formulario; los límites min/max viajan como NUMERIC.
type FormTemplateRepo struct {
	q Querier
}

// NewFormTemplateRepository construye el adaptador. Acepta pool o tx (Querier).
func NewFormTemplateRepository(q Querier) *FormTemplateRepo {
	return &FormTemplateRepo{q: q}
}

const templateColumns = `id, tenant_id, name, description, lifecycle, created_at, updated_at`

func (r *FormTemplateRepo) Create(ctx context.Context, t *entity.FormTemplate) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO form_templates (id, tenant_id, name, description, lifecycle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.TenantID, t.Name, t.Description, t.Lifecycle, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert form template: %w", err)
	}
	for _, f := range t.Fields {
		options := f.Options
		if options == nil {
			options = []string{}
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO form_template_fields (template_id, field_key, label, field_type, required, options, min_value, max_value, pattern, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, f.Key, f.Label, f.Type, f.Required, options, nullDecimal(f.Min), nullDecimal(f.Max), f.Pattern, f.Position,
		)
		if err != nil {
			return fmt.Errorf("insert form template field: %w", err)
		}
	}
	return nil
}

func (r *FormTemplateRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.FormTemplate, error) {
	var t entity.FormTemplate
	err := r.q.QueryRow(ctx, `SELECT `+templateColumns+` FROM form_templates WHERE tenant_id = $1 AND id = $2`, tenantID, id).
		Scan(&t.ID, &t.TenantID, &t.Name, &t.Description, &t.Lifecycle, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get form template: %w", err)
	}
	if err := r.loadFields(ctx, []*entity.FormTemplate{&t}); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *FormTemplateRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.FormTemplate, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+templateColumns+` FROM form_templates
		WHERE tenant_id = $1 AND lifecycle = 'active'
		ORDER BY name, id LIMIT $2 OFFSET $3`, tenantID, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list form templates: %w", err)
	}
	list := []*entity.FormTemplate{}
	for rows.Next() {
		var t entity.FormTemplate
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.Description, &t.Lifecycle, &t.CreatedAt, &t.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan form template: %w", err)
		}
		list = append(list, &t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list form templates: %w", err)
	}
	if err := r.loadFields(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *FormTemplateRepo) loadFields(ctx context.Context, list []*entity.FormTemplate) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.FormTemplate, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT template_id, field_key, label, field_type, required, options, min_value, max_value, pattern, position
		FROM form_template_fields WHERE template_id = ANY($1)
		ORDER BY template_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list form template fields: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var templateID string
		var f entity.FormField
		var minValue, maxValue decimal.NullDecimal
		if err := rows.Scan(&templateID, &f.Key, &f.Label, &f.Type, &f.Required, &f.Options,
			&minValue, &maxValue, &f.Pattern, &f.Position); err != nil {
			return fmt.Errorf("scan form template field: %w", err)
		}
		f.Min = decimalPtr(minValue)
		f.Max = decimalPtr(maxValue)
		if t := byID[templateID]; t != nil {
			t.Fields = append(t.Fields, f)
		}
	}
	return rows.Err()
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
