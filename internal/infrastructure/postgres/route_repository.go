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

var _ repository.RouteRepository = (*RouteRepo)(nil)

// RouteRepo implementación de RouteRepository sobre PostgreSQL (approval_routes + approval_steps).
type RouteRepo struct {
	q Querier
}

// NewRouteRepository construye el adaptador. Acepta pool o tx (Querier).
func NewRouteRepository(q Querier) *RouteRepo {
	return &RouteRepo{q: q}
}

const routeColumns = `id, tenant_id, name, name_key, description, is_active, version, lifecycle, created_at, updated_at`

// Create inserta la ruta y sus pasos. Debe correr dentro de una transacción.
func (r *RouteRepo) Create(ctx context.Context, route *entity.Route) error {
	query := `
		INSERT INTO approval_routes (id, tenant_id, name, name_key, description, is_active, version, lifecycle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		route.ID, route.TenantID, route.Name, route.NameKey, route.Description, route.IsActive,
		route.Version, route.Lifecycle, route.CreatedAt, route.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert route: %w", err)
	}
	return r.insertSteps(ctx, route)
}

func (r *RouteRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Route, error) {
	return r.findOne(ctx, `SELECT `+routeColumns+` FROM approval_routes WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate bloquea la fila de la ruta; los pasos se leen después con la fila tomada.
func (r *RouteRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Route, error) {
	return r.findOne(ctx, `SELECT `+routeColumns+` FROM approval_routes WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// Update reemplaza los datos y todos los pasos de la ruta.
func (r *RouteRepo) Update(ctx context.Context, route *entity.Route) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE approval_routes
		SET name = $3, name_key = $4, description = $5, is_active = $6, version = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`,
		route.TenantID, route.ID, route.Name, route.NameKey, route.Description, route.IsActive,
		route.Version, route.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM approval_steps WHERE route_id = $1`, route.ID); err != nil {
		return fmt.Errorf("delete route steps: %w", err)
	}
	return r.insertSteps(ctx, route)
}

func (r *RouteRepo) SoftDelete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE approval_routes SET lifecycle = 'deleted', updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND lifecycle = 'active'`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (r *RouteRepo) ListByTenant(ctx context.Context, tenantID string, onlyActive bool, limit, offset int) ([]*entity.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM approval_routes
		WHERE tenant_id = $1 AND lifecycle = 'active' AND (NOT $2 OR is_active)
		ORDER BY name_key LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, onlyActive, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	list := []*entity.Route{}
	byID := map[string]*entity.Route{}
	var ids []string
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, route)
		byID[route.ID] = route
		ids = append(ids, route.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	steps, err := r.steps(ctx, `route_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range steps {
		if route := byID[s.RouteID]; route != nil {
			route.Steps = append(route.Steps, s)
		}
	}
	return list, nil
}

func (r *RouteRepo) NameTaken(ctx context.Context, tenantID, nameKey, excludeID string) (bool, error) {
	var taken bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM approval_routes
			WHERE tenant_id = $1 AND name_key = $2 AND id <> $3 AND lifecycle = 'active'
		)`, tenantID, nameKey, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("route name taken: %w", err)
	}
	return taken, nil
}

func (r *RouteRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Route, error) {
	route, err := scanRoute(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	route.Steps, err = r.steps(ctx, `route_id = $1`, route.ID)
	if err != nil {
		return nil, err
	}
	return route, nil
}

func (r *RouteRepo) steps(ctx context.Context, where string, arg any) ([]entity.Step, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, route_id, tenant_id, step_order, approver_id, quorum, is_required
		FROM approval_steps WHERE `+where+`
		ORDER BY route_id, step_order, approver_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list route steps: %w", err)
	}
	defer rows.Close()
	var out []entity.Step
	for rows.Next() {
		var s entity.Step
		if err := rows.Scan(&s.ID, &s.RouteID, &s.TenantID, &s.Order, &s.ApproverID, &s.Quorum, &s.IsRequired); err != nil {
			return nil, fmt.Errorf("scan route step: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *RouteRepo) insertSteps(ctx context.Context, route *entity.Route) error {
	for _, s := range route.Steps {
		_, err := r.q.Exec(ctx, `
			INSERT INTO approval_steps (id, tenant_id, route_id, step_order, approver_id, quorum, is_required)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, route.TenantID, route.ID, s.Order, s.ApproverID, s.Quorum, s.IsRequired,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: aprobador %s", domain.ErrUserNotFound, s.ApproverID)
			}
			return fmt.Errorf("insert route step: %w", err)
		}
	}
	return nil
}

func scanRoute(row pgx.Row) (*entity.Route, error) {
	var rt entity.Route
	err := row.Scan(&rt.ID, &rt.TenantID, &rt.Name, &rt.NameKey, &rt.Description, &rt.IsActive,
		&rt.Version, &rt.Lifecycle, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan route: %w", err)
	}
	return &rt, nil
}
