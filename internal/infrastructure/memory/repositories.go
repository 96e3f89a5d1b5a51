package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

// ── tenants ───────────────────────────────────────────────────────────────────

type tenantRepo struct{ st *state }

func (r *tenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	if _, ok := r.st.tenants[t.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.tenants {
		if other.Slug == t.Slug {
			return domain.ErrDuplicate
		}
	}
	r.st.tenants[t.ID] = copyTenant(t)
	return nil
}

func (r *tenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	t, ok := r.st.tenants[id]
	if !ok {
		return nil, nil
	}
	return copyTenant(t), nil
}

func (r *tenantRepo) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	for _, t := range r.st.tenants {
		if t.Slug == slug {
			return copyTenant(t), nil
		}
	}
	return nil, nil
}

// ── users ─────────────────────────────────────────────────────────────────────

type userRepo struct{ st *state }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.st.users[u.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.users {
		if other.TenantID == u.TenantID && other.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	r.st.users[u.ID] = copyUser(u)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *userRepo) GetForUpdate(_ context.Context, tenantID, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *userRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.st.users {
		if u.TenantID == tenantID && u.Lifecycle.IsActive() {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

func (r *userRepo) SoftDelete(_ context.Context, tenantID, id string) error {
	u, ok := r.st.users[id]
	if !ok || u.TenantID != tenantID || !u.Lifecycle.IsActive() {
		return domain.ErrUserNotFound
	}
	u.Lifecycle = entity.LifecycleDeleted
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ── routes ────────────────────────────────────────────────────────────────────

type routeRepo struct{ st *state }

func (r *routeRepo) Create(_ context.Context, route *entity.Route) error {
	if _, ok := r.st.routes[route.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.routes[route.ID] = copyRoute(route)
	return nil
}

func (r *routeRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Route, error) {
	route, ok := r.st.routes[id]
	if !ok || route.TenantID != tenantID {
		return nil, nil
	}
	return copyRoute(route), nil
}

func (r *routeRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Route, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *routeRepo) Update(_ context.Context, route *entity.Route) error {
	current, ok := r.st.routes[route.ID]
	if !ok || current.TenantID != route.TenantID {
		return domain.ErrRouteNotFound
	}
	r.st.routes[route.ID] = copyRoute(route)
	return nil
}

func (r *routeRepo) SoftDelete(_ context.Context, tenantID, id string) error {
	route, ok := r.st.routes[id]
	if !ok || route.TenantID != tenantID || !route.Lifecycle.IsActive() {
		return domain.ErrRouteNotFound
	}
	route.Lifecycle = entity.LifecycleDeleted
	route.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *routeRepo) ListByTenant(_ context.Context, tenantID string, onlyActive bool, limit, offset int) ([]*entity.Route, error) {
	var out []*entity.Route
	for _, route := range r.st.routes {
		if route.TenantID != tenantID || !route.Lifecycle.IsActive() {
			continue
		}
		if onlyActive && !route.IsActive {
			continue
		}
		out = append(out, copyRoute(route))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameKey < out[j].NameKey })
	return page(out, limit, offset), nil
}

func (r *routeRepo) NameTaken(_ context.Context, tenantID, nameKey, excludeID string) (bool, error) {
	for _, route := range r.st.routes {
		if route.TenantID == tenantID && route.NameKey == nameKey && route.ID != excludeID && route.Lifecycle.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

// ── approvals ─────────────────────────────────────────────────────────────────

type approvalRepo struct{ st *state }

func (r *approvalRepo) Create(_ context.Context, inst *entity.ApprovalInstance) error {
	if _, ok := r.st.instances[inst.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.instances[inst.ID] = copyInstance(inst)
	return nil
}

func (r *approvalRepo) GetByID(_ context.Context, tenantID, id string) (*entity.ApprovalInstance, error) {
	inst, ok := r.st.instances[id]
	if !ok || inst.TenantID != tenantID {
		return nil, nil
	}
	return copyInstance(inst), nil
}

func (r *approvalRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ApprovalInstance, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *approvalRepo) UpdateState(_ context.Context, inst *entity.ApprovalInstance) error {
	current, ok := r.st.instances[inst.ID]
	if !ok || current.TenantID != inst.TenantID {
		return domain.ErrInstanceNotFound
	}
	current.Status = inst.Status
	current.CurrentStep = inst.CurrentStep
	current.UpdatedAt = inst.UpdatedAt
	return nil
}

func (r *approvalRepo) List(_ context.Context, f repository.ApprovalFilter) ([]*entity.ApprovalInstance, int, error) {
	approvers := make(map[string]bool, len(f.ApproverIDs))
	for _, id := range f.ApproverIDs {
		approvers[id] = true
	}
	var out []*entity.ApprovalInstance
	for _, inst := range r.st.instances {
		if inst.TenantID != f.TenantID {
			continue
		}
		if f.Status != "" && inst.Status != f.Status {
			continue
		}
		if f.ApplicantID != "" && inst.ApplicantID != f.ApplicantID {
			continue
		}
		if len(approvers) > 0 && !listsApprover(inst, approvers) {
			continue
		}
		out = append(out, copyInstance(inst))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func listsApprover(inst *entity.ApprovalInstance, approvers map[string]bool) bool {
	if inst.Status != entity.StatusPending {
		return false
	}
	for _, s := range inst.Steps {
		if s.Order == inst.CurrentStep && approvers[s.ApproverID] {
			return true
		}
	}
	return false
}

// ── history ───────────────────────────────────────────────────────────────────

type historyRepo struct{ st *state }

func (r *historyRepo) Append(_ context.Context, e *entity.HistoryEntry) error {
	r.st.seq++
	e.Seq = r.st.seq
	r.st.history = append(r.st.history, copyEntry(e))
	return nil
}

func (r *historyRepo) ListByInstance(_ context.Context, tenantID, instanceID string, limit, offset int) ([]*entity.HistoryEntry, error) {
	out := r.filter(func(e *entity.HistoryEntry) bool {
		return e.TenantID == tenantID && e.InstanceID == instanceID
	})
	return page(out, limit, offset), nil
}

func (r *historyRepo) ListByStep(_ context.Context, tenantID, instanceID string, stepOrder int) ([]*entity.HistoryEntry, error) {
	return r.filter(func(e *entity.HistoryEntry) bool {
		return e.TenantID == tenantID && e.InstanceID == instanceID && e.StepOrder == stepOrder
	}), nil
}

func (r *historyRepo) filter(keep func(*entity.HistoryEntry) bool) []*entity.HistoryEntry {
	out := []*entity.HistoryEntry{}
	for _, e := range r.st.history {
		if keep(e) {
			out = append(out, copyEntry(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// ── delegations ───────────────────────────────────────────────────────────────

type delegationRepo struct{ st *state }

func (r *delegationRepo) Create(_ context.Context, d *entity.Delegation) error {
	if _, ok := r.st.delegations[d.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.delegations[d.ID] = copyDelegation(d)
	return nil
}

func (r *delegationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Delegation, error) {
	d, ok := r.st.delegations[id]
	if !ok || d.TenantID != tenantID {
		return nil, nil
	}
	return copyDelegation(d), nil
}

func (r *delegationRepo) ListActiveByUser(_ context.Context, tenantID, userID string) ([]*entity.Delegation, error) {
	return r.filter(func(d *entity.Delegation) bool {
		return d.TenantID == tenantID && d.UserID == userID
	}), nil
}

func (r *delegationRepo) ListCovering(_ context.Context, tenantID, userID string, date time.Time) ([]*entity.Delegation, error) {
	return r.filter(func(d *entity.Delegation) bool {
		return d.TenantID == tenantID && d.UserID == userID && d.Covers(date)
	}), nil
}

func (r *delegationRepo) ListByDelegateCovering(_ context.Context, tenantID, delegateID string, date time.Time) ([]*entity.Delegation, error) {
	return r.filter(func(d *entity.Delegation) bool {
		return d.TenantID == tenantID && d.DelegateUserID == delegateID && d.Covers(date)
	}), nil
}

func (r *delegationRepo) ListInvolving(_ context.Context, tenantID, userID string) ([]*entity.Delegation, error) {
	return r.filter(func(d *entity.Delegation) bool {
		return d.TenantID == tenantID && (d.UserID == userID || d.DelegateUserID == userID)
	}), nil
}

func (r *delegationRepo) SoftDelete(_ context.Context, tenantID, id string) error {
	d, ok := r.st.delegations[id]
	if !ok || d.TenantID != tenantID || !d.Lifecycle.IsActive() {
		return domain.ErrNotFound
	}
	d.Lifecycle = entity.LifecycleDeleted
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// filter devuelve copias de las delegaciones activas que cumplen keep, ordenadas por fecha de inicio.
func (r *delegationRepo) filter(keep func(*entity.Delegation) bool) []*entity.Delegation {
	out := []*entity.Delegation{}
	for _, d := range r.st.delegations {
		if d.Lifecycle.IsActive() && keep(d) {
			out = append(out, copyDelegation(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ── form templates ────────────────────────────────────────────────────────────

type templateRepo struct{ st *state }

func (r *templateRepo) Create(_ context.Context, t *entity.FormTemplate) error {
	if _, ok := r.st.templates[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.templates[t.ID] = copyTemplate(t)
	return nil
}

func (r *templateRepo) GetByID(_ context.Context, tenantID, id string) (*entity.FormTemplate, error) {
	t, ok := r.st.templates[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	return copyTemplate(t), nil
}

func (r *templateRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.FormTemplate, error) {
	var out []*entity.FormTemplate
	for _, t := range r.st.templates {
		if t.TenantID == tenantID && t.Lifecycle.IsActive() {
			out = append(out, copyTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

var (
	_ repository.TenantRepository       = (*tenantRepo)(nil)
	_ repository.UserRepository         = (*userRepo)(nil)
	_ repository.RouteRepository        = (*routeRepo)(nil)
	_ repository.ApprovalRepository     = (*approvalRepo)(nil)
	_ repository.HistoryRepository      = (*historyRepo)(nil)
	_ repository.DelegationRepository   = (*delegationRepo)(nil)
	_ repository.FormTemplateRepository = (*templateRepo)(nil)
)
