package approval_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/approval"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
)

const (
	tenantID    = "tenant-acme"
	otherTenant = "tenant-globex"
)

// testClock reloj ajustable entre pasos de un test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	t      *testing.T
	store  *memory.Store
	clock  *testClock
	engine *approval.Engine
}

func newFixture(t *testing.T, opts ...approval.Option) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: memory.NewStore(),
		clock: &testClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
	}
	f.engine = approval.NewEngine(f.store, f.clock, logger.Nop(), opts...)

	f.run(func(repos ports.Repositories) error {
		for _, tn := range []string{tenantID, otherTenant} {
			if err := repos.Tenants.Create(context.Background(), &entity.Tenant{ID: tn, Name: tn, Slug: tn, Lifecycle: entity.LifecycleActive}); err != nil {
				return err
			}
		}
		for _, id := range []string{"P", "A", "B", "C", "D", "E"} {
			if err := repos.Users.Create(context.Background(), user(tenantID, id, entity.RoleMember)); err != nil {
				return err
			}
		}
		if err := repos.Users.Create(context.Background(), user(tenantID, "M", entity.RoleManager)); err != nil {
			return err
		}
		return repos.Users.Create(context.Background(), user(otherTenant, "X", entity.RoleAdmin))
	})
	return f
}

func user(tenant, id, role string) *entity.User {
	return &entity.User{ID: id, TenantID: tenant, Email: id + "@" + tenant, Name: id, Role: role, Lifecycle: entity.LifecycleActive}
}

func (f *fixture) run(fn func(repos ports.Repositories) error) {
	f.t.Helper()
	require.NoError(f.t, f.store.Run(context.Background(), fn))
}

// group describe un orden de la ruta.
type group struct {
	quorum    entity.Quorum
	approvers []string
}

func all(approvers ...string) group { return group{quorum: entity.QuorumAll, approvers: approvers} }
func anyOf(approvers ...string) group { return group{quorum: entity.QuorumAny, approvers: approvers} }

// route crea una ruta activa del tenant con un orden por grupo.
func (f *fixture) route(id string, groups ...group) *entity.Route {
	f.t.Helper()
	r := &entity.Route{ID: id, TenantID: tenantID, Name: id, NameKey: id, IsActive: true, Version: 1, Lifecycle: entity.LifecycleActive}
	for i, g := range groups {
		for _, a := range g.approvers {
			r.Steps = append(r.Steps, entity.Step{ID: id + "-" + a, RouteID: id, TenantID: tenantID, Order: i + 1, ApproverID: a, Quorum: g.quorum, IsRequired: true})
		}
	}
	f.run(func(repos ports.Repositories) error { return repos.Routes.Create(context.Background(), r) })
	return r
}

func (f *fixture) delegate(from, to, start, end string) {
	f.t.Helper()
	s, err := workflow.ParseDate(start)
	require.NoError(f.t, err)
	e, err := workflow.ParseDate(end)
	require.NoError(f.t, err)
	d := &entity.Delegation{ID: from + "->" + to + "@" + start, TenantID: tenantID, UserID: from, DelegateUserID: to, StartDate: s, EndDate: e, Lifecycle: entity.LifecycleActive}
	f.run(func(repos ports.Repositories) error { return repos.Delegations.Create(context.Background(), d) })
}

func (f *fixture) create(applicant, routeID string) *entity.ApprovalInstance {
	f.t.Helper()
	inst, err := f.engine.Create(context.Background(), caller(applicant), approval.CreateInput{RouteID: routeID, Title: "Compra de equipos"})
	require.NoError(f.t, err)
	return inst
}

func (f *fixture) approve(actor, instanceID string) (*approval.ActResult, error) {
	return f.engine.Act(context.Background(), caller(actor), instanceID, entity.DecisionApprove, "ok")
}

func (f *fixture) reject(actor, instanceID string) (*approval.ActResult, error) {
	return f.engine.Act(context.Background(), caller(actor), instanceID, entity.DecisionReject, "no")
}

func caller(userID string) entity.Caller {
	role := entity.RoleMember
	if userID == "M" {
		role = entity.RoleManager
	}
	return entity.Caller{TenantID: tenantID, UserID: userID, Role: role}
}
