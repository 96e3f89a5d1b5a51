// Package memory implementa los puertos de persistencia en memoria. Cada transacción toma
// el mutex del store durante toda su duración y, si falla, restaura la copia previa.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// Store almacén en memoria, seguro para uso concurrente.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	tenants     map[string]*entity.Tenant
	users       map[string]*entity.User
	routes      map[string]*entity.Route
	instances   map[string]*entity.ApprovalInstance
	history     []*entity.HistoryEntry
	delegations map[string]*entity.Delegation
	templates   map[string]*entity.FormTemplate
	seq         int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		tenants:     make(map[string]*entity.Tenant),
		users:       make(map[string]*entity.User),
		routes:      make(map[string]*entity.Route),
		instances:   make(map[string]*entity.ApprovalInstance),
		delegations: make(map[string]*entity.Delegation),
		templates:   make(map[string]*entity.FormTemplate),
	}
}

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn con acceso exclusivo al store. Si fn devuelve error el estado vuelve al previo.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(s.repositories(s.state)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) repositories(st *state) ports.Repositories {
	return ports.Repositories{
		Tenants:     &tenantRepo{st: st},
		Users:       &userRepo{st: st},
		Routes:      &routeRepo{st: st},
		Approvals:   &approvalRepo{st: st},
		History:     &historyRepo{st: st},
		Delegations: &delegationRepo{st: st},
		Templates:   &templateRepo{st: st},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.tenants {
		c.tenants[k] = copyTenant(v)
	}
	for k, v := range st.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range st.routes {
		c.routes[k] = copyRoute(v)
	}
	for k, v := range st.instances {
		c.instances[k] = copyInstance(v)
	}
	c.history = make([]*entity.HistoryEntry, len(st.history))
	for i, e := range st.history {
		c.history[i] = copyEntry(e)
	}
	for k, v := range st.delegations {
		c.delegations[k] = copyDelegation(v)
	}
	for k, v := range st.templates {
		c.templates[k] = copyTemplate(v)
	}
	c.seq = st.seq
	return c
}

func copyTenant(t *entity.Tenant) *entity.Tenant {
	c := *t
	return &c
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func copySteps(steps []entity.Step) []entity.Step {
	if steps == nil {
		return nil
	}
	out := make([]entity.Step, len(steps))
	copy(out, steps)
	return out
}

func copyRoute(r *entity.Route) *entity.Route {
	c := *r
	c.Steps = copySteps(r.Steps)
	return &c
}

func copyInstance(i *entity.ApprovalInstance) *entity.ApprovalInstance {
	c := *i
	c.Steps = copySteps(i.Steps)
	if i.Form.Data != nil {
		c.Form.Data = append([]byte(nil), i.Form.Data...)
	}
	if i.TemplateID != nil {
		id := *i.TemplateID
		c.TemplateID = &id
	}
	return &c
}

func copyEntry(e *entity.HistoryEntry) *entity.HistoryEntry {
	c := *e
	return &c
}

func copyDelegation(d *entity.Delegation) *entity.Delegation {
	c := *d
	return &c
}

func copyTemplate(t *entity.FormTemplate) *entity.FormTemplate {
	c := *t
	c.Fields = make([]entity.FormField, len(t.Fields))
	copy(c.Fields, t.Fields)
	for i, f := range t.Fields {
		c.Fields[i].Options = append([]string(nil), f.Options...)
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
