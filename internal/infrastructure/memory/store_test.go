package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
)

var ctx = context.Background()

func TestRun_RollbackRestauraElEstado(t *testing.T) {
	s := memory.NewStore()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos ports.Repositories) error {
		require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u1", TenantID: "t", Email: "a@t", Lifecycle: entity.LifecycleActive}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.Run(ctx, func(repos ports.Repositories) error {
		u, err := repos.Users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, u)
		return nil
	}))
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := memory.NewStore()
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err := s.Run(cctx, func(ports.Repositories) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepos_DevuelvenCopias(t *testing.T) {
	s := memory.NewStore()
	require.NoError(t, s.Run(ctx, func(repos ports.Repositories) error {
		inst := &entity.ApprovalInstance{ID: "i1", TenantID: "t", Status: entity.StatusPending, CurrentStep: 1,
			Steps: []entity.Step{{Order: 1, ApproverID: "a"}}}
		require.NoError(t, repos.Approvals.Create(ctx, inst))
		inst.Steps[0].ApproverID = "mutado"

		got, err := repos.Approvals.GetByID(ctx, "t", "i1")
		require.NoError(t, err)
		assert.Equal(t, "a", got.Steps[0].ApproverID)

		other, err := repos.Approvals.GetByID(ctx, "otro", "i1")
		require.NoError(t, err)
		assert.Nil(t, other, "no cruza tenants")
		return nil
	}))
}

func TestHistory_OrdenYSeq(t *testing.T) {
	s := memory.NewStore()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Run(ctx, func(repos ports.Repositories) error {
		for i, at := range []time.Time{t0.Add(time.Second), t0, t0} {
			e := &entity.HistoryEntry{ID: string(rune('a' + i)), TenantID: "t", InstanceID: "i1", StepOrder: 1, Action: entity.ActionApproved, CreatedAt: at}
			require.NoError(t, repos.History.Append(ctx, e))
			assert.Equal(t, int64(i+1), e.Seq)
		}
		entries, err := repos.History.ListByInstance(ctx, "t", "i1", 0, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"b", "c", "a"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
		return nil
	}))
}

func TestApprovals_FiltroPorAprobador(t *testing.T) {
	s := memory.NewStore()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Run(ctx, func(repos ports.Repositories) error {
		steps := []entity.Step{{Order: 1, ApproverID: "a"}, {Order: 2, ApproverID: "b"}}
		require.NoError(t, repos.Approvals.Create(ctx, &entity.ApprovalInstance{ID: "i1", TenantID: "t", Status: entity.StatusPending, CurrentStep: 1, Steps: steps, CreatedAt: t0}))
		require.NoError(t, repos.Approvals.Create(ctx, &entity.ApprovalInstance{ID: "i2", TenantID: "t", Status: entity.StatusPending, CurrentStep: 2, Steps: steps, CreatedAt: t0.Add(time.Hour)}))
		require.NoError(t, repos.Approvals.Create(ctx, &entity.ApprovalInstance{ID: "i3", TenantID: "t", Status: entity.StatusApproved, CurrentStep: 3, Steps: steps, CreatedAt: t0}))

		items, total, err := repos.Approvals.List(ctx, repository.ApprovalFilter{TenantID: "t", ApproverIDs: []string{"a"}})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "i1", items[0].ID)

		items, total, err = repos.Approvals.List(ctx, repository.ApprovalFilter{TenantID: "t", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 1)
		assert.Equal(t, "i2", items[0].ID, "más recientes primero")
		return nil
	}))
}

func TestDelegations_ConsultasYBaja(t *testing.T) {
	s := memory.NewStore()
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Run(ctx, func(repos ports.Repositories) error {
		require.NoError(t, repos.Delegations.Create(ctx, &entity.Delegation{ID: "d1", TenantID: "t", UserID: "a", DelegateUserID: "b", StartDate: day(1), EndDate: day(5), Lifecycle: entity.LifecycleActive}))

		covering, err := repos.Delegations.ListCovering(ctx, "t", "a", day(5))
		require.NoError(t, err)
		assert.Len(t, covering, 1)

		incoming, err := repos.Delegations.ListByDelegateCovering(ctx, "t", "b", day(6))
		require.NoError(t, err)
		assert.Empty(t, incoming)

		involving, err := repos.Delegations.ListInvolving(ctx, "t", "b")
		require.NoError(t, err)
		assert.Len(t, involving, 1)

		require.NoError(t, repos.Delegations.SoftDelete(ctx, "t", "d1"))
		assert.ErrorIs(t, repos.Delegations.SoftDelete(ctx, "t", "d1"), domain.ErrNotFound)

		active, err := repos.Delegations.ListActiveByUser(ctx, "t", "a")
		require.NoError(t, err)
		assert.Empty(t, active)
		return nil
	}))
}
