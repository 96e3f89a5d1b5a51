package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
)

func entry(order int, actor string, action entity.HistoryAction, status entity.ApprovalStatus, after int) *entity.HistoryEntry {
	return &entity.HistoryEntry{StepOrder: order, ActorID: actor, Action: action, StatusAfter: status, StepAfter: after}
}

func TestReplay_SinHistorialQuedaPendiente(t *testing.T) {
	st, err := workflow.Replay([]entity.Step{step(1, "a", "")}, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.State{Status: entity.StatusPending, CurrentStep: 1}, st)
}

func TestReplay_AprobacionCompleta(t *testing.T) {
	steps := []entity.Step{step(1, "a", entity.QuorumAll), step(1, "b", entity.QuorumAll), step(2, "c", "")}
	entries := []*entity.HistoryEntry{
		entry(1, "a", entity.ActionApproved, entity.StatusPending, 1),
		entry(1, "x", entity.ActionCommented, entity.StatusPending, 1),
		entry(1, "b", entity.ActionApproved, entity.StatusPending, 2),
		entry(2, "c", entity.ActionApproved, entity.StatusApproved, 3),
		entry(3, "a", entity.ActionCommented, entity.StatusApproved, 3),
	}

	st, err := workflow.Replay(steps, entries)
	require.NoError(t, err)
	assert.Equal(t, workflow.State{Status: entity.StatusApproved, CurrentStep: 3}, st)
}

func TestReplay_RechazoYRetiro(t *testing.T) {
	steps := []entity.Step{step(1, "a", ""), step(2, "b", "")}

	st, err := workflow.Replay(steps, []*entity.HistoryEntry{
		entry(1, "a", entity.ActionApproved, entity.StatusPending, 2),
		entry(2, "b", entity.ActionRejected, entity.StatusRejected, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, st.Status)

	st, err = workflow.Replay(steps, []*entity.HistoryEntry{
		entry(1, "p", entity.ActionWithdrawn, entity.StatusWithdrawn, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.State{Status: entity.StatusWithdrawn, CurrentStep: 1}, st)
}

func TestReplay_DetectaHistorialInconsistente(t *testing.T) {
	steps := []entity.Step{step(1, "a", ""), step(2, "b", ""), step(3, "c", "")}
	cases := map[string][]*entity.HistoryEntry{
		"acción después de terminal": {
			entry(1, "a", entity.ActionRejected, entity.StatusRejected, 1),
			entry(1, "a", entity.ActionApproved, entity.StatusPending, 2),
		},
		"decisión en paso no vigente": {
			entry(2, "b", entity.ActionApproved, entity.StatusPending, 3),
		},
		"salto de paso": {
			entry(1, "a", entity.ActionApproved, entity.StatusPending, 3),
		},
		"aprobación final prematura": {
			entry(1, "a", entity.ActionApproved, entity.StatusApproved, 4),
		},
		"rechazo sin estado rechazado": {
			entry(1, "a", entity.ActionRejected, entity.StatusPending, 1),
		},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := workflow.Replay(steps, entries)
			assert.ErrorIs(t, err, workflow.ErrCorruptHistory)
		})
	}
}
