package workflow

import (
	"errors"
	"fmt"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// ErrCorruptHistory el historial no describe una secuencia de transiciones válida.
var ErrCorruptHistory = errors.New("historial inconsistente")

// State estado derivable de una solicitud.
type State struct {
	Status      entity.ApprovalStatus
	CurrentStep int
}

// Replay reconstruye el estado de una solicitud a partir de sus pasos y su historial ordenado.
// Valida cada transición: ninguna acción de decisión después de un estado terminal, las
// decisiones se registran en el paso vigente y el paso solo avanza al siguiente orden.
func Replay(steps []entity.Step, entries []*entity.HistoryEntry) (State, error) {
	first, ok := FirstOrder(steps)
	if !ok {
		return State{}, fmt.Errorf("%w: solicitud sin pasos", ErrCorruptHistory)
	}
	st := State{Status: entity.StatusPending, CurrentStep: first}

	for i, e := range entries {
		if e.Action == entity.ActionCommented {
			continue
		}
		if st.Status.Terminal() {
			return State{}, fmt.Errorf("%w: entrada %d (%s) después del estado %s", ErrCorruptHistory, i, e.Action, st.Status)
		}
		switch e.Action {
		case entity.ActionApproved, entity.ActionRejected:
			if e.StepOrder != st.CurrentStep {
				return State{}, fmt.Errorf("%w: entrada %d en el paso %d, vigente %d", ErrCorruptHistory, i, e.StepOrder, st.CurrentStep)
			}
		case entity.ActionWithdrawn:
		default:
			return State{}, fmt.Errorf("%w: acción desconocida %q", ErrCorruptHistory, e.Action)
		}

		next, err := expected(steps, st, e)
		if err != nil {
			return State{}, fmt.Errorf("entrada %d: %w", i, err)
		}
		st = next
	}
	return st, nil
}

// expected valida que StatusAfter/StepAfter de la entrada sea una transición permitida desde st.
func expected(steps []entity.Step, st State, e *entity.HistoryEntry) (State, error) {
	after := State{Status: e.StatusAfter, CurrentStep: e.StepAfter}
	switch e.Action {
	case entity.ActionRejected:
		if after.Status != entity.StatusRejected {
			return State{}, fmt.Errorf("%w: rechazo con estado %s", ErrCorruptHistory, after.Status)
		}
	case entity.ActionWithdrawn:
		if after.Status != entity.StatusWithdrawn {
			return State{}, fmt.Errorf("%w: retiro con estado %s", ErrCorruptHistory, after.Status)
		}
	case entity.ActionApproved:
		switch after.Status {
		case entity.StatusPending:
			next, hasNext := NextOrder(steps, st.CurrentStep)
			if after.CurrentStep != st.CurrentStep && !(hasNext && after.CurrentStep == next) {
				return State{}, fmt.Errorf("%w: salto de paso %d a %d", ErrCorruptHistory, st.CurrentStep, after.CurrentStep)
			}
		case entity.StatusApproved:
			if st.CurrentStep != LastOrder(steps) {
				return State{}, fmt.Errorf("%w: aprobación final en el paso %d", ErrCorruptHistory, st.CurrentStep)
			}
		default:
			return State{}, fmt.Errorf("%w: aprobación con estado %s", ErrCorruptHistory, after.Status)
		}
	}
	return after, nil
}
