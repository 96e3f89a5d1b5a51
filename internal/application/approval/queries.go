package approval

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Aprobaciones-api/pkg/telemetry"
)

// Get devuelve la solicitud con el avance de cada paso y su historial completo.
func (e *Engine) Get(ctx context.Context, caller entity.Caller, instanceID string) (detail *Detail, err error) {
	ctx, span := e.start(ctx, "get", caller, attribute.String("instance.id", instanceID))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	asOf := e.today()

	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		inst, err := repos.Approvals.GetByID(ctx, caller.TenantID, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return domain.ErrInstanceNotFound
		}
		history, err := repos.History.ListByInstance(ctx, caller.TenantID, inst.ID, 0, 0)
		if err != nil {
			return err
		}
		steps, err := e.progress(ctx, repos, inst, history, asOf)
		if err != nil {
			return err
		}
		detail = &Detail{Instance: inst, Steps: steps, History: history}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (e *Engine) progress(ctx context.Context, repos ports.Repositories, inst *entity.ApprovalInstance, history []*entity.HistoryEntry, asOf time.Time) ([]StepProgress, error) {
	orders := workflow.Orders(inst.Steps)
	out := make([]StepProgress, 0, len(orders))
	for _, order := range orders {
		var group workflow.Group
		var err error
		if order == inst.CurrentStep && inst.Status == entity.StatusPending {
			group, err = EffectiveApprovers(ctx, repos.Delegations, inst.TenantID, inst.Steps, order, asOf)
			if err != nil {
				return nil, err
			}
		} else {
			group, _ = workflow.ResolveGroup(inst.Steps, order, func(n string) (string, error) { return n, nil })
		}

		approved := workflow.ApprovalsAt(history, order)
		sp := StepProgress{Order: order, Quorum: group.Quorum, Status: stepStatus(inst, order)}
		for _, slot := range group.Slots {
			sp.Approvers = append(sp.Approvers, ApproverProgress{
				Nominal:   slot.Nominal,
				Effective: slot.Effective,
				Approved:  approved[slot.Effective] || approved[slot.Nominal],
			})
		}
		out = append(out, sp)
	}
	return out, nil
}

func stepStatus(inst *entity.ApprovalInstance, order int) string {
	switch {
	case order < inst.CurrentStep:
		return StepApproved
	case order > inst.CurrentStep:
		return StepWaiting
	}
	switch inst.Status {
	case entity.StatusPending:
		return StepPending
	case entity.StatusRejected:
		return StepRejected
	default:
		return StepWaiting
	}
}

// List lista solicitudes del tenant según el alcance:
//   - mine: las creadas por el llamador;
//   - assigned: pendientes cuyo paso actual tiene al llamador como aprobador efectivo hoy,
//     incluidas las que recibe por delegación;
//   - all: todas (solo admin y manager).
func (e *Engine) List(ctx context.Context, caller entity.Caller, in ListInput) (res *ListResult, err error) {
	ctx, span := e.start(ctx, "list", caller, attribute.String("scope", in.Scope))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	limit, offset := clampPage(in.Limit, in.Offset)
	filter := repository.ApprovalFilter{TenantID: caller.TenantID, Status: in.Status, Limit: limit, Offset: offset}

	switch in.Scope {
	case "", ScopeMine:
		filter.ApplicantID = caller.UserID
	case ScopeAll:
		if caller.Role != entity.RoleAdmin && caller.Role != entity.RoleManager {
			return nil, domain.ErrForbidden
		}
	case ScopeAssigned:
		return e.listAssigned(ctx, caller, in.Status, limit, offset)
	default:
		return nil, fmt.Errorf("%w: alcance %q", domain.ErrInvalidInput, in.Scope)
	}

	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		items, total, err := repos.Approvals.List(ctx, filter)
		if err != nil {
			return err
		}
		res = &ListResult{Items: items, Total: total, Limit: limit, Offset: offset}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) listAssigned(ctx context.Context, caller entity.Caller, status entity.ApprovalStatus, limit, offset int) (*ListResult, error) {
	res := &ListResult{Items: []*entity.ApprovalInstance{}, Limit: limit, Offset: offset}
	if status != "" && status != entity.StatusPending {
		return res, nil
	}
	asOf := e.today()

	err := e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		nominals := []string{caller.UserID}
		incoming, err := repos.Delegations.ListByDelegateCovering(ctx, caller.TenantID, caller.UserID, asOf)
		if err != nil {
			return err
		}
		for _, d := range incoming {
			nominals = append(nominals, d.UserID)
		}

		candidates, _, err := repos.Approvals.List(ctx, repository.ApprovalFilter{
			TenantID:    caller.TenantID,
			Status:      entity.StatusPending,
			ApproverIDs: nominals,
		})
		if err != nil {
			return err
		}

		var assigned []*entity.ApprovalInstance
		for _, inst := range candidates {
			if inst.ApplicantID == caller.UserID {
				continue
			}
			group, err := EffectiveApprovers(ctx, repos.Delegations, caller.TenantID, inst.Steps, inst.CurrentStep, asOf)
			if err != nil {
				return err
			}
			if group.IsEffective(caller.UserID) {
				assigned = append(assigned, inst)
			}
		}

		res.Total = len(assigned)
		if offset < len(assigned) {
			end := offset + limit
			if end > len(assigned) {
				end = len(assigned)
			}
			res.Items = assigned[offset:end]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// History devuelve el historial de la solicitud en orden cronológico. limit <= 0 devuelve todo.
func (e *Engine) History(ctx context.Context, caller entity.Caller, instanceID string, limit, offset int) (entries []*entity.HistoryEntry, err error) {
	ctx, span := e.start(ctx, "history", caller, attribute.String("instance.id", instanceID))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		inst, err := repos.Approvals.GetByID(ctx, caller.TenantID, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return domain.ErrInstanceNotFound
		}
		entries, err = repos.History.ListByInstance(ctx, caller.TenantID, inst.ID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Verify reconstruye el estado de la solicitud a partir del historial y lo compara con el persistido.
func (e *Engine) Verify(ctx context.Context, caller entity.Caller, instanceID string) (v *Verification, err error) {
	ctx, span := e.start(ctx, "verify", caller, attribute.String("instance.id", instanceID))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		inst, err := repos.Approvals.GetByID(ctx, caller.TenantID, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return domain.ErrInstanceNotFound
		}
		history, err := repos.History.ListByInstance(ctx, caller.TenantID, inst.ID, 0, 0)
		if err != nil {
			return err
		}
		replayed, err := workflow.Replay(inst.Steps, history)
		if err != nil {
			return err
		}
		v = &Verification{
			Stored:   workflow.State{Status: inst.Status, CurrentStep: inst.CurrentStep},
			Replayed: replayed,
			Entries:  len(history),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !v.Consistent() {
		e.log.Warn().
			Str("instance_id", instanceID).
			Str("tenant_id", caller.TenantID).
			Str("stored_status", string(v.Stored.Status)).
			Str("replayed_status", string(v.Replayed.Status)).
			Msg("estado persistido difiere del historial")
	}
	return v, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
