package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/form"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Aprobaciones-api/pkg/telemetry"
)

// Create abre una solicitud pendiente contra una ruta utilizable del tenant del llamador.
// Los pasos de la ruta se copian en la solicitud: editar la ruta después no la afecta.
func (e *Engine) Create(ctx context.Context, caller entity.Caller, in CreateInput) (inst *entity.ApprovalInstance, err error) {
	ctx, span := e.start(ctx, "create", caller, attribute.String("route.id", in.RouteID))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || in.RouteID == "" {
		return nil, fmt.Errorf("%w: ruta y título son obligatorios", domain.ErrInvalidInput)
	}
	if err := form.ValidatePayload(in.Form); err != nil {
		return nil, err
	}

	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		if err := activeActor(ctx, repos, caller); err != nil {
			return err
		}

		route, err := repos.Routes.GetByID(ctx, caller.TenantID, in.RouteID)
		if err != nil {
			return err
		}
		if route == nil || route.TenantID != caller.TenantID || !route.Usable() {
			return domain.ErrRouteNotFound
		}
		if blocked := workflow.SoleApproverGroups(route.Steps, caller.UserID); len(blocked) > 0 {
			return fmt.Errorf("%w: el solicitante es el único aprobador del paso %d", domain.ErrInvalidInput, blocked[0])
		}

		if in.TemplateID != nil && *in.TemplateID != "" {
			tpl, err := repos.Templates.GetByID(ctx, caller.TenantID, *in.TemplateID)
			if err != nil {
				return err
			}
			if tpl == nil || !tpl.Lifecycle.IsActive() {
				return fmt.Errorf("%w: plantilla de formulario", domain.ErrNotFound)
			}
			if err := form.Validate(tpl, in.Form); err != nil {
				return err
			}
		}

		first, _ := workflow.FirstOrder(route.Steps)
		now := e.now()
		steps := make([]entity.Step, len(route.Steps))
		copy(steps, route.Steps)

		inst = &entity.ApprovalInstance{
			ID:           uuid.New().String(),
			TenantID:     caller.TenantID,
			RouteID:      route.ID,
			RouteVersion: route.Version,
			ApplicantID:  caller.UserID,
			Title:        strings.TrimSpace(in.Title),
			Description:  in.Description,
			Form:         in.Form,
			TemplateID:   in.TemplateID,
			Status:       entity.StatusPending,
			CurrentStep:  first,
			TotalSteps:   workflow.TotalSteps(steps),
			Steps:        steps,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return repos.Approvals.Create(ctx, inst)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("instance_id", inst.ID).
		Str("tenant_id", inst.TenantID).
		Str("route_id", inst.RouteID).
		Int("total_steps", inst.TotalSteps).
		Msg("solicitud creada")
	return inst, nil
}

// Act registra la decisión del llamador sobre el paso actual de la solicitud.
//
// Con la fila de la solicitud bloqueada, en orden: existencia, estado pendiente, que el llamador
// no sea el solicitante y que sea aprobador efectivo del paso actual hoy. Un rechazo termina la
// solicitud. Una aprobación completa el paso según su quórum; completar el último paso la aprueba.
func (e *Engine) Act(ctx context.Context, caller entity.Caller, instanceID string, decision entity.Decision, comment string) (res *ActResult, err error) {
	ctx, span := e.start(ctx, "act", caller,
		attribute.String("instance.id", instanceID),
		attribute.String("decision", string(decision)),
	)
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	if decision != entity.DecisionApprove && decision != entity.DecisionReject {
		return nil, fmt.Errorf("%w: decisión %q", domain.ErrInvalidInput, decision)
	}
	asOf := e.today()

	var excluded []string
	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		excluded = nil
		if err := activeActor(ctx, repos, caller); err != nil {
			return err
		}
		inst, err := repos.Approvals.GetForUpdate(ctx, caller.TenantID, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return domain.ErrInstanceNotFound
		}
		if inst.Status != entity.StatusPending {
			return domain.ErrNotPending
		}
		if inst.ApplicantID == caller.UserID {
			return domain.ErrSelfActionForbidden
		}

		group, err := EffectiveApprovers(ctx, repos.Delegations, caller.TenantID, inst.Steps, inst.CurrentStep, asOf)
		if err != nil {
			return err
		}
		if !group.IsEffective(caller.UserID) {
			return domain.ErrNotAuthorizedApprover
		}

		now := e.now()
		order := inst.CurrentStep
		res = &ActResult{}

		switch decision {
		case entity.DecisionReject:
			inst.Status = entity.StatusRejected
		case entity.DecisionApprove:
			prior, err := repos.History.ListByStep(ctx, caller.TenantID, inst.ID, order)
			if err != nil {
				return err
			}
			approved := workflow.ApprovalsAt(prior, order)
			res.Duplicate = approved[caller.UserID]
			approved[caller.UserID] = true
			// Una delegación posterior puede dejar cubierto el grupo con aprobaciones ya registradas:
			// la repetición entonces completa el paso.
			if group.Satisfied(approved, inst.ApplicantID) {
				res.Advanced = true
				res.Duplicate = false
				if group.Quorum == entity.QuorumAll {
					excluded = group.ApplicantSlots(inst.ApplicantID)
				}
				if next, ok := workflow.NextOrder(inst.Steps, order); ok {
					inst.CurrentStep = next
				} else {
					inst.Status = entity.StatusApproved
					inst.CurrentStep = workflow.LastOrder(inst.Steps) + 1
					res.Completed = true
				}
			}
		}

		action := entity.ActionApproved
		if decision == entity.DecisionReject {
			action = entity.ActionRejected
		}
		entry := &entity.HistoryEntry{
			ID:          uuid.New().String(),
			TenantID:    caller.TenantID,
			InstanceID:  inst.ID,
			StepOrder:   order,
			ActorID:     caller.UserID,
			Action:      action,
			Comment:     strings.TrimSpace(comment),
			StatusAfter: inst.Status,
			StepAfter:   inst.CurrentStep,
			CreatedAt:   now,
		}
		if err := repos.History.Append(ctx, entry); err != nil {
			return err
		}
		if !res.Duplicate {
			inst.UpdatedAt = now
			if err := repos.Approvals.UpdateState(ctx, inst); err != nil {
				return err
			}
		}
		res.Instance = inst
		res.Entry = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDelegationIntegrity) {
			e.log.Tenant(caller.TenantID, caller.UserID).Warn().Err(err).
				Str("instance_id", instanceID).
				Msg("delegaciones superpuestas: revisar datos")
		}
		return nil, err
	}

	log := e.log.Tenant(res.Instance.TenantID, caller.UserID)
	if len(excluded) > 0 {
		log.Warn().
			Str("instance_id", res.Instance.ID).
			Int("step", res.Entry.StepOrder).
			Strs("excluded_approvers", excluded).
			Msg("paso completado sin los puestos delegados al solicitante")
	}
	ev := log.Info()
	if res.Duplicate {
		ev = log.Warn()
	}
	ev.Str("instance_id", res.Instance.ID).
		Str("action", string(res.Entry.Action)).
		Str("status", string(res.Instance.Status)).
		Int("step", res.Instance.CurrentStep).
		Bool("duplicate", res.Duplicate).
		Msg("decisión registrada")
	return res, nil
}

// Withdraw retira una solicitud pendiente. Solo el solicitante puede hacerlo.
func (e *Engine) Withdraw(ctx context.Context, caller entity.Caller, instanceID, comment string) (inst *entity.ApprovalInstance, err error) {
	ctx, span := e.start(ctx, "withdraw", caller, attribute.String("instance.id", instanceID))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}

	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		if err := activeActor(ctx, repos, caller); err != nil {
			return err
		}
		inst, err = repos.Approvals.GetForUpdate(ctx, caller.TenantID, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return domain.ErrInstanceNotFound
		}
		if inst.ApplicantID != caller.UserID {
			return domain.ErrNotApplicant
		}
		if inst.Status != entity.StatusPending {
			return domain.ErrNotPending
		}

		now := e.now()
		inst.Status = entity.StatusWithdrawn
		inst.UpdatedAt = now
		entry := &entity.HistoryEntry{
			ID:          uuid.New().String(),
			TenantID:    caller.TenantID,
			InstanceID:  inst.ID,
			StepOrder:   inst.CurrentStep,
			ActorID:     caller.UserID,
			Action:      entity.ActionWithdrawn,
			Comment:     strings.TrimSpace(comment),
			StatusAfter: inst.Status,
			StepAfter:   inst.CurrentStep,
			CreatedAt:   now,
		}
		if err := repos.History.Append(ctx, entry); err != nil {
			return err
		}
		return repos.Approvals.UpdateState(ctx, inst)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("instance_id", inst.ID).
		Str("tenant_id", inst.TenantID).
		Str("status", string(inst.Status)).
		Msg("solicitud retirada")
	return inst, nil
}

// Comment agrega un comentario al historial sin cambiar el estado. Pueden comentar el solicitante
// y cualquier aprobador nominal o efectivo (hoy) de los pasos de la solicitud, en cualquier estado.
func (e *Engine) Comment(ctx context.Context, caller entity.Caller, instanceID, comment string) (entry *entity.HistoryEntry, err error) {
	ctx, span := e.start(ctx, "comment", caller, attribute.String("instance.id", instanceID))
	defer func() { telemetry.End(span, err) }()

	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comentario vacío", domain.ErrInvalidInput)
	}
	asOf := e.today()

	err = e.txRunner.Run(ctx, func(repos ports.Repositories) error {
		if err := activeActor(ctx, repos, caller); err != nil {
			return err
		}
		inst, err := repos.Approvals.GetForUpdate(ctx, caller.TenantID, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return domain.ErrInstanceNotFound
		}
		allowed, err := e.participates(ctx, repos, inst, caller.UserID, asOf)
		if err != nil {
			return err
		}
		if !allowed {
			return domain.ErrNotAuthorizedApprover
		}

		entry = &entity.HistoryEntry{
			ID:          uuid.New().String(),
			TenantID:    caller.TenantID,
			InstanceID:  inst.ID,
			StepOrder:   inst.CurrentStep,
			ActorID:     caller.UserID,
			Action:      entity.ActionCommented,
			Comment:     comment,
			StatusAfter: inst.Status,
			StepAfter:   inst.CurrentStep,
			CreatedAt:   e.now(),
		}
		return repos.History.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	e.log.Tenant(caller.TenantID, caller.UserID).Debug().Str("instance_id", instanceID).Msg("comentario registrado")
	return entry, nil
}

func (e *Engine) participates(ctx context.Context, repos ports.Repositories, inst *entity.ApprovalInstance, userID string, asOf time.Time) (bool, error) {
	if inst.ApplicantID == userID {
		return true, nil
	}
	for _, s := range inst.Steps {
		if s.ApproverID == userID {
			return true, nil
		}
	}
	for _, order := range workflow.Orders(inst.Steps) {
		group, err := EffectiveApprovers(ctx, repos.Delegations, inst.TenantID, inst.Steps, order, asOf)
		if err != nil {
			return false, err
		}
		if group.IsEffective(userID) {
			return true, nil
		}
	}
	return false, nil
}

// activeActor exige que el llamador exista, esté activo y pertenezca al tenant del token.
// Un usuario dado de baja con un token vigente no puede operar.
func activeActor(ctx context.Context, repos ports.Repositories, caller entity.Caller) error {
	u, err := repos.Users.GetByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if u == nil || !u.Lifecycle.IsActive() {
		return domain.ErrUserNotFound
	}
	if u.TenantID != caller.TenantID {
		return domain.ErrTenantMismatch
	}
	return nil
}
