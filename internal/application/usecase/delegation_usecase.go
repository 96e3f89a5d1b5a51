package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
)

// DelegationUseCase alta, consulta y baja de delegaciones de aprobación.
type DelegationUseCase struct {
	txRunner ports.TxRunner
	clock    ports.Clock
}

// NewDelegationUseCase construye el caso de uso.
func NewDelegationUseCase(txRunner ports.TxRunner, clock ports.Clock) *DelegationUseCase {
	return &DelegationUseCase{txRunner: txRunner, clock: clock}
}

// Create registra una delegación. La verificación de superposición y la inserción ocurren
// con la fila del delegante bloqueada, así dos altas concurrentes no pueden superponerse.
func (uc *DelegationUseCase) Create(ctx context.Context, caller entity.Caller, in dto.CreateDelegationRequest) (*dto.DelegationResponse, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && caller.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: solo un admin puede delegar en nombre de otro usuario", domain.ErrForbidden)
	}

	// 1. Fechas civiles y ventana
	start, err := workflow.ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := workflow.ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	delegateID := strings.TrimSpace(in.DelegateUserID)
	if err := workflow.ValidateWindow(userID, delegateID, start, end); err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	d := &entity.Delegation{
		ID:             uuid.New().String(),
		TenantID:       caller.TenantID,
		UserID:         userID,
		DelegateUserID: delegateID,
		StartDate:      start,
		EndDate:        end,
		Reason:         strings.TrimSpace(in.Reason),
		Lifecycle:      entity.LifecycleActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		// 2. Bloquear al delegante
		delegator, err := repos.Users.GetForUpdate(ctx, caller.TenantID, userID)
		if err != nil {
			return err
		}
		if delegator == nil || !delegator.Lifecycle.IsActive() {
			return domain.ErrUserNotFound
		}

		// 3. Delegado activo y del mismo tenant
		delegate, err := repos.Users.GetByID(ctx, delegateID)
		if err != nil {
			return err
		}
		if delegate == nil || !delegate.Lifecycle.IsActive() {
			return domain.ErrDelegateNotFound
		}
		if delegate.TenantID != caller.TenantID {
			return domain.ErrTenantMismatch
		}

		// 4. Sin superposición con otra delegación activa del mismo delegante
		existing, err := repos.Delegations.ListActiveByUser(ctx, caller.TenantID, userID)
		if err != nil {
			return err
		}
		if other := workflow.FindOverlap(existing, start, end); other != nil {
			return fmt.Errorf("%w: %s..%s", domain.ErrDelegationOverlap,
				workflow.FormatDate(other.StartDate), workflow.FormatDate(other.EndDate))
		}
		return repos.Delegations.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return toDelegationResponse(d), nil
}

// List devuelve las delegaciones activas donde el llamador es delegante o delegado.
func (uc *DelegationUseCase) List(ctx context.Context, caller entity.Caller) (*dto.DelegationListResponse, error) {
	resp := &dto.DelegationListResponse{Items: []dto.DelegationResponse{}}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		list, err := repos.Delegations.ListInvolving(ctx, caller.TenantID, caller.UserID)
		if err != nil {
			return err
		}
		for _, d := range list {
			resp.Items = append(resp.Items, *toDelegationResponse(d))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete revoca una delegación. Solo el delegante o un admin pueden revocarla.
func (uc *DelegationUseCase) Delete(ctx context.Context, caller entity.Caller, id string) error {
	return uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		d, err := repos.Delegations.GetByID(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}
		if d == nil || !d.Lifecycle.IsActive() {
			return fmt.Errorf("%w: delegación", domain.ErrNotFound)
		}
		if d.UserID != caller.UserID && caller.Role != entity.RoleAdmin {
			return domain.ErrForbidden
		}
		return repos.Delegations.SoftDelete(ctx, caller.TenantID, id)
	})
}

func toDelegationResponse(d *entity.Delegation) *dto.DelegationResponse {
	return &dto.DelegationResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		DelegateUserID: d.DelegateUserID,
		StartDate:      workflow.FormatDate(d.StartDate),
		EndDate:        workflow.FormatDate(d.EndDate),
		Reason:         d.Reason,
		CreatedAt:      d.CreatedAt,
	}
}
