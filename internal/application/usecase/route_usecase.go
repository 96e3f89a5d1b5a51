package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
)

// RouteUseCase casos de uso CRUD para rutas de aprobación y sus pasos.
type RouteUseCase struct {
	txRunner      ports.TxRunner
	clock         ports.Clock
	defaultQuorum entity.Quorum
}

// NewRouteUseCase construye el caso de uso. defaultQuorum se aplica a los grupos que no declaran quórum.
func NewRouteUseCase(txRunner ports.TxRunner, clock ports.Clock, defaultQuorum entity.Quorum) *RouteUseCase {
	if !defaultQuorum.Valid() {
		defaultQuorum = entity.QuorumAll
	}
	return &RouteUseCase{txRunner: txRunner, clock: clock, defaultQuorum: defaultQuorum}
}

// NameKey normaliza el nombre de una ruta para la unicidad por tenant (case folding y espacios).
func NameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// Create crea una ruta con sus pasos. Los aprobadores deben ser usuarios activos del tenant.
func (uc *RouteUseCase) Create(ctx context.Context, caller entity.Caller, in dto.CreateRouteRequest) (*dto.RouteResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	steps, err := workflow.NormalizeSteps(stepsFromRequest(in.Steps), uc.defaultQuorum)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	route := &entity.Route{
		ID:          uuid.New().String(),
		TenantID:    caller.TenantID,
		Name:        name,
		NameKey:     NameKey(name),
		Description: in.Description,
		IsActive:    in.IsActive == nil || *in.IsActive,
		Version:     1,
		Lifecycle:   entity.LifecycleActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	route.Steps = bindSteps(steps, route)

	err = uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		if err := checkApprovers(ctx, repos.Users, caller.TenantID, route.Steps); err != nil {
			return err
		}
		taken, err := repos.Routes.NameTaken(ctx, caller.TenantID, route.NameKey, "")
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: ya existe una ruta llamada %q", domain.ErrDuplicate, name)
		}
		return repos.Routes.Create(ctx, route)
	})
	if err != nil {
		return nil, err
	}
	return toRouteResponse(route), nil
}

// Update modifica una ruta con su fila bloqueada e incrementa Version.
// Las solicitudes en curso conservan la copia de pasos que tomaron al crearse.
func (uc *RouteUseCase) Update(ctx context.Context, caller entity.Caller, id string, in dto.UpdateRouteRequest) (*dto.RouteResponse, error) {
	var newSteps []entity.Step
	if in.Steps != nil {
		steps, err := workflow.NormalizeSteps(stepsFromRequest(in.Steps), uc.defaultQuorum)
		if err != nil {
			return nil, err
		}
		newSteps = steps
	}

	var route *entity.Route
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		var err error
		route, err = repos.Routes.GetForUpdate(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}
		if route == nil || !route.Lifecycle.IsActive() {
			return domain.ErrRouteNotFound
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name no puede ser vacío", domain.ErrInvalidInput)
			}
			route.Name = name
			route.NameKey = NameKey(name)
			taken, err := repos.Routes.NameTaken(ctx, caller.TenantID, route.NameKey, route.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: ya existe una ruta llamada %q", domain.ErrDuplicate, name)
			}
		}
		if in.Description != nil {
			route.Description = *in.Description
		}
		if in.IsActive != nil {
			route.IsActive = *in.IsActive
		}
		if newSteps != nil {
			if err := checkApprovers(ctx, repos.Users, caller.TenantID, newSteps); err != nil {
				return err
			}
			route.Steps = bindSteps(newSteps, route)
		}
		route.Version++
		route.UpdatedAt = uc.clock.Now().UTC()
		return repos.Routes.Update(ctx, route)
	})
	if err != nil {
		return nil, err
	}
	return toRouteResponse(route), nil
}

// GetByID obtiene una ruta no borrada del tenant.
func (uc *RouteUseCase) GetByID(ctx context.Context, caller entity.Caller, id string) (*dto.RouteResponse, error) {
	var out *dto.RouteResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		route, err := repos.Routes.GetByID(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}
		if route == nil || !route.Lifecycle.IsActive() {
			return domain.ErrRouteNotFound
		}
		out = toRouteResponse(route)
		return nil
	})
	return out, err
}

// List lista rutas del tenant; onlyActive filtra las inactivas.
func (uc *RouteUseCase) List(ctx context.Context, caller entity.Caller, onlyActive bool, limit, offset int) (*dto.RouteListResponse, error) {
	resp := &dto.RouteListResponse{Items: []dto.RouteResponse{}, Page: dto.PageResponse{Limit: limit, Offset: offset}}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		list, err := repos.Routes.ListByTenant(ctx, caller.TenantID, onlyActive, limit, offset)
		if err != nil {
			return err
		}
		for _, r := range list {
			resp.Items = append(resp.Items, *toRouteResponse(r))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete da de baja lógica a la ruta. Las solicitudes existentes no se ven afectadas.
func (uc *RouteUseCase) Delete(ctx context.Context, caller entity.Caller, id string) error {
	return uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		return repos.Routes.SoftDelete(ctx, caller.TenantID, id)
	})
}

func stepsFromRequest(in []dto.StepRequest) []entity.Step {
	steps := make([]entity.Step, 0, len(in))
	for _, s := range in {
		steps = append(steps, entity.Step{
			Order:      s.Order,
			ApproverID: s.ApproverID,
			Quorum:     entity.Quorum(s.Quorum),
			IsRequired: s.IsRequired == nil || *s.IsRequired,
		})
	}
	return steps
}

func bindSteps(steps []entity.Step, route *entity.Route) []entity.Step {
	out := make([]entity.Step, len(steps))
	for i, s := range steps {
		s.ID = uuid.New().String()
		s.RouteID = route.ID
		s.TenantID = route.TenantID
		out[i] = s
	}
	return out
}

// checkApprovers valida que cada aprobador exista, esté activo y pertenezca al tenant.
func checkApprovers(ctx context.Context, users repository.UserRepository, tenantID string, steps []entity.Step) error {
	seen := make(map[string]bool)
	for _, s := range steps {
		if seen[s.ApproverID] {
			continue
		}
		seen[s.ApproverID] = true
		u, err := users.GetByID(ctx, s.ApproverID)
		if err != nil {
			return err
		}
		if u == nil || !u.Lifecycle.IsActive() {
			return fmt.Errorf("%w: aprobador %s", domain.ErrUserNotFound, s.ApproverID)
		}
		if u.TenantID != tenantID {
			return fmt.Errorf("%w: aprobador %s", domain.ErrTenantMismatch, s.ApproverID)
		}
	}
	return nil
}

func toRouteResponse(r *entity.Route) *dto.RouteResponse {
	if r == nil {
		return nil
	}
	steps := make([]dto.StepResponse, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, dto.StepResponse{
			ID:         s.ID,
			Order:      s.Order,
			ApproverID: s.ApproverID,
			Quorum:     string(s.Quorum),
			IsRequired: s.IsRequired,
		})
	}
	return &dto.RouteResponse{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		Version:     r.Version,
		TotalSteps:  workflow.TotalSteps(r.Steps),
		Steps:       steps,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
