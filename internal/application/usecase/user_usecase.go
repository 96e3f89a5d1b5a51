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
)

// UserUseCase aplica reglas de negocio para usuarios del tenant.
type UserUseCase struct {
	txRunner ports.TxRunner
	clock    ports.Clock
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(txRunner ports.TxRunner, clock ports.Clock) *UserUseCase {
	return &UserUseCase{txRunner: txRunner, clock: clock}
}

// Create crea un usuario en el tenant del llamador. Devuelve domain.ErrDuplicate si el email ya existe.
func (uc *UserUseCase) Create(ctx context.Context, caller entity.Caller, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !entity.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}
	now := uc.clock.Now().UTC()
	user := &entity.User{
		ID:        uuid.New().String(),
		TenantID:  caller.TenantID,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Name:      strings.TrimSpace(in.Name),
		Role:      in.Role,
		Lifecycle: entity.LifecycleActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		tenant, err := repos.Tenants.GetByID(ctx, caller.TenantID)
		if err != nil {
			return err
		}
		if tenant == nil || !tenant.Lifecycle.IsActive() {
			return fmt.Errorf("%w: tenant", domain.ErrNotFound)
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario del tenant del llamador.
func (uc *UserUseCase) GetByID(ctx context.Context, caller entity.Caller, id string) (*dto.UserResponse, error) {
	var out *dto.UserResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		user, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil || user.TenantID != caller.TenantID || !user.Lifecycle.IsActive() {
			return domain.ErrUserNotFound
		}
		out = entityToUserResponse(user)
		return nil
	})
	return out, err
}

// List lista usuarios activos del tenant con paginación.
func (uc *UserUseCase) List(ctx context.Context, caller entity.Caller, limit, offset int) (*dto.UserListResponse, error) {
	resp := &dto.UserListResponse{Items: []dto.UserResponse{}, Page: dto.PageResponse{Limit: limit, Offset: offset}}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		list, err := repos.Users.ListByTenant(ctx, caller.TenantID, limit, offset)
		if err != nil {
			return err
		}
		for _, u := range list {
			resp.Items = append(resp.Items, *entityToUserResponse(u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete da de baja lógica a un usuario. El historial lo sigue referenciando.
func (uc *UserUseCase) Delete(ctx context.Context, caller entity.Caller, id string) error {
	if id == caller.UserID {
		return fmt.Errorf("%w: un usuario no puede darse de baja a sí mismo", domain.ErrInvalidInput)
	}
	return uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		return repos.Users.SoftDelete(ctx, caller.TenantID, id)
	})
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Lifecycle: string(u.Lifecycle),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
