package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

func TestNameKey(t *testing.T) {
	assert.Equal(t, usecase.NameKey("Compras  Mayores"), usecase.NameKey("  compras mayores "))
	assert.NotEqual(t, usecase.NameKey("Compras"), usecase.NameKey("Ventas"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestRoute_Create_NormalizaPasos(t *testing.T) {
	store, clock := seed(t)
	uc := usecase.NewRouteUseCase(store, clock, entity.QuorumAll)

	out, err := uc.Create(context.Background(), admin(), dto.CreateRouteRequest{
		Name: "Compras",
		Steps: []dto.StepRequest{
			{Order: 5, ApproverID: "caro"},
			{Order: 2, ApproverID: "ana", Quorum: "any"},
			{Order: 2, ApproverID: "beto"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Version)
	assert.True(t, out.IsActive)
	assert.Equal(t, 2, out.TotalSteps)
	require.Len(t, out.Steps, 3)
	for _, s := range out.Steps {
		assert.NotEmpty(t, s.ID)
		if s.Order == 1 {
			assert.Equal(t, "any", s.Quorum, "el paso sin quórum hereda el del grupo")
		} else {
			assert.Equal(t, 2, s.Order)
			assert.Equal(t, "caro", s.ApproverID)
			assert.Equal(t, "all", s.Quorum)
		}
	}
}

func TestRoute_Create_Errores(t *testing.T) {
	store, clock := seed(t)
	uc := usecase.NewRouteUseCase(store, clock, entity.QuorumAll)
	ctx := context.Background()

	_, err := uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Sin pasos"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Fantasma", Steps: []dto.StepRequest{{Order: 1, ApproverID: "nadie"}}})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Ajeno", Steps: []dto.StepRequest{{Order: 1, ApproverID: "xavi"}}})
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)

	_, err = uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Mixto", Steps: []dto.StepRequest{
		{Order: 1, ApproverID: "ana", Quorum: "all"},
		{Order: 1, ApproverID: "beto", Quorum: "any"},
	}})
	assert.ErrorIs(t, err, domain.ErrInconsistentQuorum)

	_, err = uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Compras", Steps: []dto.StepRequest{{Order: 1, ApproverID: "ana"}}})
	require.NoError(t, err)
	_, err = uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "  COMPRAS ", Steps: []dto.StepRequest{{Order: 1, ApproverID: "ana"}}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestRoute_Update_IncrementaVersion(t *testing.T) {
	store, clock := seed(t)
	uc := usecase.NewRouteUseCase(store, clock, entity.QuorumAll)
	ctx := context.Background()

	created, err := uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Viajes", Steps: []dto.StepRequest{{Order: 1, ApproverID: "ana"}}})
	require.NoError(t, err)

	name := "Viajes internacionales"
	updated, err := uc.Update(ctx, admin(), created.ID, dto.UpdateRouteRequest{
		Name:     &name,
		IsActive: boolPtr(false),
		Steps:    []dto.StepRequest{{Order: 1, ApproverID: "beto"}, {Order: 2, ApproverID: "caro"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, name, updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 2, updated.TotalSteps)

	got, err := uc.GetByID(ctx, admin(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)

	active, err := uc.List(ctx, admin(), true, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, active.Items)
	all, err := uc.List(ctx, admin(), false, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)
}

func TestRoute_Delete(t *testing.T) {
	store, clock := seed(t)
	uc := usecase.NewRouteUseCase(store, clock, entity.QuorumAll)
	ctx := context.Background()

	created, err := uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Gastos", Steps: []dto.StepRequest{{Order: 1, ApproverID: "ana"}}})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, admin(), created.ID))
	_, err = uc.GetByID(ctx, admin(), created.ID)
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, admin(), created.ID), domain.ErrRouteNotFound)

	// el nombre queda libre tras la baja
	_, err = uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Gastos", Steps: []dto.StepRequest{{Order: 1, ApproverID: "ana"}}})
	assert.NoError(t, err)
}

func TestRoute_OtroTenantNoLaVe(t *testing.T) {
	store, clock := seed(t)
	uc := usecase.NewRouteUseCase(store, clock, entity.QuorumAll)
	ctx := context.Background()

	created, err := uc.Create(ctx, admin(), dto.CreateRouteRequest{Name: "Compras", Steps: []dto.StepRequest{{Order: 1, ApproverID: "ana"}}})
	require.NoError(t, err)

	other := entity.Caller{TenantID: "tenant-globex", UserID: "xavi", Role: entity.RoleAdmin}
	_, err = uc.GetByID(ctx, other, created.ID)
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)
}
