package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/approval"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
)

// fakeReceipt registra lo que recibe y devuelve bytes fijos.
type fakeReceipt struct {
	data ports.ReceiptData
	err  error
}

func (f *fakeReceipt) GenerateApprovalReceipt(_ context.Context, data ports.ReceiptData) ([]byte, error) {
	f.data = data
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

func newApprovalUseCase(t *testing.T, gen ports.ReceiptGenerator, historyMax int) (*usecase.ApprovalUseCase, string, *memory.Store) {
	t.Helper()
	store, clock := seed(t)
	routes := usecase.NewRouteUseCase(store, clock, entity.QuorumAll)
	route, err := routes.Create(context.Background(), admin(), dto.CreateRouteRequest{
		Name:  "Compras",
		Steps: []dto.StepRequest{{Order: 1, ApproverID: "beto"}, {Order: 2, ApproverID: "caro"}},
	})
	require.NoError(t, err)
	engine := approval.NewEngine(store, clock, logger.Nop())
	return usecase.NewApprovalUseCase(engine, store, gen, historyMax), route.ID, store
}

// ─────────────────────────────────────────────────────────────────────────────
// Flujo completo por DTOs
// ─────────────────────────────────────────────────────────────────────────────

func TestApproval_FlujoCompleto(t *testing.T) {
	uc, routeID, _ := newApprovalUseCase(t, nil, 100)
	ctx := context.Background()

	created, err := uc.Create(ctx, member("ana"), dto.CreateApprovalRequest{RouteID: routeID, Title: "Laptop"})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 1, created.CurrentStep)
	assert.Equal(t, 2, created.TotalSteps)
	assert.Nil(t, created.Form)

	res, err := uc.Approve(ctx, member("beto"), created.ID, "ok")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.False(t, res.Completed)
	assert.Equal(t, "approved", res.Entry.Action)
	assert.Equal(t, 2, res.Approval.CurrentStep)

	res, err = uc.Approve(ctx, entity.Caller{TenantID: tenantID, UserID: "caro", Role: entity.RoleManager}, created.ID, "")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "approved", res.Approval.Status)

	detail, err := uc.Get(ctx, member("ana"), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Steps, 2)
	for _, s := range detail.Steps {
		assert.Equal(t, "approved", s.Status)
	}
	assert.Len(t, detail.History, 2)

	v, err := uc.Verify(ctx, admin(), created.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.Equal(t, v.StoredStatus, v.ReplayedStatus)
}

func TestApproval_RechazoYComentario(t *testing.T) {
	uc, routeID, _ := newApprovalUseCase(t, nil, 100)
	ctx := context.Background()

	created, err := uc.Create(ctx, member("ana"), dto.CreateApprovalRequest{RouteID: routeID, Title: "Viaje"})
	require.NoError(t, err)

	c, err := uc.Comment(ctx, member("ana"), created.ID, "adjunto cotización")
	require.NoError(t, err)
	assert.Equal(t, "commented", c.Action)

	res, err := uc.Reject(ctx, member("beto"), created.ID, "sin presupuesto")
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Approval.Status)

	_, err = uc.Withdraw(ctx, member("ana"), created.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotPending)
}

func TestApproval_ListPorAlcance(t *testing.T) {
	uc, routeID, _ := newApprovalUseCase(t, nil, 100)
	ctx := context.Background()

	_, err := uc.Create(ctx, member("ana"), dto.CreateApprovalRequest{RouteID: routeID, Title: "Uno"})
	require.NoError(t, err)

	mine, err := uc.List(ctx, member("ana"), dto.ListApprovalsQuery{})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)
	assert.Equal(t, 1, mine.Page.Total)
	assert.Equal(t, approval.DefaultLimit, mine.Page.Limit)

	assigned, err := uc.List(ctx, member("beto"), dto.ListApprovalsQuery{Scope: approval.ScopeAssigned})
	require.NoError(t, err)
	assert.Len(t, assigned.Items, 1)

	_, err = uc.List(ctx, member("beto"), dto.ListApprovalsQuery{Scope: approval.ScopeAll})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApproval_HistoryAcotado(t *testing.T) {
	uc, routeID, _ := newApprovalUseCase(t, nil, 2)
	ctx := context.Background()

	created, err := uc.Create(ctx, member("ana"), dto.CreateApprovalRequest{RouteID: routeID, Title: "Notas"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := uc.Comment(ctx, member("ana"), created.ID, "nota")
		require.NoError(t, err)
	}

	page, err := uc.History(ctx, member("ana"), created.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Limit)
	assert.Len(t, page.Items, 2)

	page, err = uc.History(ctx, member("ana"), created.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Comprobante PDF
// ─────────────────────────────────────────────────────────────────────────────

func TestApproval_DownloadReceipt(t *testing.T) {
	gen := &fakeReceipt{}
	uc, routeID, _ := newApprovalUseCase(t, gen, 100)
	ctx := context.Background()

	created, err := uc.Create(ctx, member("ana"), dto.CreateApprovalRequest{RouteID: routeID, Title: "Laptop"})
	require.NoError(t, err)
	_, err = uc.Approve(ctx, member("beto"), created.ID, "ok")
	require.NoError(t, err)

	pdf, filename, err := uc.DownloadReceipt(ctx, member("ana"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	assert.Contains(t, filename, "aprobacion_2025-03-10_")
	assert.Equal(t, "Empresa "+tenantID, gen.data.TenantName)
	assert.Equal(t, "Ana", gen.data.ApplicantName)
	assert.Equal(t, "Beto", gen.data.UserNames["beto"])
	require.Len(t, gen.data.Steps, 2)
	assert.Equal(t, []string{"Caro"}, gen.data.Steps[1].Approvers)
}

func TestApproval_DownloadReceipt_Errores(t *testing.T) {
	ctx := context.Background()

	uc, _, _ := newApprovalUseCase(t, nil, 100)
	_, _, err := uc.DownloadReceipt(ctx, member("ana"), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	boom := errors.New("render")
	uc, routeID, _ := newApprovalUseCase(t, &fakeReceipt{err: boom}, 100)
	_, _, err = uc.DownloadReceipt(ctx, member("ana"), "no-existe")
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)

	created, err := uc.Create(ctx, member("ana"), dto.CreateApprovalRequest{RouteID: routeID, Title: "Laptop"})
	require.NoError(t, err)
	_, _, err = uc.DownloadReceipt(ctx, member("ana"), created.ID)
	assert.ErrorIs(t, err, boom)
}
