package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/approval"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Aprobaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
	pkgjwt "github.com/jhoicas/Aprobaciones-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const apiTenant = "tenant-acme"

type fakeReceipt struct{}

func (fakeReceipt) GenerateApprovalReceipt(context.Context, ports.ReceiptData) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

// buildAPI arma el router completo sobre el store en memoria con usuarios sembrados.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	clock := ports.FixedClock{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}

	err := store.Run(context.Background(), func(repos ports.Repositories) error {
		ctx := context.Background()
		if err := repos.Tenants.Create(ctx, &entity.Tenant{ID: apiTenant, Name: "Acme", Slug: "acme", Lifecycle: entity.LifecycleActive}); err != nil {
			return err
		}
		for _, u := range []*entity.User{
			{ID: "admin", Email: "admin@acme", Name: "Admin", Role: entity.RoleAdmin},
			{ID: "ana", Email: "ana@acme", Name: "Ana", Role: entity.RoleMember},
			{ID: "beto", Email: "beto@acme", Name: "Beto", Role: entity.RoleMember},
			{ID: "caro", Email: "caro@acme", Name: "Caro", Role: entity.RoleManager},
		} {
			u.TenantID = apiTenant
			u.Lifecycle = entity.LifecycleActive
			if err := repos.Users.Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	engine := approval.NewEngine(store, clock, logger.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RouteUC:        usecase.NewRouteUseCase(store, clock, entity.QuorumAll),
		ApprovalUC:     usecase.NewApprovalUseCase(engine, store, fakeReceipt{}, 100),
		DelegationUC:   usecase.NewDelegationUseCase(store, clock),
		UserUC:         usecase.NewUserUseCase(store, clock),
		FormTemplateUC: usecase.NewFormTemplateUseCase(store, clock),
		JWTSecret:      testJWTSecret,
	})
	return app
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, apiTenant, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call lanza la petición y decodifica el cuerpo JSON en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, auth string, body any, out any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createRoute(t *testing.T, app *fiber.App) string {
	t.Helper()
	var route dto.RouteResponse
	resp := call(t, app, http.MethodPost, "/api/routes", bearer(t, "admin", entity.RoleAdmin), dto.CreateRouteRequest{
		Name:  "Compras",
		Steps: []dto.StepRequest{{Order: 1, ApproverID: "beto"}, {Order: 2, ApproverID: "caro"}},
	}, &route)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, route.ID)
	return route.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Rutas_SoloAdminOManagerEscriben(t *testing.T) {
	app := buildAPI(t)
	body := dto.CreateRouteRequest{Name: "Viajes", Steps: []dto.StepRequest{{Order: 1, ApproverID: "caro"}}}

	var errBody dto.ErrorResponse
	resp := call(t, app, http.MethodPost, "/api/routes", bearer(t, "ana", entity.RoleMember), body, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errBody.Code)

	resp = call(t, app, http.MethodPost, "/api/routes", bearer(t, "caro", entity.RoleManager), body, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/routes", bearer(t, "caro", entity.RoleManager), body, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "nombre repetido en el tenant")
	assert.Equal(t, "DUPLICATE", errBody.Code)
}

func TestAPI_Rutas_ValidacionDelCuerpo(t *testing.T) {
	app := buildAPI(t)

	var errBody dto.ErrorResponse
	resp := call(t, app, http.MethodPost, "/api/routes", bearer(t, "admin", entity.RoleAdmin), dto.CreateRouteRequest{Name: "Sin pasos"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Contains(t, errBody.Message, "Steps")
}

func TestAPI_Rutas_NoEncontrada(t *testing.T) {
	app := buildAPI(t)

	var errBody dto.ErrorResponse
	resp := call(t, app, http.MethodGet, "/api/routes/no-existe", bearer(t, "ana", entity.RoleMember), nil, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ROUTE_NOT_FOUND", errBody.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Solicitudes
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Solicitud_FlujoCompleto(t *testing.T) {
	app := buildAPI(t)
	routeID := createRoute(t, app)

	var created dto.ApprovalResponse
	resp := call(t, app, http.MethodPost, "/api/approvals", bearer(t, "ana", entity.RoleMember),
		dto.CreateApprovalRequest{RouteID: routeID, Title: "Laptop"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 1, created.CurrentStep)

	// El solicitante no decide sobre su propia solicitud.
	var errBody dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/approvals/"+created.ID+"/approve", bearer(t, "ana", entity.RoleMember), nil, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "SELF_ACTION_FORBIDDEN", errBody.Code)

	// caro no es aprobadora del paso 1.
	resp = call(t, app, http.MethodPost, "/api/approvals/"+created.ID+"/approve", bearer(t, "caro", entity.RoleManager), nil, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "NOT_AUTHORIZED_APPROVER", errBody.Code)

	var step1 dto.ActionResponse
	resp = call(t, app, http.MethodPost, "/api/approvals/"+created.ID+"/approve", bearer(t, "beto", entity.RoleMember),
		dto.ActionRequest{Comment: "ok"}, &step1)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, step1.Advanced)
	assert.Equal(t, 2, step1.Approval.CurrentStep)

	var step2 dto.ActionResponse
	resp = call(t, app, http.MethodPost, "/api/approvals/"+created.ID+"/approve", bearer(t, "caro", entity.RoleManager), nil, &step2)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, step2.Completed)
	assert.Equal(t, "approved", step2.Approval.Status)

	// Terminal: ya no se puede retirar.
	resp = call(t, app, http.MethodPost, "/api/approvals/"+created.ID+"/withdraw", bearer(t, "ana", entity.RoleMember), nil, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NOT_PENDING", errBody.Code)

	var detail dto.ApprovalDetailResponse
	resp = call(t, app, http.MethodGet, "/api/approvals/"+created.ID, bearer(t, "ana", entity.RoleMember), nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, "approved", detail.Steps[0].Status)
	assert.Equal(t, "approved", detail.Steps[1].Status)

	var hist dto.HistoryListResponse
	resp = call(t, app, http.MethodGet, "/api/approvals/"+created.ID+"/history", bearer(t, "ana", entity.RoleMember), nil, &hist)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, hist.Items)
	assert.Equal(t, "caro", hist.Items[len(hist.Items)-1].ActorID)
}

func TestAPI_Solicitud_ListadoPorAlcance(t *testing.T) {
	app := buildAPI(t)
	routeID := createRoute(t, app)

	resp := call(t, app, http.MethodPost, "/api/approvals", bearer(t, "ana", entity.RoleMember),
		dto.CreateApprovalRequest{RouteID: routeID, Title: "Monitor"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var assigned dto.ApprovalListResponse
	resp = call(t, app, http.MethodGet, "/api/approvals?scope=assigned", bearer(t, "beto", entity.RoleMember), nil, &assigned)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, assigned.Items, 1)

	var errBody dto.ErrorResponse
	resp = call(t, app, http.MethodGet, "/api/approvals?scope=todo", bearer(t, "beto", entity.RoleMember), nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)

	resp = call(t, app, http.MethodGet, "/api/approvals?scope=all", bearer(t, "beto", entity.RoleMember), nil, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "scope=all es de admin o manager")
}

func TestAPI_Solicitud_PDFYVerificacion(t *testing.T) {
	app := buildAPI(t)
	routeID := createRoute(t, app)

	var created dto.ApprovalResponse
	resp := call(t, app, http.MethodPost, "/api/approvals", bearer(t, "ana", entity.RoleMember),
		dto.CreateApprovalRequest{RouteID: routeID, Title: "Silla"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/approvals/"+created.ID+"/pdf", bearer(t, "ana", entity.RoleMember), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "aprobacion_2025-03-10_")
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = call(t, app, http.MethodGet, "/api/approvals/"+created.ID+"/verify", bearer(t, "ana", entity.RoleMember), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var v dto.VerificationResponse
	resp = call(t, app, http.MethodGet, "/api/approvals/"+created.ID+"/verify", bearer(t, "admin", entity.RoleAdmin), nil, &v)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, v.Consistent)
	assert.Equal(t, "pending", v.ReplayedStatus)
}

func TestAPI_Solicitud_NoEncontrada(t *testing.T) {
	app := buildAPI(t)

	var errBody dto.ErrorResponse
	resp := call(t, app, http.MethodGet, "/api/approvals/no-existe", bearer(t, "ana", entity.RoleMember), nil, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "APPROVAL_NOT_FOUND", errBody.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delegaciones y usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Delegaciones(t *testing.T) {
	app := buildAPI(t)
	ana := bearer(t, "ana", entity.RoleMember)

	var created dto.DelegationResponse
	resp := call(t, app, http.MethodPost, "/api/delegations", ana, dto.CreateDelegationRequest{
		DelegateUserID: "beto", StartDate: "2025-03-10", EndDate: "2025-03-20",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var errBody dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/delegations", ana, dto.CreateDelegationRequest{
		DelegateUserID: "caro", StartDate: "2025-03-15", EndDate: "2025-03-25",
	}, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DELEGATION_OVERLAP", errBody.Code)

	resp = call(t, app, http.MethodPost, "/api/delegations", ana, dto.CreateDelegationRequest{
		DelegateUserID: "ana", StartDate: "2025-04-01", EndDate: "2025-04-02",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SELF_DELEGATION_FORBIDDEN", errBody.Code)

	resp = call(t, app, http.MethodPost, "/api/delegations", ana, dto.CreateDelegationRequest{
		DelegateUserID: "beto", StartDate: "10/04/2025", EndDate: "2025-04-12",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)

	var list dto.DelegationListResponse
	resp = call(t, app, http.MethodGet, "/api/delegations", bearer(t, "beto", entity.RoleMember), nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list.Items, 1, "beto la ve como delegado")

	resp = call(t, app, http.MethodDelete, "/api/delegations/"+created.ID, bearer(t, "beto", entity.RoleMember), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo el delegante o un admin")

	resp = call(t, app, http.MethodDelete, "/api/delegations/"+created.ID, ana, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_Usuarios_SoloAdminCrea(t *testing.T) {
	app := buildAPI(t)
	body := dto.CreateUserRequest{Email: "dani@acme.test", Name: "Dani", Role: entity.RoleMember}

	resp := call(t, app, http.MethodPost, "/api/users", bearer(t, "caro", entity.RoleManager), body, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var created dto.UserResponse
	resp = call(t, app, http.MethodPost, "/api/users", bearer(t, "admin", entity.RoleAdmin), body, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, apiTenant, created.TenantID)

	var errBody dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/users", bearer(t, "admin", entity.RoleAdmin),
		dto.CreateUserRequest{Email: "no-es-email", Name: "X", Role: entity.RoleMember}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestAPI_SinToken_Retorna401(t *testing.T) {
	app := buildAPI(t)

	var errBody dto.ErrorResponse
	resp := call(t, app, http.MethodGet, "/api/approvals", "", nil, &errBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errBody.Code)
}
