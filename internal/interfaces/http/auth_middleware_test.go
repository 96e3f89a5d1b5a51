package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Aprobaciones-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Aprobaciones-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "aprobaciones-test"
	testExpMin    = 60
)

// identityApp expone /whoami detrás de AuthMiddleware (y RequireRole si se pasan roles).
func identityApp(roles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apphttp.AuthMiddleware(testJWTSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, apphttp.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"tenant_id": apphttp.GetTenantID(c),
			"role":      apphttp.GetRole(c),
		})
	})
	app.Get("/whoami", handlers...)
	return app
}

func sign(t *testing.T, userID, tenantID, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, tenantID, role, testIssuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// whoami devuelve status y el cuerpo decodificado como ErrorResponse (vacío en 200).
func whoami(t *testing.T, app *fiber.App, authHeader string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out dto.ErrorResponse
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: identidad multi-tenant del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_CargaUsuarioTenantYRol(t *testing.T) {
	app := identityApp()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", sign(t, testUserID, testTenantID, entity.RoleManager, testExpMin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"user_id": testUserID, "tenant_id": testTenantID, "role": entity.RoleManager}, body)
}

func TestAuth_TokenSinTenantOSinUsuario(t *testing.T) {
	cases := map[string]string{
		"sin tenant_id": sign(t, testUserID, "", entity.RoleAdmin, testExpMin),
		"sin user_id":   sign(t, "", testTenantID, entity.RoleAdmin, testExpMin),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := whoami(t, identityApp(), header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "INVALID_TOKEN", body.Code, "un token sin tenant no puede acotar la operación")
		})
	}
}

func TestAuth_TokensRechazados(t *testing.T) {
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, testTenantID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           testUserID,
		TenantID:         testTenantID,
		Role:             entity.RoleAdmin,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Token " + testUserID, "INVALID_TOKEN"},
		{"firma con otro secreto", "Bearer " + otherSecret, "INVALID_TOKEN"},
		{"alg none", "Bearer " + unsigned, "INVALID_TOKEN"},
		{"expirado", sign(t, testUserID, testTenantID, entity.RoleAdmin, -5), "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := whoami(t, identityApp(), tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole: matriz de roles de la API
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	adminOnly := []string{entity.RoleAdmin}
	adminOrManager := []string{entity.RoleAdmin, entity.RoleManager}

	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"admin en rutas de admin", adminOnly, entity.RoleAdmin, http.StatusOK},
		{"manager fuera de rutas de admin", adminOnly, entity.RoleManager, http.StatusForbidden},
		{"manager gestiona rutas", adminOrManager, entity.RoleManager, http.StatusOK},
		{"member no gestiona rutas", adminOrManager, entity.RoleMember, http.StatusForbidden},
		{"rol desconocido", adminOrManager, "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := whoami(t, identityApp(tc.allowed...), sign(t, testUserID, testTenantID, tc.role, testExpMin))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body.Code)
			}
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	status, body := whoami(t, identityApp(entity.RoleAdmin), sign(t, testUserID, testTenantID, "", testExpMin))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body.Code)
}
