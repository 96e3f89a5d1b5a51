package seed_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Aprobaciones-api/internal/seed"
)

const demo = `
tenants:
  - name: Acme
    slug: acme
    users:
      - { email: admin@acme.test, name: Admin, role: admin }
      - { email: Beto@Acme.test, name: Beto, role: manager }
      - { email: dani@acme.test, name: Dani, role: member }
    routes:
      - name: Compras
        steps:
          - { order: 1, approver: beto@acme.test }
          - { order: 2, approver: admin@acme.test, quorum: any }
    delegations:
      - { user: beto@acme.test, delegate: dani@acme.test, start: "2025-03-01", end: "2025-03-15" }
    form_templates:
      - name: Compra
        fields:
          - { key: monto, type: number, required: true, min: "0", max: "1000.50" }
`

var clock = ports.FixedClock{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}

// ─────────────────────────────────────────────────────────────────────────────
// Parse
// ─────────────────────────────────────────────────────────────────────────────

func TestParse_Demo(t *testing.T) {
	f, err := seed.Parse(strings.NewReader(demo))
	require.NoError(t, err)
	require.Len(t, f.Tenants, 1)
	assert.Len(t, f.Tenants[0].Users, 3)
	assert.Equal(t, "1000.50", f.Tenants[0].FormTemplates[0].Fields[0].Max)
}

func TestParse_Rechazos(t *testing.T) {
	cases := map[string]string{
		"campo desconocido": "tenants:\n  - slug: x\n    color: rojo\n",
		"sin slug":          "tenants:\n  - name: X\n    users: [{ email: a@x, name: A, role: admin }]\n",
		"sin admin":         "tenants:\n  - slug: x\n    users: [{ email: a@x, name: A, role: member }]\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := seed.Parse(strings.NewReader(raw))
			assert.Error(t, err)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Apply
// ─────────────────────────────────────────────────────────────────────────────

func TestApply_CreaTodoYEsIdempotentePorTenant(t *testing.T) {
	store := memory.NewStore()
	f, err := seed.Parse(strings.NewReader(demo))
	require.NoError(t, err)

	res, err := seed.Apply(context.Background(), store, clock, f, entity.QuorumAll)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Tenants)
	assert.Len(t, res.Users, 3)
	assert.Equal(t, 1, res.Routes)
	assert.Equal(t, 1, res.Delegations)
	assert.Equal(t, 1, res.FormTemplates)
	assert.Equal(t, "beto@acme.test", res.Users[1].Email, "emails normalizados")

	again, err := seed.Apply(context.Background(), store, clock, f, entity.QuorumAll)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Tenants)
	assert.Equal(t, []string{"acme"}, again.Skipped)
}

func TestApply_AprobadorInexistente(t *testing.T) {
	raw := strings.Replace(demo, "approver: beto@acme.test", "approver: nadie@acme.test", 1)
	f, err := seed.Parse(strings.NewReader(raw))
	require.NoError(t, err)

	_, err = seed.Apply(context.Background(), memory.NewStore(), clock, f, entity.QuorumAll)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestApply_LimiteDecimalInvalido(t *testing.T) {
	raw := strings.Replace(demo, `max: "1000.50"`, `max: "mil"`, 1)
	f, err := seed.Parse(strings.NewReader(raw))
	require.NoError(t, err)

	_, err = seed.Apply(context.Background(), memory.NewStore(), clock, f, entity.QuorumAll)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
