package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
)

// Repositories agrupa los puertos de persistencia. Cuando lo entrega un TxRunner,
// todos los repositorios están atados a la misma transacción.
type Repositories struct {
	Tenants     repository.TenantRepository
	Users       repository.UserRepository
	Routes      repository.RouteRepository
	Approvals   repository.ApprovalRepository
	History     repository.HistoryRepository
	Delegations repository.DelegationRepository
	Templates   repository.FormTemplateRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y no queda estado parcial; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// Clock fuente de la hora actual (inyectable en tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reloj del sistema.
type SystemClock struct{}

// Now devuelve la hora actual.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock reloj detenido, útil en tests y en el seed.
type FixedClock struct{ T time.Time }

// Now devuelve siempre T.
func (c FixedClock) Now() time.Time { return c.T }
