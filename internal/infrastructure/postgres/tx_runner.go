package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout <= 0 deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los SELECT ... FOR UPDATE de los repositorios serializan las escrituras sobre la misma fila.
// Serialización, deadlock y lock timeout se devuelven como domain.ErrTxConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(Repositories(tx)); err != nil {
		return wrapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Repositories construye todos los repositorios sobre q (pool o tx).
func Repositories(q Querier) ports.Repositories {
	return ports.Repositories{
		Tenants:     NewTenantRepository(q),
		Users:       NewUserRepository(q),
		Routes:      NewRouteRepository(q),
		Approvals:   NewApprovalRepository(q),
		History:     NewHistoryRepository(q),
		Delegations: NewDelegationRepository(q),
		Templates:   NewFormTemplateRepository(q),
	}
}

func wrapTxError(err error) error {
	if isTransient(err) && !errors.Is(err, domain.ErrTxConflict) {
		return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
	}
	return err
}
