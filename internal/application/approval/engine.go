// Package approval implementa la máquina de estados de las solicitudes de aprobación:
// creación, decisiones de los aprobadores, retiro, comentarios y consultas, siempre
// dentro de una transacción y acotadas al tenant del llamador.
package approval

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
	"github.com/jhoicas/Aprobaciones-api/pkg/telemetry"
)

// Límites de paginación de List.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Engine orquesta las operaciones del motor sobre un TxRunner.
type Engine struct {
	txRunner ports.TxRunner
	clock    ports.Clock
	loc      *time.Location
	log      *logger.Logger
	tracer   trace.Tracer
}

// Option configura el Engine.
type Option func(*Engine)

// WithLocation zona horaria que define "hoy" para resolver delegaciones (UTC por defecto).
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithTracerProvider usa un provider propio en lugar del global.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = telemetry.Tracer(tp) }
}

// NewEngine construye el motor.
func NewEngine(txRunner ports.TxRunner, clock ports.Clock, log *logger.Logger, opts ...Option) *Engine {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		txRunner: txRunner,
		clock:    clock,
		loc:      time.UTC,
		log:      log.Component("approval"),
		tracer:   telemetry.Tracer(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// today fecha civil vigente para las delegaciones.
func (e *Engine) today() time.Time {
	return workflow.DateOf(e.clock.Now(), e.loc)
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) start(ctx context.Context, op string, caller entity.Caller, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("tenant.id", caller.TenantID),
		attribute.String("user.id", caller.UserID),
	)
	return e.tracer.Start(ctx, "approval."+op, trace.WithAttributes(attrs...))
}

func checkCaller(caller entity.Caller) error {
	if !caller.Valid() {
		return domain.ErrUnauthorized
	}
	return nil
}
