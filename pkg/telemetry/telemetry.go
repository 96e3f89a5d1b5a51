// Package telemetry configura el tracing OpenTelemetry del servicio y expone helpers para abrir spans.
package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName nombre del tracer usado por el motor y los adaptadores.
const InstrumentationName = "github.com/jhoicas/Aprobaciones-api"

// Config opciones de tracing.
type Config struct {
	Enabled     bool
	ServiceName string
	Environment string
	Output      string // "stdout" o ruta de archivo
}

// Shutdown libera el provider (flush de spans pendientes).
type Shutdown func(context.Context) error

// Init instala el TracerProvider global con exporter stdout. Deshabilitado deja el provider no-op.
func Init(cfg Config) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	var w io.Writer = os.Stdout
	var closer io.Closer
	if cfg.Output != "" && cfg.Output != "stdout" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := NewProvider(cfg, exporter)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			_ = closer.Close()
		}
		return err
	}, nil
}

// NewProvider crea un TracerProvider síncrono sobre el exporter dado (tests usan tracetest).
func NewProvider(cfg Config, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
}

// Tracer devuelve el tracer del provider; nil usa el global.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}

// End cierra el span registrando el error, si lo hay.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
