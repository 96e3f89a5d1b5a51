package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Aprobaciones-api/internal/application/approval"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Aprobaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Aprobaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Aprobaciones-api/pkg/config"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
	"github.com/jhoicas/Aprobaciones-api/pkg/telemetry"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	shutdownTracing, err := telemetry.Init(telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Output:      cfg.Tracing.Output,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	loc, _ := cfg.Workflow.Location() // validado en config.Load

	ctx := context.Background()
	var txRunner ports.TxRunner
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	}

	clock := ports.SystemClock{}
	engine := approval.NewEngine(txRunner, clock, log,
		approval.WithLocation(loc),
		approval.WithTracerProvider(otel.GetTracerProvider()),
	)

	// PDF: comprobante de la solicitud con referencia de verificación
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator(loc)

	routeUC := usecase.NewRouteUseCase(txRunner, clock, entity.Quorum(cfg.Workflow.DefaultQuorum))
	approvalUC := usecase.NewApprovalUseCase(engine, txRunner, receiptGenerator, cfg.Workflow.HistoryPageMax)
	delegationUC := usecase.NewDelegationUseCase(txRunner, clock)
	userUC := usecase.NewUserUseCase(txRunner, clock)
	formTemplateUC := usecase.NewFormTemplateUseCase(txRunner, clock)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), "/health"))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Aprobaciones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RouteUC:        routeUC,
		ApprovalUC:     approvalUC,
		DelegationUC:   delegationUC,
		UserUC:         userUC,
		FormTemplateUC: formTemplateUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de tracing")
	}

	log.Info().Msg("aplicación detenida")
}
