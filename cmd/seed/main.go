// seed carga tenants, usuarios, rutas, delegaciones y plantillas desde un YAML
// y muestra un token JWT por usuario para probar la API.
//
// Uso: go run ./cmd/seed [ruta/seed.yaml]
// Por defecto usa cmd/seed/demo.yaml. Respeta STORAGE_DRIVER, DATABASE_URL y JWT_SECRET.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Aprobaciones-api/internal/seed"
	"github.com/jhoicas/Aprobaciones-api/pkg/config"
	"github.com/jhoicas/Aprobaciones-api/pkg/jwt"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
)

func main() {
	path := "cmd/seed/demo.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir archivo de seed")
	}
	defer f.Close()

	file, err := seed.Parse(f)
	if err != nil {
		log.Fatal().Err(err).Msg("archivo de seed inválido")
	}

	ctx := context.Background()
	var txRunner ports.TxRunner
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("STORAGE_DRIVER=memory: el seed solo valida el archivo, nada se persiste")
		txRunner = memory.NewStore()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if _, err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	}

	res, err := seed.Apply(ctx, txRunner, ports.SystemClock{}, file, entity.Quorum(cfg.Workflow.DefaultQuorum))
	if err != nil {
		log.Fatal().Err(err).Msg("aplicar seed")
	}
	for _, slug := range res.Skipped {
		log.Warn().Str("tenant", slug).Msg("tenant ya existe, omitido")
	}
	log.Info().
		Int("tenants", res.Tenants).
		Int("users", len(res.Users)).
		Int("routes", res.Routes).
		Int("delegations", res.Delegations).
		Int("form_templates", res.FormTemplates).
		Msg("seed aplicado")

	if cfg.JWT.Secret == "" {
		return
	}
	for _, u := range res.Users {
		tok, err := jwt.Generate(cfg.JWT.Secret, u.ID, u.TenantID, u.Role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Error().Err(err).Str("email", u.Email).Msg("generar token")
			continue
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", u.TenantSlug, u.Email, u.Role, tok)
	}
}
