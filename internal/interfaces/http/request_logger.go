package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog. Usa el request id de fiber si está presente.
// Las rutas en skipPaths (p. ej. /health) no se registran.
func RequestLogger(log *logger.Logger, skipPaths ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("tenant_id", GetTenantID(c)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}
