package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
)

// validate instancia compartida; validator.Validate es seguro para uso concurrente y cachea los structs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct valida los tags `validate` del DTO y responde 400 VALIDATION si fallan.
// Devuelve (handled=true) cuando ya escribió la respuesta.
func validateStruct(c *fiber.Ctx, in any) (bool, error) {
	err := validate.Struct(in)
	if err == nil {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: describeValidation(err)})
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
