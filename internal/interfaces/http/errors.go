package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Orden relevante: la primera coincidencia con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrRouteNotFound, fiber.StatusNotFound, "ROUTE_NOT_FOUND"},
	{domain.ErrInstanceNotFound, fiber.StatusNotFound, "APPROVAL_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrDelegateNotFound, fiber.StatusNotFound, "DELEGATE_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},

	{domain.ErrNotPending, fiber.StatusConflict, "NOT_PENDING"},
	{domain.ErrDelegationOverlap, fiber.StatusConflict, "DELEGATION_OVERLAP"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrTxConflict, fiber.StatusConflict, "TX_CONFLICT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},

	{domain.ErrInconsistentQuorum, fiber.StatusUnprocessableEntity, "INCONSISTENT_QUORUM"},
	{domain.ErrInvalidForm, fiber.StatusUnprocessableEntity, "INVALID_FORM"},

	{domain.ErrSelfActionForbidden, fiber.StatusForbidden, "SELF_ACTION_FORBIDDEN"},
	{domain.ErrNotAuthorizedApprover, fiber.StatusForbidden, "NOT_AUTHORIZED_APPROVER"},
	{domain.ErrNotApplicant, fiber.StatusForbidden, "NOT_APPLICANT"},
	{domain.ErrTenantMismatch, fiber.StatusForbidden, "TENANT_MISMATCH"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},

	{domain.ErrSelfDelegationForbidden, fiber.StatusBadRequest, "SELF_DELEGATION_FORBIDDEN"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
}

// statusFor traduce un error de dominio a status HTTP y código de error.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse. Los 500 no exponen el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
