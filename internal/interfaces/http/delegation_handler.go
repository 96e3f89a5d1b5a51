package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
)

// DelegationHandler maneja las delegaciones de aprobación (protegido).
type DelegationHandler struct {
	uc *usecase.DelegationUseCase
}

// NewDelegationHandler construye el handler.
func NewDelegationHandler(uc *usecase.DelegationUseCase) *DelegationHandler {
	return &DelegationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear delegación
// @Description  Fechas YYYY-MM-DD, ambas inclusive. No puede superponerse con otra delegación del mismo usuario.
// @Tags         delegations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDelegationRequest  true  "Delegación"
// @Success      201   {object}  dto.DelegationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/delegations [post]
func (h *DelegationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDelegationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if handled, err := validateStruct(c, in); handled {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), callerFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar mis delegaciones (como delegante o delegado)
// @Tags         delegations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DelegationListResponse
// @Router       /api/delegations [get]
func (h *DelegationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar delegación
// @Tags         delegations
// @Security     Bearer
// @Param        id   path  string  true  "ID de la delegación"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/delegations/{id} [delete]
func (h *DelegationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), callerFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
