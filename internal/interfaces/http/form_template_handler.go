package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
)

// FormTemplateHandler maneja las plantillas de formulario (protegido).
type FormTemplateHandler struct {
	uc *usecase.FormTemplateUseCase
}

// NewFormTemplateHandler construye el handler.
func NewFormTemplateHandler(uc *usecase.FormTemplateUseCase) *FormTemplateHandler {
	return &FormTemplateHandler{uc: uc}
}

// Create godoc
// @Summary      Crear plantilla de formulario
// @Tags         form-templates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFormTemplateRequest  true  "Plantilla"
// @Success      201   {object}  dto.FormTemplateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/form-templates [post]
func (h *FormTemplateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFormTemplateRequest
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

// GetByID godoc
// @Summary      Obtener plantilla
// @Tags         form-templates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la plantilla"
// @Success      200  {object}  dto.FormTemplateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/form-templates/{id} [get]
func (h *FormTemplateHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), callerFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar plantillas del tenant
// @Tags         form-templates
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.FormTemplateListResponse
// @Router       /api/form-templates [get]
func (h *FormTemplateHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), callerFrom(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
