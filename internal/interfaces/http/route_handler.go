package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
)

// RouteHandler maneja las peticiones HTTP para rutas de aprobación (protegido).
type RouteHandler struct {
	uc *usecase.RouteUseCase
}

// NewRouteHandler construye el handler.
func NewRouteHandler(uc *usecase.RouteUseCase) *RouteHandler {
	return &RouteHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ruta de aprobación
// @Tags         routes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRouteRequest  true  "Ruta y pasos"
// @Success      201   {object}  dto.RouteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/routes [post]
func (h *RouteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRouteRequest
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
// @Summary      Obtener ruta por ID
// @Tags         routes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ruta"
// @Success      200  {object}  dto.RouteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/routes/{id} [get]
func (h *RouteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), callerFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar rutas del tenant
// @Tags         routes
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo rutas activas"
// @Param        limit   query  int   false  "Límite"  default(20)
// @Param        offset  query  int   false  "Offset"  default(0)
// @Success      200     {object}  dto.RouteListResponse
// @Router       /api/routes [get]
func (h *RouteHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), callerFrom(c), c.QueryBool("active", false), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ruta
// @Description  Si se envían pasos, reemplazan a los actuales y la versión de la ruta aumenta. Las solicitudes abiertas conservan su copia.
// @Tags         routes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la ruta"
// @Param        body  body  dto.UpdateRouteRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.RouteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/routes/{id} [put]
func (h *RouteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRouteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if handled, err := validateStruct(c, in); handled {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), callerFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ruta (soft delete)
// @Tags         routes
// @Security     Bearer
// @Param        id   path  string  true  "ID de la ruta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/routes/{id} [delete]
func (h *RouteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), callerFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// pageParams lee limit/offset con los topes de la API.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{
		Limit:  c.QueryInt("limit", dto.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}.Clamp()
	return p.Limit, p.Offset
}
