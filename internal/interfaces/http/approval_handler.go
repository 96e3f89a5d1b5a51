package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
)

// ApprovalHandler maneja las solicitudes de aprobación y las decisiones sobre ellas (protegido).
type ApprovalHandler struct {
	uc *usecase.ApprovalUseCase
}

// NewApprovalHandler construye el handler.
func NewApprovalHandler(uc *usecase.ApprovalUseCase) *ApprovalHandler {
	return &ApprovalHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de aprobación
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateApprovalRequest  true  "Solicitud"
// @Success      201   {object}  dto.ApprovalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/approvals [post]
func (h *ApprovalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateApprovalRequest
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
// @Summary      Listar solicitudes
// @Description  scope=mine (propias, por defecto), assigned (pendientes de mi decisión) o all (admin/manager).
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        scope   query  string  false  "mine | assigned | all"
// @Param        status  query  string  false  "pending | approved | rejected | withdrawn"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.ApprovalListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/approvals [get]
func (h *ApprovalHandler) List(c *fiber.Ctx) error {
	q := dto.ListApprovalsQuery{Scope: c.Query("scope"), Status: c.Query("status")}
	q.Limit, q.Offset = pageParams(c)
	if handled, err := validateStruct(c, q); handled {
		return err
	}
	out, err := h.uc.List(c.UserContext(), callerFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una solicitud
// @Description  Incluye el avance por paso (approved, pending, waiting, rejected) y el historial completo.
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ApprovalDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), callerFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de una solicitud
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la solicitud"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.HistoryListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/history [get]
func (h *ApprovalHandler) History(c *fiber.Ctx) error {
	// El tope lo aplica el caso de uso (HISTORY_PAGE_MAX).
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)
	out, err := h.uc.History(c.UserContext(), callerFrom(c), c.Params("id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar el paso actual
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la solicitud"
// @Param        body  body  dto.ActionRequest  false  "Comentario opcional"
// @Success      200   {object}  dto.ActionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	in, handled, err := h.actionBody(c)
	if handled {
		return err
	}
	out, err := h.uc.Approve(c.UserContext(), callerFrom(c), c.Params("id"), in.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar la solicitud
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la solicitud"
// @Param        body  body  dto.ActionRequest  false  "Motivo del rechazo"
// @Success      200   {object}  dto.ActionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	in, handled, err := h.actionBody(c)
	if handled {
		return err
	}
	out, err := h.uc.Reject(c.UserContext(), callerFrom(c), c.Params("id"), in.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Withdraw godoc
// @Summary      Retirar la solicitud (solo el solicitante)
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la solicitud"
// @Param        body  body  dto.ActionRequest  false  "Comentario opcional"
// @Success      200   {object}  dto.ApprovalResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/withdraw [post]
func (h *ApprovalHandler) Withdraw(c *fiber.Ctx) error {
	in, handled, err := h.actionBody(c)
	if handled {
		return err
	}
	out, err := h.uc.Withdraw(c.UserContext(), callerFrom(c), c.Params("id"), in.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Comment godoc
// @Summary      Comentar una solicitud
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la solicitud"
// @Param        body  body  dto.CommentRequest  true  "Comentario"
// @Success      201   {object}  dto.HistoryEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/comments [post]
func (h *ApprovalHandler) Comment(c *fiber.Ctx) error {
	var in dto.CommentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if handled, err := validateStruct(c, in); handled {
		return err
	}
	out, err := h.uc.Comment(c.UserContext(), callerFrom(c), c.Params("id"), in.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Verify godoc
// @Summary      Verificar la solicitud contra su historial
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.VerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/verify [get]
func (h *ApprovalHandler) Verify(c *fiber.Ctx) error {
	out, err := h.uc.Verify(c.UserContext(), callerFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Comprobante PDF de la solicitud
// @Tags         approvals
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/pdf [get]
func (h *ApprovalHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.DownloadReceipt(c.UserContext(), callerFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// actionBody el cuerpo de approve/reject/withdraw es opcional.
func (h *ApprovalHandler) actionBody(c *fiber.Ctx) (dto.ActionRequest, bool, error) {
	var in dto.ActionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return in, true, badBody(c)
		}
	}
	if handled, err := validateStruct(c, in); handled {
		return in, true, err
	}
	return in, false, nil
}
