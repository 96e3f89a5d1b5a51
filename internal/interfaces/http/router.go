package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RouteUC        *usecase.RouteUseCase
	ApprovalUC     *usecase.ApprovalUseCase
	DelegationUC   *usecase.DelegationUseCase
	UserUC         *usecase.UserUseCase
	FormTemplateUC *usecase.FormTemplateUseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)
	adminOrManager := RequireRole(entity.RoleAdmin, entity.RoleManager)

	// Rutas de aprobación (escritura: admin, manager)
	routes := api.Group("/routes")
	routeHandler := NewRouteHandler(deps.RouteUC)
	routes.Get("/", routeHandler.List)
	routes.Post("/", adminOrManager, routeHandler.Create)
	routes.Get("/:id", routeHandler.GetByID)
	routes.Put("/:id", adminOrManager, routeHandler.Update)
	routes.Delete("/:id", adminOrManager, routeHandler.Delete)

	// Solicitudes
	approvals := api.Group("/approvals")
	approvalHandler := NewApprovalHandler(deps.ApprovalUC)
	approvals.Get("/", approvalHandler.List)
	approvals.Post("/", approvalHandler.Create)
	approvals.Get("/:id", approvalHandler.GetByID)
	approvals.Get("/:id/history", approvalHandler.History)
	approvals.Get("/:id/pdf", approvalHandler.DownloadPDF)
	approvals.Get("/:id/verify", adminOnly, approvalHandler.Verify)
	approvals.Post("/:id/approve", approvalHandler.Approve)
	approvals.Post("/:id/reject", approvalHandler.Reject)
	approvals.Post("/:id/withdraw", approvalHandler.Withdraw)
	approvals.Post("/:id/comments", approvalHandler.Comment)

	// Delegaciones
	delegations := api.Group("/delegations")
	delegationHandler := NewDelegationHandler(deps.DelegationUC)
	delegations.Get("/", delegationHandler.List)
	delegations.Post("/", delegationHandler.Create)
	delegations.Delete("/:id", delegationHandler.Delete)

	// Usuarios (escritura: admin)
	users := api.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", adminOnly, userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Delete("/:id", adminOnly, userHandler.Delete)

	// Plantillas de formulario (escritura: admin)
	templates := api.Group("/form-templates")
	templateHandler := NewFormTemplateHandler(deps.FormTemplateUC)
	templates.Get("/", templateHandler.List)
	templates.Post("/", adminOnly, templateHandler.Create)
	templates.Get("/:id", templateHandler.GetByID)
}
