package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/geststore-api/internal/application/auth"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/application/tasks"
	"github.com/jhoicas/geststore-api/internal/application/usecase"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/pkg/logger"
	pkgredis "github.com/jhoicas/geststore-api/pkg/redis"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	UserUC          *usecase.UserUseCase
	ProductUC       *usecase.ProductUseCase
	StockUC         *inventory.StockUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	TaskUC          *tasks.TaskUseCase
	TaskProductUC   *tasks.TaskProductUseCase
	JWTSecret       string

	// Idempotencia opcional para los POST que mueven stock (nil = deshabilitada).
	Idempotency    pkgredis.IdempotencyStore
	IdempotencyTTL time.Duration

	// Ready comprueba dependencias para /health (nil = siempre ok).
	Ready  func(ctx context.Context) error
	Logger *logger.Logger
}

var (
	managers = []string{entity.RoleAdmin, entity.RoleManager}
	everyone = []string{entity.RoleAdmin, entity.RoleManager, entity.RoleWorker}
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", health(deps.Ready))

	api := app.Group("/api")
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, deps.Logger)
	manage := RequireRole(managers...)
	anyRole := RequireRole(everyone...)

	// Auth (público salvo /me)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", anyRole, authHandler.Me)

	// Users (ADMIN)
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users", RequireRole(entity.RoleAdmin))
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Patch("/:id/active", userHandler.SetActive)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Post("/", manage, productHandler.Create)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/sku/:sku", anyRole, productHandler.GetBySKU)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", manage, productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleAdmin), productHandler.Delete)

	// Stock: lecturas y mutaciones de gestión. Las rutas fijas van antes de /:id.
	stockHandler := NewStockHandler(deps.StockUC, deps.ReplenishmentUC)
	stock := protected.Group("/stock", manage)
	stock.Get("/low-stock", stockHandler.LowStock)
	stock.Get("/critical", stockHandler.Critical)
	stock.Get("/out-of-stock", stockHandler.OutOfStock)
	stock.Get("/most-reserved", stockHandler.MostReserved)
	stock.Get("/value", stockHandler.Value)
	stock.Get("/statistics", stockHandler.Statistics)
	stock.Get("/replenishment", stockHandler.Replenishment)
	stock.Get("/product/:productId", stockHandler.GetByProduct)
	stock.Get("/:id", stockHandler.GetByID)
	stock.Get("/:id/movements", stockHandler.Movements)
	stock.Put("/:id", stockHandler.Update)
	stock.Post("/:id/increase", idem, stockHandler.Increase)
	stock.Post("/:id/decrease", idem, stockHandler.Decrease)

	// Tasks
	taskHandler := NewTaskHandler(deps.TaskUC)
	taskGroup := protected.Group("/tasks")
	taskGroup.Post("/", manage, taskHandler.Create)
	taskGroup.Get("/", manage, taskHandler.List)
	taskGroup.Get("/unassigned", manage, taskHandler.ListUnassigned)
	taskGroup.Get("/in-progress", manage, taskHandler.ListInProgress)
	taskGroup.Get("/overdue", manage, taskHandler.ListOverdue)
	taskGroup.Get("/high-priority", manage, taskHandler.ListHighPriority)
	taskGroup.Get("/search", manage, taskHandler.Search)
	taskGroup.Get("/statistics", manage, taskHandler.Statistics)
	taskGroup.Get("/user/:userId", anyRole, taskHandler.ListByUser)
	taskGroup.Get("/created-by/:userId", manage, taskHandler.ListByCreator)
	taskGroup.Get("/:id", anyRole, taskHandler.GetByID)
	taskGroup.Put("/:id", manage, taskHandler.Update)
	taskGroup.Delete("/:id", manage, taskHandler.Delete)
	taskGroup.Post("/:id/start", anyRole, idem, taskHandler.Start)
	taskGroup.Post("/:id/complete", anyRole, idem, taskHandler.Complete)
	taskGroup.Post("/:id/cancel", manage, idem, taskHandler.Cancel)

	// Task products
	tpHandler := NewTaskProductHandler(deps.TaskProductUC)
	tp := protected.Group("/task-products")
	tp.Post("/assign", manage, idem, tpHandler.Assign)
	tp.Get("/discrepancies", manage, tpHandler.Discrepancies)
	tp.Get("/task/:taskId", anyRole, tpHandler.ListByTask)
	tp.Get("/task/:taskId/unused", anyRole, tpHandler.ListUnused)
	tp.Get("/task/:taskId/used", anyRole, tpHandler.ListUsed)
	tp.Get("/product/:productId", manage, tpHandler.ListByProduct)
	tp.Get("/product/:productId/reserved", manage, tpHandler.TotalReserved)
	tp.Put("/:id", manage, tpHandler.Update)
	tp.Post("/:id/use", anyRole, idem, tpHandler.Use)
	tp.Delete("/:id", manage, tpHandler.Remove)
}

// health godoc
// @Summary      Estado del servicio
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func health(ready func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				requestLogger(c).Warn().Err(err).Msg("health check fallido")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
