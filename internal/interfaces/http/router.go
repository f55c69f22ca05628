package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/bodegas-api/internal/application/auth"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/reports"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	PublisherUC *usecase.PublisherUseCase
	AuthorUC    *usecase.AuthorUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	MovementUC  *inventory.MovementUseCase
	ReportUC    *reports.ReportUseCase
	JWTSecret   string
	// LoginLimit intentos de login por IP y minuto; 0 desactiva el límite.
	LoginLimit int
}

// Router registra las rutas de la API.
// Los roles por ruta reflejan la política de access; los casos de uso la vuelven a verificar.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	manager := RequireRole(entity.RoleManager)
	worker := RequireRole(entity.RoleWorker)
	anyRole := RequireRole(entity.RoleManager, entity.RoleWorker)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	if deps.LoginLimit > 0 {
		api.Post("/auth/login", loginLimiter(deps.LoginLimit), authHandler.Login)
	} else {
		api.Post("/auth/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	users := protected.Group("/users", manager)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)

	publishers := protected.Group("/publishers", manager)
	publisherHandler := NewPublisherHandler(deps.PublisherUC)
	publishers.Get("/", publisherHandler.List)
	publishers.Post("/", publisherHandler.Create)
	publishers.Get("/:id", publisherHandler.GetByID)
	publishers.Put("/:id", publisherHandler.Update)
	publishers.Delete("/:id", publisherHandler.Delete)

	authors := protected.Group("/authors", manager)
	authorHandler := NewAuthorHandler(deps.AuthorUC)
	authors.Get("/", authorHandler.List)
	authors.Post("/", authorHandler.Create)
	authors.Get("/:id", authorHandler.GetByID)
	authors.Put("/:id", authorHandler.Update)
	authors.Delete("/:id", authorHandler.Delete)

	// Products: lectura ambos roles, mutación jefe de bodega
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Post("/", manager, productHandler.Create)
	products.Put("/:id", manager, productHandler.Update)
	products.Delete("/:id", manager, productHandler.Delete)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)
	warehouses.Get("/:id/products", manager, warehouseHandler.Stock)
	warehouses.Post("/", manager, warehouseHandler.Create)
	warehouses.Put("/:id", manager, warehouseHandler.Update)
	warehouses.Delete("/:id", manager, warehouseHandler.Delete)

	// Movements (bodeguero)
	movements := protected.Group("/movements", worker)
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Get("/", movementHandler.List)
	movements.Post("/", movementHandler.Create)
	movements.Delete("/lines/:lineID", movementHandler.DeleteLine)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Delete("/:id", movementHandler.Delete)
	movements.Post("/:id/lines", movementHandler.AddLine)

	reportGroup := protected.Group("/reports", manager)
	reportHandler := NewReportHandler(deps.ReportUC)
	reportGroup.Get("/summary", reportHandler.Summary)
	reportGroup.Get("/movements", reportHandler.Movements)
	reportGroup.Get("/movements.pdf", reportHandler.MovementsPDF)
}

func loginLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "TOO_MANY_REQUESTS",
				Message: "demasiados intentos de inicio de sesión",
			})
		},
	})
}
