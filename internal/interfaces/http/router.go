package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bookstore-inventory/internal/application/dto"
	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog     *inventory.CatalogUseCase
	Ledger      *inventory.StockLedgerUseCase
	History     *inventory.HistoryUseCase
	Alerts      *inventory.AlertUseCase
	Restock     *inventory.ReplenishmentUseCase
	JWTSecret   string
	SwaggerFile string // vacío o inexistente: /docs no se monta
	Log         zerolog.Logger
}

// NewApp crea la aplicación Fiber con el manejador de errores JSON.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: err.Error()})
		},
	})
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(RequestLogger(deps.Log))

	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Bookstore Inventory API",
			}))
		} else {
			deps.Log.Warn().Str("file", deps.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	items := NewItemHandler(deps.Catalog, deps.Ledger, deps.History, deps.Log)
	alerts := NewAlertHandler(deps.Alerts, deps.Restock, deps.Log)

	api := app.Group("/api")
	api.Get("/adjustment-reasons", items.Reasons)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	itemGroup := protected.Group("/items")
	itemGroup.Post("/", items.Create)
	itemGroup.Get("/:source/:code", items.Get)
	itemGroup.Patch("/:source/:code", items.Update)
	itemGroup.Post("/:source/:code/adjustments", items.Adjust)
	itemGroup.Get("/:source/:code/history", items.History)
	itemGroup.Put("/:source/:code/threshold", alerts.ConfigureThreshold)

	alertGroup := protected.Group("/alerts")
	alertGroup.Post("/evaluate", RequireRole(jwt.RoleAdmin, jwt.RoleManager), alerts.Evaluate)
	alertGroup.Get("/", alerts.List)
	alertGroup.Get("/replenishment", RequireRole(jwt.RoleAdmin, jwt.RoleManager), alerts.Replenishment)
	alertGroup.Get("/:id", alerts.Get)
	alertGroup.Get("/:id/history", alerts.History)
	alertGroup.Post("/:id/transition", alerts.Transition)
	alertGroup.Post("/:id/acknowledge", alerts.Acknowledge)
	alertGroup.Post("/:id/reorder", alerts.MarkForReorder)
}
