package server

import (
	"time"

	"almacen-backend/internal/audit"
	"almacen-backend/internal/auth"
	"almacen-backend/internal/cashregister"
	"almacen-backend/internal/catalog"
	"almacen-backend/internal/config"
	"almacen-backend/internal/employee"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/quote"
	"almacen-backend/internal/report"
	"almacen-backend/internal/sales"
	"almacen-backend/internal/salesformat"
	"almacen-backend/internal/sheets"
	"almacen-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var log = logger.Log

// ErrorHandler responde {"success": false, "error": "..."}; los errores que
// no son *fiber.Error se loguean y salen como 500 genérico.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"success": false,
			"error":   e.Message,
		})
	}
	log.Errorf("Error inesperado en %s %s: %v", c.Method(), c.OriginalURL(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Error interno del servidor",
	})
}

// New arma la app con todas las rutas sobre el store dado.
func New(cfg *config.Config, store sheets.Store) (*fiber.App, error) {
	creds, err := auth.NewCredentials(cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	catalogSvc := catalog.NewService(store)
	stockSvc := stock.NewService(store, catalogSvc)
	cajaSvc := cashregister.NewService(cashregister.NewFileStore(cfg.CajaFile))
	formatter := salesformat.New(store, cfg.SalesGroupKey)
	salesSvc := sales.NewService(store, catalogSvc, stockSvc, cajaSvc, formatter)
	employeeSvc := employee.NewService(store)
	reportSvc := report.NewService(store, catalogSvc)
	quoteSvc := quote.NewService(catalogSvc)

	app := fiber.New(fiber.Config{
		AppName:      "almacen-backend",
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Públicas
	api.Get("/health", HealthHandler(store))
	api.Post("/auth/login", auth.LoginHandler(cfg, creds))

	api.Get("/productos", catalog.ListProductsHandler(catalogSvc))
	api.Get("/productos/categorias", catalog.ListCategoriesHandler(catalogSvc))
	api.Get("/productos/categoria/:categoria", catalog.ListByCategoryHandler(catalogSvc))
	api.Get("/productos/:fila", catalog.GetProductHandler(catalogSvc))

	// el carrito de la tienda pide el presupuesto sin login
	api.Post("/presupuesto", quote.CreateQuoteHandler(quoteSvc))

	// Protegidas
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler())

	// Caja
	protected.Get("/caja/estado", cashregister.StateHandler(cajaSvc))
	protected.Post("/caja/abrir", cashregister.OpenHandler(cajaSvc))
	protected.Post("/caja/movimiento", cashregister.MovementHandler(cajaSvc))
	protected.Post("/caja/cerrar", cashregister.CloseHandler(cajaSvc))
	protected.Get("/caja/historial", cashregister.HistoryHandler(cajaSvc))

	// Ventas
	protected.Post("/ventas", sales.CreateSaleHandler(salesSvc))
	protected.Get("/ventas", sales.ListSalesHandler(salesSvc))
	protected.Post("/ventas/formatear", sales.FormatSalesHandler(salesSvc))
	protected.Get("/ventas/:id", sales.GetSaleHandler(salesSvc))
	protected.Delete("/ventas/:id", sales.DeleteSaleHandler(salesSvc))

	// Stock
	protected.Get("/stock", stock.ListStockHandler(stockSvc, cfg.LowStockLimit))
	protected.Get("/stock/movimientos", stock.ListMovementsHandler(stockSvc))
	protected.Post("/stock/ajuste", stock.AdjustStockHandler(stockSvc))
	protected.Post("/stock/importar", stock.ImportStockHandler(stockSvc))
	protected.Put("/stock/:fila", stock.SetStockHandler(stockSvc))

	// Empleados
	protected.Get("/empleados", employee.ListEmployeesHandler(employeeSvc))
	protected.Get("/empleados/:id", employee.GetEmployeeHandler(employeeSvc))
	protected.Post("/empleados", employee.CreateEmployeeHandler(employeeSvc))
	protected.Put("/empleados/:id", employee.UpdateEmployeeHandler(employeeSvc))

	// Reportes
	protected.Get("/reportes/resumen", report.SummaryHandler(reportSvc, cfg.LowStockLimit))
	protected.Get("/reportes/diario", report.DailyHandler(reportSvc))
	protected.Get("/reportes/productos", report.TopProductsHandler(reportSvc))
	protected.Get("/reportes/empleados", report.EmployeesHandler(reportSvc))
	protected.Get("/reportes/stock-bajo", report.LowStockHandler(reportSvc, cfg.LowStockLimit))

	// Auditoría
	protected.Get("/auditoria", audit.ListAuditLogsHandler())

	return app, nil
}

// GET /api/health
func HealthHandler(store sheets.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"backend": store.Name(),
			"time":    time.Now().Format(time.RFC3339),
		})
	}
}
