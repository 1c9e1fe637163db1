package report

import (
	"almacen-backend/internal/models"
	"almacen-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
)

func dateRange(c *fiber.Ctx) (models.DateRange, error) {
	r, err := models.ParseDateRange(c.Query("desde"), c.Query("hasta"))
	if err != nil {
		return r, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return r, nil
}

// GET /api/reportes/resumen?desde&hasta
func SummaryHandler(svc *Service, defaultMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRange(c)
		if err != nil {
			return err
		}
		snap, err := svc.Load(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON(BuildSummary(snap, defaultMin))
	}
}

// GET /api/reportes/diario?desde&hasta&periodo=diario|semanal|mensual
func DailyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRange(c)
		if err != nil {
			return err
		}
		period := c.Query("periodo", PeriodDaily)
		switch period {
		case PeriodDaily, PeriodWeekly, PeriodMonthly:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "periodo debe ser diario, semanal o mensual")
		}

		snap, err := svc.Load(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON(BuildSeries(snap.Sales, period))
	}
}

// GET /api/reportes/productos?limite=10
func TopProductsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limite", 10)
		if limit <= 0 || limit > 500 {
			return fiber.NewError(fiber.StatusBadRequest, "limite debe estar entre 1 y 500")
		}
		r, err := dateRange(c)
		if err != nil {
			return err
		}
		snap, err := svc.Load(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON(TopProducts(snap, limit))
	}
}

// GET /api/reportes/empleados
func EmployeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRange(c)
		if err != nil {
			return err
		}
		snap, err := svc.Load(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON(ByEmployee(snap.Sales))
	}
}

// GET /api/reportes/stock-bajo?minimo=5
func LowStockHandler(svc *Service, defaultMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		minimum := c.QueryInt("minimo", defaultMin)
		if minimum < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "minimo no puede ser negativo")
		}
		products, err := svc.catalog.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(stock.LowStock(products, minimum, true))
	}
}
