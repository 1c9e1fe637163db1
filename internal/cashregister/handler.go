package cashregister

import (
	"almacen-backend/internal/auth"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StateResponse struct {
	models.CashSession
	MovementsNet float64 `json:"movimientos_neto"`
	ExpectedCash float64 `json:"efectivo_esperado"`
}

func stateResponse(s models.CashSession) StateResponse {
	return StateResponse{
		CashSession:  s,
		MovementsNet: s.MovementsNet().Round(2).InexactFloat64(),
		ExpectedCash: s.ExpectedCash().Round(2).InexactFloat64(),
	}
}

// GET /api/caja/estado
func StateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.State()
		if err != nil {
			return err
		}
		return c.JSON(stateResponse(s))
	}
}

// POST /api/caja/abrir
func OpenHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		s, err := svc.Open(body, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "caja": stateResponse(s)})
	}
}

// POST /api/caja/movimiento
func MovementHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		s, err := svc.AddMovement(body, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "caja": stateResponse(s)})
	}
}

// POST /api/caja/cerrar
func CloseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CloseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		closure, err := svc.Close(body, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "cierre": closure})
	}
}

// GET /api/caja/historial?desde=01/03/2025&hasta=31/03/2025
func HistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := models.ParseDateRange(c.Query("desde"), c.Query("hasta"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		closures, err := svc.History(r)
		if err != nil {
			return err
		}
		return c.JSON(closures)
	}
}
