package employee

import (
	"almacen-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type CreateRequest struct {
	Name  string `json:"nombre"`
	Shift string `json:"turno"`
}

// GET /api/empleados?activos=1
func ListEmployeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), c.Query("activos") == "1")
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/empleados/:id
func GetEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// POST /api/empleados
func CreateEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		e, err := svc.Create(c.UserContext(), body.Name, body.Shift, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// PUT /api/empleados/:id
func UpdateEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body UpdateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		e, err := svc.Update(c.UserContext(), id, body, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}
