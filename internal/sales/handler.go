package sales

import (
	"net/url"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// POST /api/ventas
func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		sale, err := svc.Create(c.UserContext(), body, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "venta": sale})
	}
}

// GET /api/ventas?fecha=01/03/2025 o ?desde=...&hasta=...
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter
		if date := c.Query("fecha"); date != "" {
			d, err := models.ParseDate(date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			f.Date = d.Format(models.DateLayout)
		}
		r, err := models.ParseDateRange(c.Query("desde"), c.Query("hasta"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		f.Range = r

		sales, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(sales)
	}
}

// saleID decodifica el parámetro :id. Las ventas sin id se identifican por
// "DD/MM/YYYY HH:MM:SS" y llegan como 01%2F03%2F2025%2010:00:00.
func saleID(c *fiber.Ctx) (string, error) {
	id, err := url.QueryUnescape(c.Params("id"))
	if err != nil || id == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "id de venta inválido")
	}
	return id, nil
}

// GET /api/ventas/:id
func GetSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := saleID(c)
		if err != nil {
			return err
		}
		sale, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(sale)
	}
}

// DELETE /api/ventas/:id
func DeleteSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := saleID(c)
		if err != nil {
			return err
		}
		sale, reverted, err := svc.Delete(c.UserContext(), id, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success":         true,
			"venta":           sale,
			"caja_descontada": reverted,
		})
	}
}

// POST /api/ventas/formatear
func FormatSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Format(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "resultado": res})
	}
}
