package stock

import (
	"fmt"
	"strings"

	"almacen-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type SetRequest struct {
	Stock  *int   `json:"stock"`
	Reason string `json:"motivo"`
}

type AdjustRequest struct {
	Row     int    `json:"fila"`
	Product string `json:"producto"`
	Delta   int    `json:"delta"`
	Reason  string `json:"motivo"`
}

// GET /api/stock?minimo=5
func ListStockHandler(svc *Service, defaultMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		minimum := c.QueryInt("minimo", defaultMin)
		if minimum < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "minimo no puede ser negativo")
		}

		items, err := svc.Levels(c.UserContext(), minimum)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// PUT /api/stock/:fila
func SetStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		row, err := c.ParamsInt("fila")
		if err != nil || row < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "fila inválida")
		}

		var body SetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}
		if body.Stock == nil {
			return fiber.NewError(fiber.StatusBadRequest, "stock es obligatorio")
		}

		entry, err := svc.Set(c.UserContext(), row, *body.Stock, body.Reason, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "movimiento": entry})
	}
}

// POST /api/stock/ajuste
func AdjustStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}
		if body.Row == 0 && body.Product == "" {
			return fiber.NewError(fiber.StatusBadRequest, "fila o producto es obligatorio")
		}

		entry, err := svc.Adjust(c.UserContext(), body.Row, body.Product, body.Delta, body.Reason, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "movimiento": entry})
	}
}

// GET /api/stock/movimientos?producto=&limite=100
func ListMovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limite", 100)
		if limit <= 0 || limit > 1000 {
			return fiber.NewError(fiber.StatusBadRequest, "limite debe estar entre 1 y 1000")
		}

		entries, err := svc.Movements(c.UserContext(), c.Query("producto"), limit)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// POST /api/stock/importar (multipart, campo "archivo")
func ImportStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("archivo")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Falta el archivo")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sólo se aceptan archivos .xlsx")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo abrir el archivo")
		}
		defer file.Close()

		res, err := svc.ImportCount(c.UserContext(), file, auth.CurrentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"resultado": res,
			"mensaje":   fmt.Sprintf("%d productos actualizados, %d sin coincidencia", len(res.Updated), len(res.Unmatched)),
		})
	}
}
