package catalog

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/productos?q=&orden=precio_asc|precio_desc|nombre&stock=1
func ListProductsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order := c.Query("orden")
		switch order {
		case "", OrderPriceAsc, OrderPriceDesc, OrderName:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "orden debe ser precio_asc, precio_desc o nombre")
		}

		products, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}

		return c.JSON(Apply(products, Filter{
			Query:   c.Query("q"),
			Order:   order,
			InStock: c.Query("stock") == "1",
		}))
	}
}

// GET /api/productos/categoria/:categoria
func ListByCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Params("categoria")
		if category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Categoría requerida")
		}

		products, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(Apply(products, Filter{Category: category, Order: c.Query("orden")}))
	}
}

// GET /api/productos/categorias
func ListCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		cats := Categories(products)
		if cats == nil {
			cats = []CategoryCount{}
		}
		return c.JSON(cats)
	}
}

// GET /api/productos/:fila
func GetProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		row, err := c.ParamsInt("fila")
		if err != nil || row < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "fila inválida")
		}

		p, err := svc.Get(c.UserContext(), row)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}
