package quote

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// POST /api/presupuesto
func CreateQuoteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Request
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		q, err := svc.Build(c.UserContext(), body)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := Render(q, &buf); err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, FileName(q)))
		return c.Send(buf.Bytes())
	}
}
