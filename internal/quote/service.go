package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"almacen-backend/internal/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ValidDays es la vigencia impresa en el presupuesto.
const ValidDays = 7

type ItemRequest struct {
	Row      int              `json:"fila"`
	Product  string           `json:"producto"`
	Quantity int              `json:"cantidad"`
	Price    *decimal.Decimal `json:"precio"`
}

type Request struct {
	Client string        `json:"cliente"`
	Items  []ItemRequest `json:"items"`
	Notes  string        `json:"notas"`
}

type Line struct {
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Quote struct {
	Client string
	Date   time.Time
	Lines  []Line
	Total  decimal.Decimal
	Notes  string
}

type Service struct {
	catalog *catalog.Service
	now     func() time.Time
}

func NewService(cat *catalog.Service) *Service {
	return &Service{catalog: cat, now: time.Now}
}

// Build arma el presupuesto con los precios finales del catálogo. Un ítem
// que no está en el catálogo necesita precio explícito.
func (s *Service) Build(ctx context.Context, req Request) (Quote, error) {
	if len(req.Items) == 0 {
		return Quote{}, fiber.NewError(fiber.StatusBadRequest, "El presupuesto no tiene ítems")
	}

	products, err := s.catalog.List(ctx)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		Client: strings.TrimSpace(req.Client),
		Date:   s.now(),
		Notes:  strings.TrimSpace(req.Notes),
	}
	if q.Client == "" {
		q.Client = "Consumidor final"
	}

	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return Quote{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: cantidad debe ser mayor a cero", i+1))
		}

		line := Line{Product: strings.TrimSpace(it.Product), Quantity: it.Quantity}
		if p, ok := catalog.Resolve(products, it.Row, it.Product); ok {
			line.Product = p.Name
			line.UnitPrice = p.FinalPrice
		} else if it.Price == nil {
			return Quote{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: producto no encontrado y sin precio", i+1))
		}
		if it.Price != nil {
			if it.Price.IsNegative() {
				return Quote{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: precio no puede ser negativo", i+1))
			}
			line.UnitPrice = *it.Price
		}
		if line.Product == "" {
			return Quote{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: producto es obligatorio", i+1))
		}

		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		q.Lines = append(q.Lines, line)
		q.Total = q.Total.Add(line.Subtotal)
	}
	return q, nil
}
