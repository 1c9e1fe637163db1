package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"almacen-backend/internal/models"
	"almacen-backend/internal/money"
	"almacen-backend/internal/sheets"

	"github.com/gofiber/fiber/v2"
)

// Service lee y actualiza la hoja Productos.
type Service struct {
	store sheets.Store
}

func NewService(store sheets.Store) *Service {
	return &Service{store: store}
}

// ParseProduct arma un producto a partir de la fila cruda. Las filas sin
// nombre no son productos.
func ParseProduct(raw []string, row int) (models.Product, bool) {
	name := sheets.Cell(raw, models.ProductColName)
	if name == "" {
		return models.Product{}, false
	}

	p := models.Product{
		Row:         row,
		Name:        name,
		Category:    sheets.Cell(raw, models.ProductColCategory),
		Price:       money.MustParse(sheets.Cell(raw, models.ProductColPrice)),
		Offer:       sheets.Cell(raw, models.ProductColOffer),
		Description: sheets.Cell(raw, models.ProductColDescription),
		Image:       sheets.Cell(raw, models.ProductColImage),
		Stock:       ParseQuantity(sheets.Cell(raw, models.ProductColStock)),
	}
	p.FinalPrice, p.OnSale = ApplyOffer(p.Price, p.Offer)
	return p, true
}

// ParseQuantity lee un entero de la planilla ("3", "3.0", "3,0"); vacío o inválido es 0.
func ParseQuantity(s string) int {
	d, err := money.Parse(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.store.ReadRows(ctx, sheets.SheetProducts)
	if err != nil {
		return nil, fmt.Errorf("leer productos: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for i, raw := range rows {
		if p, ok := ParseProduct(raw, i+sheets.FirstDataRow); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, row int) (models.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.Row == row {
			return p, nil
		}
	}
	return models.Product{}, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Producto en fila %d no encontrado", row))
}

// Resolve busca por fila o, si fila es 0, por nombre exacto sin distinguir mayúsculas.
func Resolve(products []models.Product, row int, name string) (models.Product, bool) {
	name = strings.TrimSpace(name)
	for _, p := range products {
		if row > 0 && p.Row == row {
			return p, true
		}
		if row == 0 && name != "" && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return models.Product{}, false
}

// SetStock escribe la columna Stock de la fila.
func (s *Service) SetStock(ctx context.Context, row, stock int) error {
	if err := s.store.UpdateCell(ctx, sheets.SheetProducts, row, models.ProductColStock, stock); err != nil {
		return fmt.Errorf("actualizar stock fila %d: %w", row, err)
	}
	return nil
}

type Filter struct {
	Query    string
	Category string
	Order    string // precio_asc | precio_desc | nombre
	InStock  bool
}

const (
	OrderPriceAsc  = "precio_asc"
	OrderPriceDesc = "precio_desc"
	OrderName      = "nombre"
)

func Apply(products []models.Product, f Filter) []models.Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.InStock && p.Stock <= 0 {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}

	switch f.Order {
	case OrderPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].FinalPrice.LessThan(out[j].FinalPrice) })
	case OrderPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].FinalPrice.GreaterThan(out[j].FinalPrice) })
	case OrderName:
		sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	}
	return out
}

type CategoryCount struct {
	Name     string `json:"nombre"`
	Products int    `json:"productos"`
}

// Categories agrupa sin distinguir mayúsculas y conserva la primera grafía vista.
func Categories(products []models.Product) []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		key := strings.ToLower(p.Category)
		i, ok := index[key]
		if !ok {
			out = append(out, CategoryCount{Name: p.Category})
			i = len(out) - 1
			index[key] = i
		}
		out[i].Products++
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}
