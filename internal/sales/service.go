package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"almacen-backend/internal/audit"
	"almacen-backend/internal/cashregister"
	"almacen-backend/internal/catalog"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/models"
	"almacen-backend/internal/money"
	"almacen-backend/internal/salesformat"
	"almacen-backend/internal/sheets"
	"almacen-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var log = logger.Log

type ItemRequest struct {
	Row      int              `json:"fila"`
	Product  string           `json:"producto"`
	Quantity int              `json:"cantidad"`
	Price    *decimal.Decimal `json:"precio"`
}

type CreateRequest struct {
	Items    []ItemRequest   `json:"items"`
	Payments models.Payments `json:"pagos"`
	Employee string          `json:"empleado"`
}

type Filter struct {
	Date  string // DD/MM/YYYY exacta
	Range models.DateRange
}

type Service struct {
	mu        sync.Mutex
	store     sheets.Store
	catalog   *catalog.Service
	stock     *stock.Service
	caja      *cashregister.Service
	formatter *salesformat.Formatter
	now       func() time.Time
	newID     func() string
}

func NewService(store sheets.Store, cat *catalog.Service, st *stock.Service, caja *cashregister.Service, f *salesformat.Formatter) *Service {
	return &Service{
		store:     store,
		catalog:   cat,
		stock:     st,
		caja:      caja,
		formatter: f,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create registra la venta: una fila por ítem con la misma fecha, hora e id;
// total y pagos sólo en la primera. Después descuenta stock, suma a la caja y
// da formato. Si el stock falla, las filas agregadas se borran.
func (s *Service) Create(ctx context.Context, req CreateRequest, user string) (models.Sale, error) {
	if len(req.Items) == 0 {
		return models.Sale{}, fiber.NewError(fiber.StatusBadRequest, "La venta no tiene ítems")
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return models.Sale{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: cantidad debe ser mayor a cero", i+1))
		}
		if it.Price != nil && it.Price.IsNegative() {
			return models.Sale{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: precio no puede ser negativo", i+1))
		}
	}
	p := req.Payments
	if p.Cash.IsNegative() || p.Transfer.IsNegative() || p.Card.IsNegative() {
		return models.Sale{}, fiber.NewError(fiber.StatusBadRequest, "Los pagos no pueden ser negativos")
	}

	session, err := s.caja.State()
	if err != nil {
		return models.Sale{}, err
	}
	if !session.Open {
		return models.Sale{}, fiber.NewError(fiber.StatusBadRequest, "La caja está cerrada, abrila antes de vender")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.catalog.List(ctx)
	if err != nil {
		return models.Sale{}, err
	}

	sale, changes, err := s.build(req, products)
	if err != nil {
		return models.Sale{}, err
	}
	if sale.Employee == "" {
		sale.Employee = session.Employee
	}

	if _, err := s.store.AppendRows(ctx, sheets.SheetSales, saleRows(sale)); err != nil {
		return models.Sale{}, fmt.Errorf("guardar venta: %w", err)
	}

	if _, err := s.stock.ApplyChanges(ctx, changes, "Venta "+shortID(sale.ID), user); err != nil {
		log.Errorf("Stock de la venta %s no actualizado, se borran sus filas: %v", sale.ID, err)
		if cerr := s.removeRows(ctx, sale.ID); cerr != nil {
			log.Errorf("No se pudieron borrar las filas de la venta %s: %v", sale.ID, cerr)
		}
		if fe, ok := err.(*fiber.Error); ok {
			return models.Sale{}, fe
		}
		return models.Sale{}, fmt.Errorf("actualizar stock: %w", err)
	}

	// la caja se pudo cerrar después del primer control
	if err := s.caja.RecordSale(sale.Payments); err != nil {
		log.Errorf("Venta %s no sumada a la caja, se deshace: %v", sale.ID, err)
		s.undo(ctx, sale.ID, changes, user)
		if fe, ok := err.(*fiber.Error); ok {
			return models.Sale{}, fe
		}
		return models.Sale{}, fmt.Errorf("registrar en caja: %w", err)
	}

	s.format(ctx)

	log.Infof("Venta %s: %d ítems, total %s", sale.ID, len(sale.Items), money.Format(sale.Total))
	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "venta",
		EntityID:    sale.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Venta de %d ítems por %s", len(sale.Items), money.Format(sale.Total)),
		After:       sale,
	})
	return s.reload(ctx, sale), nil
}

// build resuelve productos y precios, controla stock y pagos. Los pagos
// guardados descuentan el vuelto del efectivo.
func (s *Service) build(req CreateRequest, products []models.Product) (models.Sale, []stock.Change, error) {
	now := s.now()
	sale := models.Sale{
		ID:       s.newID(),
		Date:     now.Format(models.DateLayout),
		Time:     now.Format(models.TimeLayout),
		Employee: strings.TrimSpace(req.Employee),
	}

	requested := make(map[int]int)
	changes := make([]stock.Change, 0, len(req.Items))
	for i, it := range req.Items {
		prod, ok := catalog.Resolve(products, it.Row, it.Product)
		if !ok {
			return sale, nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ítem %d: producto no encontrado", i+1))
		}

		requested[prod.Row] += it.Quantity
		if requested[prod.Row] > prod.Stock {
			return sale, nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Stock insuficiente para %s (hay %d)", prod.Name, prod.Stock))
		}

		price := prod.FinalPrice
		if it.Price != nil {
			price = *it.Price
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		sale.Items = append(sale.Items, models.SaleItem{
			Product:   prod.Name,
			Quantity:  it.Quantity,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
		sale.Total = sale.Total.Add(subtotal)
		changes = append(changes, stock.Change{Row: prod.Row, Delta: -it.Quantity})
	}

	p := req.Payments
	if p.Transfer.Add(p.Card).GreaterThan(sale.Total) {
		return sale, nil, fiber.NewError(fiber.StatusBadRequest, "Transferencia y tarjeta no pueden superar el total")
	}
	if p.Sum().LessThan(sale.Total) {
		return sale, nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Pago insuficiente: total %s, pagado %s", money.Format(sale.Total), money.Format(p.Sum())))
	}
	sale.Change = p.Sum().Sub(sale.Total)
	p.Cash = p.Cash.Sub(sale.Change)
	sale.Payments = p
	return sale, changes, nil
}

func saleRows(sale models.Sale) [][]any {
	rows := make([][]any, 0, len(sale.Items))
	for i, it := range sale.Items {
		var total, cash, transfer, card any = "", "", "", ""
		if i == 0 {
			total = money.Cell(sale.Total)
			cash = money.Cell(sale.Payments.Cash)
			transfer = money.Cell(sale.Payments.Transfer)
			card = money.Cell(sale.Payments.Card)
		}
		rows = append(rows, []any{
			sale.Date, sale.Time, it.Product, it.Quantity,
			money.Cell(it.UnitPrice), money.Cell(it.Subtotal),
			total, cash, transfer, card,
			sale.Employee, sale.ID,
		})
	}
	return rows
}

// reload completa las filas de la hoja de la venta recién escrita.
func (s *Service) reload(ctx context.Context, sale models.Sale) models.Sale {
	stored, err := s.find(ctx, sale.ID)
	if err != nil {
		return sale
	}
	stored.Change = sale.Change
	return stored
}

// undo devuelve el stock descontado y borra las filas de una venta que no
// llegó a la caja.
func (s *Service) undo(ctx context.Context, id string, changes []stock.Change, user string) {
	back := make([]stock.Change, len(changes))
	for i, ch := range changes {
		back[i] = stock.Change{Row: ch.Row, Delta: -ch.Delta}
	}
	if _, err := s.stock.ApplyChanges(ctx, back, "Anulación venta "+shortID(id), user); err != nil {
		log.Errorf("No se pudo devolver el stock de la venta %s: %v", id, err)
	}
	if err := s.removeRows(ctx, id); err != nil {
		log.Errorf("No se pudieron borrar las filas de la venta %s: %v", id, err)
	}
}

func (s *Service) removeRows(ctx context.Context, id string) error {
	sale, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.store.DeleteRows(ctx, sheets.SheetSales, sale.Rows())
}

func (s *Service) format(ctx context.Context) {
	if s.formatter == nil {
		return
	}
	if _, err := s.formatter.Run(ctx); err != nil {
		log.Warningf("Formato de ventas no aplicado: %v", err)
	}
}

func (s *Service) all(ctx context.Context) ([]models.Sale, error) {
	raw, err := s.store.ReadRows(ctx, sheets.SheetSales)
	if err != nil {
		return nil, fmt.Errorf("leer ventas: %w", err)
	}
	return models.GroupSales(models.ParseSaleRows(raw)), nil
}

func (s *Service) find(ctx context.Context, id string) (models.Sale, error) {
	sales, err := s.all(ctx)
	if err != nil {
		return models.Sale{}, err
	}
	for _, sale := range sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return models.Sale{}, fiber.NewError(fiber.StatusNotFound, "Venta no encontrada")
}

// List devuelve las ventas filtradas, la más reciente primero.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Sale, error) {
	sales, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSales(sales, f), nil
}

func FilterSales(sales []models.Sale, f Filter) []models.Sale {
	out := make([]models.Sale, 0, len(sales))
	for i := len(sales) - 1; i >= 0; i-- {
		sale := sales[i]
		if f.Date != "" && sale.Date != f.Date {
			continue
		}
		if !f.Range.Contains(sale.Timestamp()) {
			continue
		}
		out = append(out, sale)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().After(out[j].Timestamp())
	})
	return out
}

func (s *Service) Get(ctx context.Context, id string) (models.Sale, error) {
	return s.find(ctx, id)
}

// Delete borra las filas de la venta, devuelve el stock y, si la venta es de
// la caja abierta, descuenta sus pagos.
func (s *Service) Delete(ctx context.Context, id, user string) (models.Sale, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, err := s.find(ctx, id)
	if err != nil {
		return models.Sale{}, false, err
	}
	if err := s.store.DeleteRows(ctx, sheets.SheetSales, sale.Rows()); err != nil {
		return models.Sale{}, false, fmt.Errorf("borrar venta: %w", err)
	}

	products, err := s.catalog.List(ctx)
	if err != nil {
		log.Errorf("Venta %s borrada sin devolver stock: %v", id, err)
	} else {
		var changes []stock.Change
		for _, it := range sale.Items {
			prod, ok := catalog.Resolve(products, 0, it.Product)
			if !ok {
				log.Warningf("Venta %s: %s ya no está en el catálogo, no se devuelve stock", id, it.Product)
				continue
			}
			changes = append(changes, stock.Change{Row: prod.Row, Delta: it.Quantity})
		}
		if _, err := s.stock.ApplyChanges(ctx, changes, "Anulación venta "+shortID(id), user); err != nil {
			log.Errorf("Venta %s borrada sin devolver stock: %v", id, err)
		}
	}

	reverted, err := s.caja.RevertSale(sale.Timestamp(), sale.Payments)
	if err != nil {
		log.Errorf("Venta %s borrada sin descontar de la caja: %v", id, err)
	}

	s.format(ctx)

	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "venta",
		EntityID:    id,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Venta anulada por %s", money.Format(sale.Total)),
		Before:      sale,
	})
	return sale, reverted, nil
}

// Format corre el formateador a pedido.
func (s *Service) Format(ctx context.Context) (salesformat.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatter.Run(ctx)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
