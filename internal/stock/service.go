package stock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"almacen-backend/internal/audit"
	"almacen-backend/internal/catalog"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/models"
	"almacen-backend/internal/sheets"

	"github.com/gofiber/fiber/v2"
)

var log = logger.Log

type Item struct {
	Row      int    `json:"fila"`
	Name     string `json:"nombre"`
	Category string `json:"categoria"`
	Stock    int    `json:"stock"`
	Low      bool   `json:"bajo"`
}

// Change es una variación relativa del stock de un producto.
type Change struct {
	Row   int
	Delta int
}

// Service serializa las lecturas-modificaciones del stock dentro del proceso.
type Service struct {
	mu      sync.Mutex
	store   sheets.Store
	catalog *catalog.Service
	now     func() time.Time
}

func NewService(store sheets.Store, cat *catalog.Service) *Service {
	return &Service{store: store, catalog: cat, now: time.Now}
}

func (s *Service) Levels(ctx context.Context, minimum int) ([]Item, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return LowStock(products, minimum, false), nil
}

// LowStock arma los niveles de stock; con onlyLow devuelve sólo los que están
// por debajo del mínimo.
func LowStock(products []models.Product, minimum int, onlyLow bool) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		low := p.Stock < minimum
		if onlyLow && !low {
			continue
		}
		items = append(items, Item{Row: p.Row, Name: p.Name, Category: p.Category, Stock: p.Stock, Low: low})
	}
	return items
}

// Set fija el stock absoluto de un producto.
func (s *Service) Set(ctx context.Context, row, value int, reason, user string) (models.StockEntry, error) {
	if value < 0 {
		return models.StockEntry{}, fiber.NewError(fiber.StatusBadRequest, "stock no puede ser negativo")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.catalog.Get(ctx, row)
	if err != nil {
		return models.StockEntry{}, err
	}
	return s.write(ctx, p, value, reasonOr(reason, "Ajuste manual"), user)
}

// Adjust suma delta al stock del producto (por fila o por nombre). El stock
// resultante no puede quedar negativo.
func (s *Service) Adjust(ctx context.Context, row int, name string, delta int, reason, user string) (models.StockEntry, error) {
	if delta == 0 {
		return models.StockEntry{}, fiber.NewError(fiber.StatusBadRequest, "delta no puede ser cero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.catalog.List(ctx)
	if err != nil {
		return models.StockEntry{}, err
	}
	p, ok := catalog.Resolve(products, row, name)
	if !ok {
		return models.StockEntry{}, fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
	}
	if p.Stock+delta < 0 {
		return models.StockEntry{}, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Stock insuficiente para %s (hay %d)", p.Name, p.Stock))
	}
	return s.write(ctx, p, p.Stock+delta, reasonOr(reason, "Ajuste"), user)
}

// ApplyChanges aplica varias variaciones juntas (una venta o su anulación).
// Valida todas antes de escribir; si una escritura falla, revierte las ya hechas.
func (s *Service) ApplyChanges(ctx context.Context, changes []Change, reason, user string) ([]models.StockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	// una misma fila puede venir más de una vez
	byRow := make(map[int]models.Product, len(products))
	for _, p := range products {
		byRow[p.Row] = p
	}
	target := make(map[int]int)
	var order []int
	for _, ch := range changes {
		p, ok := byRow[ch.Row]
		if !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Producto en fila %d no encontrado", ch.Row))
		}
		if _, seen := target[ch.Row]; !seen {
			target[ch.Row] = p.Stock
			order = append(order, ch.Row)
		}
		target[ch.Row] += ch.Delta
		if target[ch.Row] < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Stock insuficiente para %s (hay %d)", p.Name, p.Stock))
		}
	}

	entries := make([]models.StockEntry, 0, len(order))
	for _, row := range order {
		entry, err := s.write(ctx, byRow[row], target[row], reason, user)
		if err != nil {
			s.rollback(ctx, byRow, entries, user)
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) rollback(ctx context.Context, byRow map[int]models.Product, done []models.StockEntry, user string) {
	for _, e := range done {
		if err := s.catalog.SetStock(ctx, e.Row, e.Previous); err != nil {
			log.Errorf("No se pudo revertir el stock de %s (fila %d) a %d: %v", e.Product, e.Row, e.Previous, err)
			continue
		}
		s.logMovement(ctx, byRow[e.Row].Name, e.New, e.Previous, "Reversión", user)
	}
}

func (s *Service) write(ctx context.Context, p models.Product, value int, reason, user string) (models.StockEntry, error) {
	if err := s.catalog.SetStock(ctx, p.Row, value); err != nil {
		return models.StockEntry{}, err
	}

	entry := models.StockEntry{
		Row:      p.Row,
		Time:     s.now().Format(models.DateTimeLayout),
		Product:  p.Name,
		Previous: p.Stock,
		New:      value,
		Delta:    value - p.Stock,
		Reason:   reason,
		User:     user,
	}
	s.logMovement(ctx, p.Name, p.Stock, value, reason, user)

	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "stock",
		EntityID:    fmt.Sprint(p.Row),
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Stock de %s: %d -> %d (%s)", p.Name, p.Stock, value, reason),
		Before:      map[string]int{"stock": p.Stock},
		After:       map[string]int{"stock": value},
	})
	return entry, nil
}

// logMovement agrega la fila a la hoja Stock; si falla, el cambio ya está hecho
// y sólo se loguea.
func (s *Service) logMovement(ctx context.Context, product string, previous, value int, reason, user string) {
	_, err := s.store.AppendRows(ctx, sheets.SheetStock, [][]any{{
		s.now().Format(models.DateTimeLayout), product, previous, value, reason, user,
	}})
	if err != nil {
		log.Warningf("Movimiento de stock de %s no registrado: %v", product, err)
	}
}

// Movements devuelve el registro de movimientos, el más reciente primero.
func (s *Service) Movements(ctx context.Context, product string, limit int) ([]models.StockEntry, error) {
	rows, err := s.store.ReadRows(ctx, sheets.SheetStock)
	if err != nil {
		return nil, fmt.Errorf("leer movimientos de stock: %w", err)
	}

	out := make([]models.StockEntry, 0, min(len(rows), limit))
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		raw := rows[i]
		name := sheets.Cell(raw, models.StockColProduct)
		if name == "" {
			continue
		}
		if product != "" && !strings.EqualFold(name, product) {
			continue
		}
		prev := catalog.ParseQuantity(sheets.Cell(raw, models.StockColPrevious))
		next := catalog.ParseQuantity(sheets.Cell(raw, models.StockColNew))
		out = append(out, models.StockEntry{
			Row:      i + sheets.FirstDataRow,
			Time:     sheets.Cell(raw, models.StockColTime),
			Product:  name,
			Previous: prev,
			New:      next,
			Delta:    next - prev,
			Reason:   sheets.Cell(raw, models.StockColReason),
			User:     sheets.Cell(raw, models.StockColUser),
		})
	}
	return out, nil
}

func reasonOr(reason, def string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return def
}
