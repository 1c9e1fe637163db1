package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"almacen-backend/internal/catalog"
	"almacen-backend/internal/models"
	"almacen-backend/internal/sheets"
	"almacen-backend/internal/stock"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	PeriodDaily   = "diario"
	PeriodWeekly  = "semanal"
	PeriodMonthly = "mensual"
)

type Service struct {
	store   sheets.Store
	catalog *catalog.Service
}

func NewService(store sheets.Store, cat *catalog.Service) *Service {
	return &Service{store: store, catalog: cat}
}

// Snapshot son las ventas (agrupadas) y los productos leídos a la vez.
type Snapshot struct {
	Sales    []models.Sale
	Products []models.Product
}

// Load lee Ventas y Productos en paralelo.
func (s *Service) Load(ctx context.Context, r models.DateRange) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := s.store.ReadRows(gctx, sheets.SheetSales)
		if err != nil {
			return fmt.Errorf("leer ventas: %w", err)
		}
		for _, sale := range models.GroupSales(models.ParseSaleRows(raw)) {
			if r.Contains(sale.Timestamp()) {
				snap.Sales = append(snap.Sales, sale)
			}
		}
		return nil
	})
	g.Go(func() error {
		products, err := s.catalog.List(gctx)
		if err != nil {
			return err
		}
		snap.Products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

type Summary struct {
	Sales        int             `json:"ventas"`
	Total        decimal.Decimal `json:"total"`
	Payments     models.Payments `json:"pagos"`
	AvgTicket    decimal.Decimal `json:"ticket_promedio"`
	ItemsSold    int             `json:"items_vendidos"`
	Products     int             `json:"productos"`
	LowStockItem int             `json:"productos_stock_bajo"`
}

func BuildSummary(snap Snapshot, minimum int) Summary {
	var sum Summary
	for _, sale := range snap.Sales {
		sum.Sales++
		sum.Total = sum.Total.Add(sale.Total)
		sum.Payments = sum.Payments.Add(sale.Payments)
		for _, it := range sale.Items {
			sum.ItemsSold += it.Quantity
		}
	}
	if sum.Sales > 0 {
		sum.AvgTicket = sum.Total.Div(decimal.NewFromInt(int64(sum.Sales))).Round(2)
	}
	sum.Products = len(snap.Products)
	sum.LowStockItem = len(stock.LowStock(snap.Products, minimum, true))
	return sum
}

type Point struct {
	Label    string          `json:"fecha"`
	Sales    int             `json:"ventas"`
	Payments models.Payments `json:"pagos"`
	Total    decimal.Decimal `json:"total"`
}

type Series struct {
	Period      string          `json:"periodo"`
	Points      []Point         `json:"puntos"`
	GrandTotals models.Payments `json:"totales"`
	Total       decimal.Decimal `json:"total"`
}

func bucketOf(t time.Time, period string) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch period {
	case PeriodWeekly:
		// semana que empieza el lunes
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// BuildSeries acumula las ventas por día, semana o mes, en orden cronológico.
func BuildSeries(sales []models.Sale, period string) Series {
	switch period {
	case PeriodWeekly, PeriodMonthly:
	default:
		period = PeriodDaily
	}

	buckets := make(map[time.Time]*Point)
	for _, sale := range sales {
		ts := sale.Timestamp()
		if ts.IsZero() {
			continue
		}
		b := bucketOf(ts, period)
		p, ok := buckets[b]
		if !ok {
			p = &Point{Label: b.Format(models.DateLayout)}
			buckets[b] = p
		}
		p.Sales++
		p.Payments = p.Payments.Add(sale.Payments)
		p.Total = p.Total.Add(sale.Total)
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	series := Series{Period: period, Points: make([]Point, 0, len(keys))}
	for _, k := range keys {
		p := *buckets[k]
		series.Points = append(series.Points, p)
		series.GrandTotals = series.GrandTotals.Add(p.Payments)
		series.Total = series.Total.Add(p.Total)
	}
	return series
}

type ProductRank struct {
	Product  string          `json:"producto"`
	Category string          `json:"categoria"`
	Quantity int             `json:"cantidad"`
	Revenue  decimal.Decimal `json:"recaudado"`
}

// TopProducts ordena por cantidad vendida y, a igual cantidad, por recaudación.
func TopProducts(snap Snapshot, limit int) []ProductRank {
	categories := make(map[string]string, len(snap.Products))
	for _, p := range snap.Products {
		categories[strings.ToLower(p.Name)] = p.Category
	}

	index := make(map[string]int)
	var ranks []ProductRank
	for _, sale := range snap.Sales {
		for _, it := range sale.Items {
			key := strings.ToLower(it.Product)
			i, ok := index[key]
			if !ok {
				ranks = append(ranks, ProductRank{Product: it.Product, Category: categories[key]})
				i = len(ranks) - 1
				index[key] = i
			}
			ranks[i].Quantity += it.Quantity
			ranks[i].Revenue = ranks[i].Revenue.Add(it.Subtotal)
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Quantity != ranks[j].Quantity {
			return ranks[i].Quantity > ranks[j].Quantity
		}
		return ranks[i].Revenue.GreaterThan(ranks[j].Revenue)
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	if ranks == nil {
		ranks = []ProductRank{}
	}
	return ranks
}

type EmployeeTotals struct {
	Employee string          `json:"empleado"`
	Sales    int             `json:"ventas"`
	Items    int             `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

func ByEmployee(sales []models.Sale) []EmployeeTotals {
	index := make(map[string]int)
	out := []EmployeeTotals{}
	for _, sale := range sales {
		name := sale.Employee
		if name == "" {
			name = "Sin asignar"
		}
		i, ok := index[name]
		if !ok {
			out = append(out, EmployeeTotals{Employee: name})
			i = len(out) - 1
			index[name] = i
		}
		out[i].Sales++
		out[i].Total = out[i].Total.Add(sale.Total)
		for _, it := range sale.Items {
			out[i].Items += it.Quantity
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}
