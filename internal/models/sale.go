package models

import (
	"strconv"
	"strings"
	"time"

	"almacen-backend/internal/money"

	"github.com/shopspring/decimal"
)

// Columnas de la hoja Ventas (una fila por ítem)
const (
	SaleColDate      = 1  // A: DD/MM/YYYY
	SaleColTime      = 2  // B: HH:MM:SS
	SaleColProduct   = 3  // C
	SaleColQuantity  = 4  // D
	SaleColUnitPrice = 5  // E
	SaleColSubtotal  = 6  // F
	SaleColTotal     = 7  // G
	SaleColCash      = 8  // H
	SaleColTransfer  = 9  // I
	SaleColCard      = 10 // J
	SaleColEmployee  = 11 // K
	SaleColID        = 12 // L
)

const (
	DateLayout     = "02/01/2006"
	TimeLayout     = "15:04:05"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentTransfer PaymentMethod = "transferencia"
	PaymentCard     PaymentMethod = "tarjeta"
)

type Payments struct {
	Cash     decimal.Decimal `json:"efectivo"`
	Transfer decimal.Decimal `json:"transferencia"`
	Card     decimal.Decimal `json:"tarjeta"`
}

func (p Payments) Sum() decimal.Decimal {
	return p.Cash.Add(p.Transfer).Add(p.Card)
}

func (p Payments) Add(o Payments) Payments {
	return Payments{Cash: p.Cash.Add(o.Cash), Transfer: p.Transfer.Add(o.Transfer), Card: p.Card.Add(o.Card)}
}

func (p Payments) Sub(o Payments) Payments {
	return Payments{Cash: p.Cash.Sub(o.Cash), Transfer: p.Transfer.Sub(o.Transfer), Card: p.Card.Sub(o.Card)}
}

// SaleRow es una fila de la hoja Ventas.
type SaleRow struct {
	Row       int
	Date      string
	Time      string
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
	Payments  Payments
	Employee  string
	ID        string
	// Continuation: la fila no traía fecha/hora propias (celdas combinadas)
	// y las heredó de la anterior.
	Continuation bool
}

// Key es la clave de agrupación por fecha y hora.
func (r SaleRow) Key() string {
	return r.Date + " " + r.Time
}

type SaleItem struct {
	Row       int             `json:"fila"`
	Product   string          `json:"producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Sale struct {
	ID       string          `json:"id"`
	Date     string          `json:"fecha"`
	Time     string          `json:"hora"`
	Employee string          `json:"empleado"`
	Items    []SaleItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Payments Payments        `json:"pagos"`
	Change   decimal.Decimal `json:"vuelto"`
}

// Rows devuelve las filas de la hoja que ocupa la venta.
func (s Sale) Rows() []int {
	rows := make([]int, 0, len(s.Items))
	for _, it := range s.Items {
		rows = append(rows, it.Row)
	}
	return rows
}

// Timestamp interpreta fecha y hora en la zona local; cero si no se puede.
func (s Sale) Timestamp() time.Time {
	t, err := time.ParseInLocation(DateTimeLayout, s.Date+" "+s.Time, time.Local)
	if err != nil {
		if d, derr := time.ParseInLocation(DateLayout, s.Date, time.Local); derr == nil {
			return d
		}
		return time.Time{}
	}
	return t
}

// ParseSaleRows convierte las filas crudas de Ventas. Las filas de una venta
// con celdas combinadas llegan sin fecha/hora/id; las hereda de la anterior.
// Las filas sin producto se descartan.
func ParseSaleRows(rows [][]string) []SaleRow {
	out := make([]SaleRow, 0, len(rows))
	var prev *SaleRow
	for i, raw := range rows {
		product := cell(raw, SaleColProduct)
		if product == "" {
			prev = nil
			continue
		}

		r := SaleRow{
			Row:       i + 2,
			Date:      cell(raw, SaleColDate),
			Time:      cell(raw, SaleColTime),
			Product:   product,
			Quantity:  atoi(cell(raw, SaleColQuantity)),
			UnitPrice: money.MustParse(cell(raw, SaleColUnitPrice)),
			Subtotal:  money.MustParse(cell(raw, SaleColSubtotal)),
			Total:     money.MustParse(cell(raw, SaleColTotal)),
			Payments: Payments{
				Cash:     money.MustParse(cell(raw, SaleColCash)),
				Transfer: money.MustParse(cell(raw, SaleColTransfer)),
				Card:     money.MustParse(cell(raw, SaleColCard)),
			},
			Employee: cell(raw, SaleColEmployee),
			ID:       cell(raw, SaleColID),
		}

		if r.Date == "" && r.Time == "" && prev != nil {
			r.Date, r.Time = prev.Date, prev.Time
			if r.ID == "" {
				r.ID = prev.ID
			}
			if r.Employee == "" {
				r.Employee = prev.Employee
			}
			r.Continuation = true
		}

		out = append(out, r)
		prev = &out[len(out)-1]
	}
	return out
}

// GroupSales arma las ventas a partir de las filas. Las filas con id se
// agrupan por id; las que no tienen, por fecha+hora. El orden es el de
// aparición en la hoja.
func GroupSales(rows []SaleRow) []Sale {
	index := make(map[string]int)
	var sales []Sale
	for _, r := range rows {
		key := "id:" + r.ID
		if r.ID == "" {
			key = "dt:" + r.Key()
		}

		i, ok := index[key]
		if !ok {
			id := r.ID
			if id == "" {
				id = r.Key()
			}
			sales = append(sales, Sale{ID: id, Date: r.Date, Time: r.Time, Employee: r.Employee})
			i = len(sales) - 1
			index[key] = i
		}

		s := &sales[i]
		s.Items = append(s.Items, SaleItem{
			Row:       r.Row,
			Product:   r.Product,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Subtotal:  r.Subtotal,
		})
		// total y pagos sólo se escriben en la primera fila
		if s.Total.IsZero() {
			s.Total = r.Total
		}
		if s.Payments.Sum().IsZero() {
			s.Payments = r.Payments
		}
		if s.Employee == "" {
			s.Employee = r.Employee
		}
	}

	for i := range sales {
		if sales[i].Total.IsZero() {
			for _, it := range sales[i].Items {
				sales[i].Total = sales[i].Total.Add(it.Subtotal)
			}
		}
	}
	return sales
}

func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// "2.0" o "2,0"
	d, err := money.Parse(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}
