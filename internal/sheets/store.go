package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Nombres de las hojas del libro. El orden de columnas de cada hoja es un
// contrato posicional compartido por todos los consumidores.
const (
	SheetProducts  = "Productos"
	SheetSales     = "Ventas"
	SheetStock     = "Stock"
	SheetEmployees = "Empleados"
)

// Headers es la fila 1 de cada hoja.
var Headers = map[string][]string{
	SheetProducts:  {"Nombre", "Categoria", "Precio", "Oferta", "Descripcion", "Imagen", "Stock"},
	SheetSales:     {"Fecha", "Hora", "Producto", "Cantidad", "Precio", "Subtotal", "Total", "Efectivo", "Transferencia", "Tarjeta", "Empleado", "ID"},
	SheetStock:     {"Fecha", "Producto", "Anterior", "Nuevo", "Motivo", "Usuario"},
	SheetEmployees: {"ID", "Nombre", "Turno", "Activo"},
}

// FirstDataRow es la primera fila con datos (la 1 es el encabezado).
const FirstDataRow = 2

type CellStyle struct {
	Bold       bool
	FontColor  string // "#RRGGBB"
	Background string // "#RRGGBB", vacío = sin relleno
	FontSize   int
}

type OpKind int

const (
	OpMerge OpKind = iota + 1
	OpStyle
)

// FormatOp es una operación de presentación sobre una columna y un rango de filas.
type FormatOp struct {
	Kind    OpKind
	FromRow int
	ToRow   int
	Col     int
	Style   CellStyle
}

// Store es el acceso a la planilla. Las filas y columnas son 1-based
// (fila 2 = primer dato, columna 1 = A).
type Store interface {
	// ReadRows devuelve las filas de datos; rows[i] corresponde a la fila i+FirstDataRow.
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	// AppendRows agrega filas al final y devuelve el número de la primera.
	AppendRows(ctx context.Context, sheet string, rows [][]any) (int, error)
	UpdateRow(ctx context.Context, sheet string, row int, values []any) error
	UpdateCell(ctx context.Context, sheet string, row, col int, value any) error
	DeleteRows(ctx context.Context, sheet string, rows []int) error
	UnmergeAll(ctx context.Context, sheet string) error
	// ApplyFormat aplica cada operación por separado; devuelve cuántas fallaron
	// y el error combinado.
	ApplyFormat(ctx context.Context, sheet string, ops []FormatOp) (int, error)
	EnsureSheets(ctx context.Context, headers map[string][]string) error
	Name() string
	Close() error
}

// Cell devuelve la celda col (1-based) de la fila, o "" si no existe.
func Cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

// ColName convierte 1 -> "A", 27 -> "AA".
func ColName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "A"
	}
	return name
}

// CellRef arma la referencia "C5".
func CellRef(col, row int) string {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("%s%d", ColName(col), row)
	}
	return ref
}

// A1 arma un rango con el nombre de hoja entre comillas: 'Ventas'!A2:L.
func A1(sheet, rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), rng)
}

// RowOfRange extrae la primera fila de un rango "'Ventas'!A15:L17" -> 15.
func RowOfRange(rng string) (int, error) {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	start, _, _ := strings.Cut(rng, ":")
	_, row, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return 0, fmt.Errorf("rango inválido %q: %w", rng, err)
	}
	return row, nil
}
