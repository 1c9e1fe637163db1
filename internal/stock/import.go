package stock

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"almacen-backend/internal/models"
	"almacen-backend/internal/money"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks saca tildes y diéresis; un transformer por llamada porque
// transform.Chain guarda estado.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeName compara nombres sin mayúsculas, tildes ni espacios repetidos:
// "Café  La Virginia" -> "cafe la virginia".
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(stripMarks(s))), " ")
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalizeName(row[0])
	return strings.Contains(first, "producto") || strings.Contains(first, "nombre")
}

type ImportResult struct {
	Updated   []models.StockEntry `json:"actualizados"`
	Unmatched []string            `json:"sin_coincidencia"`
	Invalid   []string            `json:"invalidos"`
}

// ImportCount lee un conteo de inventario (.xlsx, primera hoja: producto en
// A, stock contado en B) y fija el stock de cada producto que coincide.
func (s *Service) ImportCount(ctx context.Context, r io.Reader, user string) (ImportResult, error) {
	res := ImportResult{Updated: []models.StockEntry{}, Unmatched: []string{}, Invalid: []string{}}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fiber.NewError(fiber.StatusBadRequest, "No se pudo leer el archivo Excel")
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return res, fiber.NewError(fiber.StatusBadRequest, "El archivo no tiene hojas")
	}
	rows, err := f.GetRows(sheetList[0])
	if err != nil {
		return res, fiber.NewError(fiber.StatusBadRequest, "No se pudo leer la hoja "+sheetList[0])
	}
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return res, fiber.NewError(fiber.StatusBadRequest, "El archivo está vacío")
	}

	products, err := s.catalog.List(ctx)
	if err != nil {
		return res, err
	}
	byName := make(map[string]models.Product, len(products))
	for _, p := range products {
		byName[normalizeName(p.Name)] = p
	}

	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		name := strings.TrimSpace(row[0])

		p, ok := byName[normalizeName(name)]
		if !ok {
			res.Unmatched = append(res.Unmatched, name)
			continue
		}

		raw := ""
		if len(row) > 1 {
			raw = strings.TrimSpace(row[1])
		}
		d, perr := money.Parse(raw)
		if raw == "" || perr != nil || d.IsNegative() {
			res.Invalid = append(res.Invalid, fmt.Sprintf("fila %d: %s (%q)", i+1, name, raw))
			continue
		}
		count := int(d.IntPart())

		entry, err := s.Set(ctx, p.Row, count, "Inventario", user)
		if err != nil {
			log.Warningf("Inventario: no se pudo actualizar %s: %v", p.Name, err)
			res.Invalid = append(res.Invalid, fmt.Sprintf("fila %d: %s (%v)", i+1, name, err))
			continue
		}
		res.Updated = append(res.Updated, entry)
	}
	return res, nil
}
