package quote

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"almacen-backend/internal/models"
	"almacen-backend/internal/money"

	"github.com/go-pdf/fpdf"
)

// Render escribe el presupuesto en PDF (A4, una tabla de ítems y el total).
func Render(q Quote, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Presupuesto", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Cliente: "+q.Client), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Fecha: "+q.Date.Format(models.DateLayout), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{90, 20, 35, 35}
	headers := []string{"Producto", "Cant.", "Precio", "Subtotal"}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range q.Lines {
		pdf.CellFormat(widths[0], 7, tr(truncate(l.Product, 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprint(l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money.Format(l.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money.Format(l.Subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 9, money.Format(q.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	if q.Notes != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr("Notas: "+q.Notes), "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "I", 9)
	valid := q.Date.AddDate(0, 0, ValidDays).Format(models.DateLayout)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Presupuesto válido por %d días (hasta el %s). Precios sujetos a disponibilidad de stock.", ValidDays, valid)), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("armar pdf: %w", err)
	}
	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// FileName arma "presupuesto-<cliente>-<fecha>.pdf" sin caracteres raros.
func FileName(q Quote) string {
	client := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(q.Client), "-"), "-")
	if client == "" {
		client = "cliente"
	}
	return fmt.Sprintf("presupuesto-%s-%s.pdf", client, q.Date.Format("20060102"))
}
