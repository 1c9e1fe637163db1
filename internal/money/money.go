package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse interpreta importes tal como aparecen en la planilla:
// "1200", "1200.5", "1,5", "$ 1.234,50", "1.234.567".
// Una celda vacía vale cero.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	hadSymbol := strings.Contains(s, "$")
	s = strings.NewReplacer("$", "", "ARS", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		// el separador que aparece último es el decimal
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case dots == 1 && hadSymbol && len(s)-strings.Index(s, ".") == 4:
		// "$ 1.200" es miles con formato local
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("importe inválido %q", raw)
	}
	return d, nil
}

// MustParse devuelve cero cuando el valor no se puede interpretar.
func MustParse(raw string) decimal.Decimal {
	d, err := Parse(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format devuelve el importe con formato local: "$ 1.234,50".
func Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$ %s,%s", sign, b.String(), frac)
}

// Cell convierte el importe al valor numérico que se escribe en la planilla.
func Cell(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
