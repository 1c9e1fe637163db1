package catalog

import (
	"strings"

	"almacen-backend/internal/money"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ApplyOffer calcula el precio final según la columna Oferta:
// "15%" descuenta el porcentaje (entre 0 y 100 excluidos) y un número fijo
// reemplaza el precio sólo si es positivo y menor. Cualquier otro valor se ignora.
func ApplyOffer(price decimal.Decimal, offer string) (decimal.Decimal, bool) {
	offer = strings.TrimSpace(offer)
	if offer == "" {
		return price, false
	}

	if pct, ok := strings.CutSuffix(offer, "%"); ok {
		n, err := money.Parse(pct)
		if err != nil || !n.IsPositive() || n.GreaterThanOrEqual(hundred) {
			return price, false
		}
		final := price.Mul(hundred.Sub(n)).Div(hundred).Round(2)
		return final, true
	}

	fixed, err := money.Parse(offer)
	if err != nil || !fixed.IsPositive() || fixed.GreaterThanOrEqual(price) {
		return price, false
	}
	return fixed, true
}
