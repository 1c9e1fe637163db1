package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CashMovementType string

const (
	CashMovementIn  CashMovementType = "ingreso"
	CashMovementOut CashMovementType = "retiro"
)

// CashMovement es un ingreso o retiro de efectivo durante el turno.
type CashMovement struct {
	Type   CashMovementType `json:"tipo"`
	Amount decimal.Decimal  `json:"monto"`
	Reason string           `json:"motivo"`
	At     time.Time        `json:"hora"`
}

// CashSession es el estado de caja.json: la única caja abierta (o ninguna).
type CashSession struct {
	Open          bool            `json:"abierta"`
	Employee      string          `json:"empleado,omitempty"`
	Shift         string          `json:"turno,omitempty"`
	OpeningAmount decimal.Decimal `json:"monto_inicial"`
	OpenedAt      *time.Time      `json:"apertura,omitempty"`
	Totals        Payments        `json:"totales"`
	SalesCount    int             `json:"cantidad_ventas"`
	Movements     []CashMovement  `json:"movimientos"`
}

// MovementsNet es ingresos menos retiros.
func (s CashSession) MovementsNet() decimal.Decimal {
	net := decimal.Zero
	for _, m := range s.Movements {
		switch m.Type {
		case CashMovementIn:
			net = net.Add(m.Amount)
		case CashMovementOut:
			net = net.Sub(m.Amount)
		}
	}
	return net
}

// ExpectedCash es el efectivo que debería haber en el cajón.
func (s CashSession) ExpectedCash() decimal.Decimal {
	return s.OpeningAmount.Add(s.Totals.Cash).Add(s.MovementsNet())
}
