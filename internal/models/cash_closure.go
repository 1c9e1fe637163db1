package models

import "time"

// CashClosure: archivo de cajas cerradas
type CashClosure struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Employee      string    `gorm:"size:100;index;not null" json:"empleado"`
	Shift         string    `gorm:"size:50" json:"turno"`
	OpenedAt      time.Time `gorm:"index;not null" json:"apertura"`
	ClosedAt      time.Time `gorm:"index;not null" json:"cierre"`
	OpeningAmount float64   `gorm:"not null" json:"monto_inicial"`
	Cash          float64   `gorm:"not null" json:"efectivo"`
	Transfer      float64   `gorm:"not null" json:"transferencia"`
	Card          float64   `gorm:"not null" json:"tarjeta"`
	MovementsNet  float64   `gorm:"not null" json:"movimientos_neto"`
	SalesCount    int       `gorm:"not null" json:"cantidad_ventas"`
	ExpectedCash  float64   `gorm:"not null" json:"efectivo_esperado"`
	CountedCash   float64   `gorm:"not null" json:"efectivo_contado"`
	Difference    float64   `gorm:"not null" json:"diferencia"`
	Notes         string    `gorm:"size:255" json:"observaciones"`
	ClosedBy      string    `gorm:"size:100" json:"cerrado_por"`
	CreatedAt     time.Time `json:"-"`
}
