package models

import "github.com/shopspring/decimal"

func init() {
	// el front espera números, no strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Columnas de la hoja Productos
const (
	ProductColName        = 1 // A
	ProductColCategory    = 2 // B
	ProductColPrice       = 3 // C
	ProductColOffer       = 4 // D: "15%" o precio fijo
	ProductColDescription = 5 // E
	ProductColImage       = 6 // F
	ProductColStock       = 7 // G
)

// Product se identifica por su fila en la hoja; no hay otra clave persistente.
type Product struct {
	Row         int             `json:"fila"`
	Name        string          `json:"nombre"`
	Category    string          `json:"categoria"`
	Price       decimal.Decimal `json:"precio"`
	Offer       string          `json:"oferta"`
	FinalPrice  decimal.Decimal `json:"precio_final"`
	OnSale      bool            `json:"en_oferta"`
	Description string          `json:"descripcion"`
	Image       string          `json:"imagen"`
	Stock       int             `json:"stock"`
}
