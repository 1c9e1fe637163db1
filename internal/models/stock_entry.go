package models

// Columnas de la hoja Stock (registro de movimientos)
const (
	StockColTime     = 1 // A: DD/MM/YYYY HH:MM:SS
	StockColProduct  = 2 // B
	StockColPrevious = 3 // C
	StockColNew      = 4 // D
	StockColReason   = 5 // E
	StockColUser     = 6 // F
)

// StockEntry: un cambio de stock de un producto
type StockEntry struct {
	Row      int    `json:"fila"`
	Time     string `json:"fecha"`
	Product  string `json:"producto"`
	Previous int    `json:"anterior"`
	New      int    `json:"nuevo"`
	Delta    int    `json:"diferencia"`
	Reason   string `json:"motivo"`
	User     string `json:"usuario"`
}
