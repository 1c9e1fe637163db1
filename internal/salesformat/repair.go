package salesformat

import "almacen-backend/internal/models"

// Repair es un id que hay que escribir en la columna L.
type Repair struct {
	Row int
	ID  string
}

// RepairIDs completa los ids faltantes sobre rows (in place). Una fila sin id
// toma el de una fila vecina con la misma fecha+hora; las que quedan sin
// vecino reciben un id nuevo, uno por cada fecha+hora.
func RepairIDs(rows []models.SaleRow, newID func() string) []Repair {
	missing := make(map[int]bool)
	for i := range rows {
		if rows[i].ID == "" {
			missing[i] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}

	adjacent := func(i, j int) bool {
		return j >= 0 && j < len(rows) &&
			rows[j].ID != "" &&
			abs(rows[j].Row-rows[i].Row) == 1 &&
			rows[j].Key() == rows[i].Key()
	}

	// hacia adelante y hacia atrás, así una racha sin id junto a una fila
	// con id toma ese id completa
	for i := range rows {
		if rows[i].ID == "" && adjacent(i, i-1) {
			rows[i].ID = rows[i-1].ID
		}
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].ID == "" && adjacent(i, i+1) {
			rows[i].ID = rows[i+1].ID
		}
	}

	fresh := make(map[string]string)
	for i := range rows {
		if rows[i].ID != "" {
			continue
		}
		key := rows[i].Key()
		id, ok := fresh[key]
		if !ok {
			id = newID()
			fresh[key] = id
		}
		rows[i].ID = id
	}

	repairs := make([]Repair, 0, len(missing))
	for i := range rows {
		if missing[i] {
			repairs = append(repairs, Repair{Row: rows[i].Row, ID: rows[i].ID})
		}
	}
	return repairs
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
