package salesformat

import (
	"almacen-backend/internal/config"
	"almacen-backend/internal/models"
)

// Group es un tramo contiguo de filas de la misma venta.
type Group struct {
	Key     string
	FromRow int
	ToRow   int
}

func (g Group) Size() int { return g.ToRow - g.FromRow + 1 }

// groupKey: en modo id se usa la columna L y, si está vacía, fecha+hora.
func groupKey(r models.SaleRow, mode string) string {
	if mode == config.GroupByID && r.ID != "" {
		return "id:" + r.ID
	}
	return "dt:" + r.Key()
}

// Partition recorre las filas una sola vez y corta un grupo cuando cambia
// la clave o cuando hay un salto de fila (una fila vacía en el medio).
func Partition(rows []models.SaleRow, mode string) []Group {
	var groups []Group
	for _, r := range rows {
		key := groupKey(r, mode)
		if n := len(groups); n > 0 {
			last := &groups[n-1]
			if last.Key == key && last.ToRow == r.Row-1 {
				last.ToRow = r.Row
				continue
			}
		}
		groups = append(groups, Group{Key: key, FromRow: r.Row, ToRow: r.Row})
	}
	return groups
}
