// Package sheetstest arma libros xlsx temporales para los tests.
package sheetstest

import (
	"context"
	"path/filepath"
	"testing"

	"almacen-backend/internal/sheets"

	"github.com/stretchr/testify/require"
)

// NewStore devuelve un libro vacío con todas las hojas y sus encabezados.
func NewStore(t testing.TB) *sheets.XLSXStore {
	t.Helper()
	store, err := sheets.OpenXLSX(filepath.Join(t.TempDir(), "almacen.xlsx"))
	require.NoError(t, err)
	require.NoError(t, store.EnsureSheets(context.Background(), sheets.Headers))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Seed agrega filas a la hoja.
func Seed(t testing.TB, store sheets.Store, sheet string, rows ...[]any) {
	t.Helper()
	if len(rows) == 0 {
		return
	}
	_, err := store.AppendRows(context.Background(), sheet, rows)
	require.NoError(t, err)
}

// Products agrega productos de prueba: nombre, categoría, precio, oferta, stock.
func Products(t testing.TB, store sheets.Store) {
	t.Helper()
	Seed(t, store, sheets.SheetProducts,
		[]any{"Yerba Playadito 1kg", "Almacen", 2500, "", "Suave", "", 10},
		[]any{"Cafe La Virginia", "Almacen", 3000, "10%", "Molido", "", 4},
		[]any{"Alfajor Jorgito", "Golosinas", 500, "450", "", "", 0},
		[]any{"Gaseosa 2L", "Bebidas", 1800, "abc", "", "", 20},
	)
}
