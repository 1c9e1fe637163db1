package stock

import (
	"context"
	"testing"

	"almacen-backend/internal/catalog"
	"almacen-backend/internal/sheets"
	"almacen-backend/internal/sheets/sheetstest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, sheets.Store) {
	t.Helper()
	store := sheetstest.NewStore(t)
	sheetstest.Products(t, store)
	return NewService(store, catalog.NewService(store)), store
}

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code)
}

func TestLevelsFlagsLowStock(t *testing.T) {
	svc, _ := newTestService(t)
	items, err := svc.Levels(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 4)

	low := map[string]bool{}
	for _, it := range items {
		low[it.Name] = it.Low
	}
	assert.False(t, low["Yerba Playadito 1kg"])
	assert.True(t, low["Cafe La Virginia"])
	assert.True(t, low["Alfajor Jorgito"])
	assert.False(t, low["Gaseosa 2L"])
}

func TestSetAndAdjust(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, 2, -1, "", "admin")
	assertStatus(t, err, fiber.StatusBadRequest)
	_, err = svc.Set(ctx, 99, 1, "", "admin")
	assertStatus(t, err, fiber.StatusNotFound)

	entry, err := svc.Set(ctx, 2, 25, "", "admin")
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Previous)
	assert.Equal(t, 25, entry.New)
	assert.Equal(t, "Ajuste manual", entry.Reason)

	entry, err = svc.Adjust(ctx, 0, "cafe la virginia", -4, "rotura", "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.New)
	assert.Equal(t, -4, entry.Delta)

	_, err = svc.Adjust(ctx, 3, "", -1, "", "admin")
	assertStatus(t, err, fiber.StatusBadRequest)
	_, err = svc.Adjust(ctx, 3, "", 0, "", "admin")
	assertStatus(t, err, fiber.StatusBadRequest)
	_, err = svc.Adjust(ctx, 0, "no existe", 1, "", "admin")
	assertStatus(t, err, fiber.StatusNotFound)

	rows, err := store.ReadRows(ctx, sheets.SheetStock)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	movements, err := svc.Movements(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "Cafe La Virginia", movements[0].Product)
	assert.Equal(t, "rotura", movements[0].Reason)
	assert.Equal(t, "admin", movements[0].User)
	assert.Equal(t, "Yerba Playadito 1kg", movements[1].Product)
	assert.Equal(t, 15, movements[1].Delta)

	filtered, err := svc.Movements(ctx, "YERBA PLAYADITO 1KG", 10)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	limited, err := svc.Movements(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestApplyChangesValidatesBeforeWriting(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	cat := catalog.NewService(store)

	// fila 3 tiene 4: pedir 3 + 2 en dos líneas no alcanza
	_, err := svc.ApplyChanges(ctx, []Change{{Row: 2, Delta: -1}, {Row: 3, Delta: -3}, {Row: 3, Delta: -2}}, "Venta", "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	p, err := cat.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock, "no se escribe nada si una línea falla")

	_, err = svc.ApplyChanges(ctx, []Change{{Row: 42, Delta: -1}}, "Venta", "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	entries, err := svc.ApplyChanges(ctx, []Change{{Row: 2, Delta: -1}, {Row: 3, Delta: -3}, {Row: 2, Delta: -2}}, "Venta", "admin")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 7, entries[0].New)
	assert.Equal(t, 1, entries[1].New)

	p, err = cat.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)
}

func TestLowStockOnlyLow(t *testing.T) {
	svc, _ := newTestService(t)
	products, err := svc.catalog.List(context.Background())
	require.NoError(t, err)

	items := LowStock(products, 5, true)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.Low)
	}
}
