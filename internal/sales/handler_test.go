package sales

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"almacen-backend/internal/cashregister"
	"almacen-backend/internal/catalog"
	"almacen-backend/internal/config"
	"almacen-backend/internal/models"
	"almacen-backend/internal/salesformat"
	"almacen-backend/internal/sheets"
	"almacen-backend/internal/sheets/sheetstest"
	"almacen-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacySaleReachableByEscapedID(t *testing.T) {
	store := sheetstest.NewStore(t)
	sheetstest.Products(t, store)
	// venta vieja sin id en la columna L
	sheetstest.Seed(t, store, sheets.SheetSales,
		[]any{"01/03/2025", "10:00:00", "Yerba Playadito 1kg", 2, 2500, 5000, 5000, 5000, 0, 0, "Ana", ""},
	)

	cat := catalog.NewService(store)
	caja := cashregister.NewService(cashregister.NewFileStore(filepath.Join(t.TempDir(), "caja.json")))
	svc := NewService(store, cat, stock.NewService(store, cat), caja, salesformat.New(store, config.GroupByDateTime))

	app := fiber.New()
	app.Post("/ventas/formatear", FormatSalesHandler(svc))
	app.Get("/ventas/:id", GetSaleHandler(svc))
	app.Delete("/ventas/:id", DeleteSaleHandler(svc))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ventas/formatear", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, path := range []string{
		"/ventas/01%2F03%2F2025%2010:00:00",
		"/ventas/01%2F03%2F2025+10%3A00%3A00",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)

		var sale models.Sale
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&sale))
		assert.Equal(t, "01/03/2025 10:00:00", sale.ID)
		assert.Len(t, sale.Items, 1)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/ventas/01%2F03%2F2025%2010:00:00", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ventas/01%2F03%2F2025%2010:00:00", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	yerba, err := cat.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 12, yerba.Stock)
}
