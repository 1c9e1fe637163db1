package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"almacen-backend/internal/config"
	"almacen-backend/internal/database"
	"almacen-backend/internal/sheets/sheetstest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "un-secreto-de-prueba-de-al-menos-32-caracteres"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	database.DB = db
	t.Cleanup(func() { database.DB = nil })

	store := sheetstest.NewStore(t)
	sheetstest.Products(t, store)

	cfg := &config.Config{
		AdminUser:     "admin",
		AdminPassword: "clave-segura",
		JWTSecret:     testSecret,
		CORSOrigins:   "http://localhost:5173",
		CajaFile:      filepath.Join(t.TempDir(), "caja.json"),
		SalesGroupKey: config.GroupByID,
		LowStockLimit: 5,
	}
	app, err := New(cfg, store)
	require.NoError(t, err)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/api/auth/login", "", `{"usuario":"admin","password":"clave-segura"}`)
	require.Equal(t, http.StatusOK, status, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "xlsx", body["backend"])
}

func TestLoginAndProtectedRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/auth/login", "", `{"usuario":"admin","password":"otra"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])

	status, _ = do(t, app, http.MethodGet, "/api/caja/estado", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodGet, "/api/caja/estado", "token-falso", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	token := login(t, app)
	status, body = do(t, app, http.MethodGet, "/api/auth/me", token, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["usuario"])
}

func TestPublicCatalog(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/productos?orden=precio_asc&stock=1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 3)
	assert.Equal(t, "Gaseosa 2L", products[0]["nombre"])
	assert.Equal(t, 2500.0, products[1]["precio_final"])
	assert.Equal(t, 2700.0, products[2]["precio_final"])

	status, body := do(t, app, http.MethodGet, "/api/productos/3", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["en_oferta"])

	status, body = do(t, app, http.MethodGet, "/api/productos/99", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])

	status, _ = do(t, app, http.MethodGet, "/api/productos?orden=random", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSaleFlowThroughCaja(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)
	sale := `{"items":[{"fila":2,"cantidad":1},{"producto":"Gaseosa 2L","cantidad":2}],"pagos":{"efectivo":7000}}`

	status, body := do(t, app, http.MethodPost, "/api/ventas", token, sale)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = do(t, app, http.MethodPost, "/api/caja/abrir", token, `{"empleado":"Ana","turno":"mañana","monto_inicial":1000}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/api/caja/abrir", token, `{"empleado":"Ana","turno":"mañana","monto_inicial":1000}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodPost, "/api/ventas", token, sale)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	venta := body["venta"].(map[string]any)
	assert.Equal(t, 6100.0, venta["total"])
	assert.Equal(t, 900.0, venta["vuelto"])
	id := venta["id"].(string)

	status, body = do(t, app, http.MethodGet, "/api/ventas/"+id, token, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ana", body["empleado"])

	status, body = do(t, app, http.MethodGet, "/api/caja/estado", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["cantidad_ventas"])
	assert.Equal(t, 7100.0, body["efectivo_esperado"])

	status, body = do(t, app, http.MethodPost, "/api/caja/cerrar", token, `{"monto_final":7000,"observaciones":"falta cambio"}`)
	require.Equal(t, http.StatusOK, status, body)
	cierre := body["cierre"].(map[string]any)
	assert.Equal(t, -100.0, cierre["diferencia"])

	status, _ = do(t, app, http.MethodPost, "/api/caja/cerrar", token, `{"monto_final":0}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodGet, "/api/reportes/resumen", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["ventas"])

	status, body = do(t, app, http.MethodDelete, "/api/ventas/"+id, token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["caja_descontada"])
}

func TestQuoteReturnsPDF(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/presupuesto",
		strings.NewReader(`{"cliente":"Juan","items":[{"fila":2,"cantidad":3}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "presupuesto-juan-")
}
