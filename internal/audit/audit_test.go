package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLogWithoutDB(t *testing.T) {
	database.DB = nil
	assert.Error(t, WriteLog(LogOptions{EntityType: "venta"}))
	// Record nunca falla
	Record(LogOptions{EntityType: "venta"})
}

func TestWriteAndList(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	database.DB = db
	t.Cleanup(func() { database.DB = nil })

	require.NoError(t, WriteLog(LogOptions{
		UserName: "admin", EntityType: "venta", EntityID: "v1",
		Action: models.AuditActionCreate, After: map[string]int{"total": 100},
	}))
	Record(LogOptions{UserName: "admin", EntityType: "stock", EntityID: "2", Action: models.AuditActionUpdate})

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "entity_id = ?", "v1").Error)
	assert.JSONEq(t, `{"total":100}`, entry.AfterData)
	assert.Equal(t, "null", entry.BeforeData)

	app := fiber.New()
	app.Get("/auditoria", ListAuditLogsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auditoria?entidad=venta", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs []AuditLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "v1", logs[0].EntityID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/auditoria?limite=0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWriteLogKeepsLongDescriptions(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	database.DB = db
	t.Cleanup(func() { database.DB = nil })

	// el motivo lo escribe el usuario y no tiene tope
	desc := "Retiro: " + strings.Repeat("pago a proveedor ", 40)
	require.NoError(t, WriteLog(LogOptions{
		UserName: "admin", EntityType: "caja", EntityID: "s1",
		Action: models.AuditActionUpdate, Description: desc,
	}))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "entity_id = ?", "s1").Error)
	assert.Equal(t, desc, entry.Description)

	cols, err := db.Migrator().ColumnTypes(&models.AuditLog{})
	require.NoError(t, err)
	var col string
	for _, c := range cols {
		if c.Name() == "description" {
			col, _ = c.ColumnType()
		}
	}
	assert.Equal(t, "text", strings.ToLower(col))
}
