package database

import (
	"testing"

	"almacen-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u:p@localhost:5432/almacen"))
	assert.True(t, isPostgres("host=localhost user=postgres dbname=almacen"))
	assert.False(t, isPostgres("almacen.db"))
	assert.False(t, isPostgres(":memory:"))
}

func TestOpenMigratesTables(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.AuditLog{}))
	assert.True(t, db.Migrator().HasTable(&models.CashClosure{}))

	require.NoError(t, db.Create(&models.AuditLog{EntityType: "venta", EntityID: "x", Action: models.AuditActionCreate}).Error)
	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
