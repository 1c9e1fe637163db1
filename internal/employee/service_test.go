package employee

import (
	"context"
	"testing"

	"almacen-backend/internal/sheets"
	"almacen-backend/internal/sheets/sheetstest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeLifecycle(t *testing.T) {
	store := sheetstest.NewStore(t)
	sheetstest.Seed(t, store, sheets.SheetEmployees,
		[]any{1, "Ana", "mañana", "SI"},
		[]any{3, "Luis", "tarde", "NO"},
	)
	svc := NewService(store)
	ctx := context.Background()

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ana", active[0].Name)

	_, err = svc.Create(ctx, "  ", "", "admin")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	_, err = svc.Create(ctx, "ana", "noche", "admin")
	require.ErrorAs(t, err, &fe)

	e, err := svc.Create(ctx, "Marta", "noche", "admin")
	require.NoError(t, err)
	assert.Equal(t, 4, e.ID)
	assert.Equal(t, 4, e.Row)
	assert.True(t, e.Active)

	off := false
	shift := "mañana"
	updated, err := svc.Update(ctx, 4, UpdateRequest{Shift: &shift, Active: &off}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Marta", updated.Name)
	assert.False(t, updated.Active)

	got, err := svc.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "mañana", got.Shift)
	assert.False(t, got.Active)

	rows, err := store.ReadRows(ctx, sheets.SheetEmployees)
	require.NoError(t, err)
	assert.Equal(t, "NO", sheets.Cell(rows[2], 4))

	empty := " "
	_, err = svc.Update(ctx, 4, UpdateRequest{Name: &empty}, "admin")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	_, err = svc.Get(ctx, 99)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}
