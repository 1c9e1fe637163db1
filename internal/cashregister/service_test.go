package cashregister

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	database.DB = db
	t.Cleanup(func() { database.DB = nil })

	path := filepath.Join(t.TempDir(), "caja.json")
	return NewService(NewFileStore(path)), path
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code)
}

func TestStateWithoutFileIsClosed(t *testing.T) {
	svc, _ := newTestService(t)
	s, err := svc.State()
	require.NoError(t, err)
	assert.False(t, s.Open)
	assertStatus(t, svc.RequireOpen(), fiber.StatusBadRequest)
}

func TestOpenValidations(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Open(OpenRequest{Employee: " ", OpeningAmount: dec(100)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	_, err = svc.Open(OpenRequest{Employee: "Ana", OpeningAmount: dec(-1)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	s, err := svc.Open(OpenRequest{Employee: "Ana", Shift: "mañana", OpeningAmount: dec(1000)}, "admin")
	require.NoError(t, err)
	assert.True(t, s.Open)
	require.NotNil(t, s.OpenedAt)
	require.NoError(t, svc.RequireOpen())

	_, err = svc.Open(OpenRequest{Employee: "Luis", OpeningAmount: dec(0)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)
}

func TestMovementsAndSales(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddMovement(MovementRequest{Type: models.CashMovementIn, Amount: dec(10)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	_, err = svc.Open(OpenRequest{Employee: "Ana", OpeningAmount: dec(1000)}, "admin")
	require.NoError(t, err)

	_, err = svc.AddMovement(MovementRequest{Type: "prestamo", Amount: dec(10)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)
	_, err = svc.AddMovement(MovementRequest{Type: models.CashMovementIn, Amount: dec(0)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	require.NoError(t, svc.RecordSale(models.Payments{Cash: dec(500), Card: dec(200)}))

	_, err = svc.AddMovement(MovementRequest{Type: models.CashMovementIn, Amount: dec(100), Reason: "cambio"}, "admin")
	require.NoError(t, err)

	// efectivo esperado: 1000 + 500 + 100 = 1600
	_, err = svc.AddMovement(MovementRequest{Type: models.CashMovementOut, Amount: dec(1601)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	s, err := svc.AddMovement(MovementRequest{Type: models.CashMovementOut, Amount: dec(600), Reason: "proveedor"}, "admin")
	require.NoError(t, err)
	assert.True(t, s.ExpectedCash().Equal(dec(1000)))
	assert.Equal(t, 1, s.SalesCount)
	assert.Len(t, s.Movements, 2)

	reverted, err := svc.RevertSale(time.Now(), models.Payments{Cash: dec(500), Card: dec(200)})
	require.NoError(t, err)
	assert.True(t, reverted)

	s, err = svc.State()
	require.NoError(t, err)
	assert.Equal(t, 0, s.SalesCount)
	assert.True(t, s.Totals.Sum().IsZero())
}

func TestRevertSaleIgnoresEarlierSessions(t *testing.T) {
	svc, _ := newTestService(t)
	opened := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return opened }

	_, err := svc.Open(OpenRequest{Employee: "Ana", OpeningAmount: dec(100)}, "admin")
	require.NoError(t, err)

	// sin ventas registradas no hay nada que descontar
	reverted, err := svc.RevertSale(opened.Add(time.Hour), models.Payments{Cash: dec(50)})
	require.NoError(t, err)
	assert.False(t, reverted)

	require.NoError(t, svc.RecordSale(models.Payments{Cash: dec(300)}))

	reverted, err = svc.RevertSale(opened.Add(-time.Minute), models.Payments{Cash: dec(2500)})
	require.NoError(t, err)
	assert.False(t, reverted)

	s, err := svc.State()
	require.NoError(t, err)
	assert.Equal(t, 1, s.SalesCount)
	assert.True(t, s.Totals.Cash.Equal(dec(300)))
	assert.True(t, s.ExpectedCash().Equal(dec(400)))

	reverted, err = svc.RevertSale(opened, models.Payments{Cash: dec(300)})
	require.NoError(t, err)
	assert.True(t, reverted)
}

func TestCloseArchivesAndResets(t *testing.T) {
	svc, path := newTestService(t)

	_, err := svc.Close(CloseRequest{CountedCash: dec(0)}, "admin")
	assertStatus(t, err, fiber.StatusBadRequest)

	_, err = svc.Open(OpenRequest{Employee: "Ana", Shift: "tarde", OpeningAmount: dec(1000)}, "admin")
	require.NoError(t, err)
	require.NoError(t, svc.RecordSale(models.Payments{Cash: dec(750), Transfer: dec(300)}))
	_, err = svc.AddMovement(MovementRequest{Type: models.CashMovementOut, Amount: dec(250)}, "admin")
	require.NoError(t, err)

	closure, err := svc.Close(CloseRequest{CountedCash: dec(1480), Notes: " faltante "}, "admin")
	require.NoError(t, err)
	assert.NotZero(t, closure.ID)
	assert.Equal(t, 1500.0, closure.ExpectedCash)
	assert.Equal(t, 1480.0, closure.CountedCash)
	assert.Equal(t, -20.0, closure.Difference)
	assert.Equal(t, 300.0, closure.Transfer)
	assert.Equal(t, -250.0, closure.MovementsNet)
	assert.Equal(t, 1, closure.SalesCount)
	assert.Equal(t, "faltante", closure.Notes)
	assert.Equal(t, "admin", closure.ClosedBy)

	s, err := svc.State()
	require.NoError(t, err)
	assert.False(t, s.Open)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	history, err := svc.History(models.DateRange{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Ana", history[0].Employee)

	tomorrow := time.Now().AddDate(0, 0, 1)
	history, err = svc.History(models.DateRange{From: tomorrow})
	require.NoError(t, err)
	assert.Empty(t, history)

	reverted, err := svc.RevertSale(time.Now(), models.Payments{Cash: dec(1)})
	require.NoError(t, err)
	assert.False(t, reverted)
}

func TestFileStoreSerializesUpdates(t *testing.T) {
	svc, path := newTestService(t)
	_, err := svc.Open(OpenRequest{Employee: "Ana", OpeningAmount: dec(0)}, "admin")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordSale(models.Payments{Cash: dec(10)}))
		}()
	}
	wg.Wait()

	reloaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 20, reloaded.SalesCount)
	assert.True(t, reloaded.Totals.Cash.Equal(dec(200)))
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caja.json")
	require.NoError(t, os.WriteFile(path, []byte("{no es json"), 0644))
	_, err := NewFileStore(path).Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, nil, 0644))
	s, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.False(t, s.Open)
}
