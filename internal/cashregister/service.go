package cashregister

import (
	"fmt"
	"strings"
	"time"

	"almacen-backend/internal/audit"
	"almacen-backend/internal/database"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/models"
	"almacen-backend/internal/money"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var log = logger.Log

var (
	errClosed = fiber.NewError(fiber.StatusBadRequest, "La caja está cerrada")
	errOpen   = fiber.NewError(fiber.StatusBadRequest, "La caja ya está abierta")
)

type OpenRequest struct {
	Employee      string          `json:"empleado"`
	Shift         string          `json:"turno"`
	OpeningAmount decimal.Decimal `json:"monto_inicial"`
}

type MovementRequest struct {
	Type   models.CashMovementType `json:"tipo"`
	Amount decimal.Decimal         `json:"monto"`
	Reason string                  `json:"motivo"`
}

type CloseRequest struct {
	CountedCash decimal.Decimal `json:"monto_final"`
	Notes       string          `json:"observaciones"`
}

type Service struct {
	files *FileStore
	now   func() time.Time
}

func NewService(files *FileStore) *Service {
	return &Service{files: files, now: time.Now}
}

func (s *Service) State() (models.CashSession, error) {
	return s.files.Load()
}

// RequireOpen devuelve 400 si no hay caja abierta.
func (s *Service) RequireOpen() error {
	session, err := s.files.Load()
	if err != nil {
		return err
	}
	if !session.Open {
		return errClosed
	}
	return nil
}

func (s *Service) Open(req OpenRequest, user string) (models.CashSession, error) {
	req.Employee = strings.TrimSpace(req.Employee)
	req.Shift = strings.TrimSpace(req.Shift)
	if req.Employee == "" {
		return models.CashSession{}, fiber.NewError(fiber.StatusBadRequest, "empleado es obligatorio")
	}
	if req.OpeningAmount.IsNegative() {
		return models.CashSession{}, fiber.NewError(fiber.StatusBadRequest, "monto_inicial no puede ser negativo")
	}

	session, err := s.files.Update(func(cs *models.CashSession) error {
		if cs.Open {
			return errOpen
		}
		now := s.now()
		*cs = models.CashSession{
			Open:          true,
			Employee:      req.Employee,
			Shift:         req.Shift,
			OpeningAmount: req.OpeningAmount,
			OpenedAt:      &now,
			Movements:     []models.CashMovement{},
		}
		return nil
	})
	if err != nil {
		return session, err
	}

	log.Infof("Caja abierta por %s (turno %s) con %s", session.Employee, session.Shift, money.Format(session.OpeningAmount))
	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "caja",
		EntityID:    sessionID(session),
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Apertura de caja: %s, turno %s", session.Employee, session.Shift),
		After:       session,
	})
	return session, nil
}

func (s *Service) AddMovement(req MovementRequest, user string) (models.CashSession, error) {
	if req.Type != models.CashMovementIn && req.Type != models.CashMovementOut {
		return models.CashSession{}, fiber.NewError(fiber.StatusBadRequest, "tipo debe ser ingreso o retiro")
	}
	if !req.Amount.IsPositive() {
		return models.CashSession{}, fiber.NewError(fiber.StatusBadRequest, "monto debe ser mayor a cero")
	}

	session, err := s.files.Update(func(cs *models.CashSession) error {
		if !cs.Open {
			return errClosed
		}
		if req.Type == models.CashMovementOut && req.Amount.GreaterThan(cs.ExpectedCash()) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("El retiro supera el efectivo en caja (%s)", money.Format(cs.ExpectedCash())))
		}
		cs.Movements = append(cs.Movements, models.CashMovement{
			Type:   req.Type,
			Amount: req.Amount,
			Reason: strings.TrimSpace(req.Reason),
			At:     s.now(),
		})
		return nil
	})
	if err != nil {
		return session, err
	}

	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "caja",
		EntityID:    sessionID(session),
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Movimiento de caja: %s %s (%s)", req.Type, money.Format(req.Amount), req.Reason),
	})
	return session, nil
}

// Close archiva la sesión en la base y deja el archivo con la caja cerrada.
// Si la base falla, la caja sigue abierta.
func (s *Service) Close(req CloseRequest, user string) (models.CashClosure, error) {
	if req.CountedCash.IsNegative() {
		return models.CashClosure{}, fiber.NewError(fiber.StatusBadRequest, "monto_final no puede ser negativo")
	}
	if database.DB == nil {
		return models.CashClosure{}, fmt.Errorf("base de datos no inicializada")
	}

	var closure models.CashClosure
	_, err := s.files.Update(func(cs *models.CashSession) error {
		if !cs.Open {
			return errClosed
		}
		closure = buildClosure(*cs, req, user, s.now())
		if err := database.DB.Create(&closure).Error; err != nil {
			return fmt.Errorf("archivar cierre de caja: %w", err)
		}
		*cs = closedSession()
		return nil
	})
	if err != nil {
		return models.CashClosure{}, err
	}

	log.Infof("Caja cerrada: esperado %.2f, contado %.2f, diferencia %.2f", closure.ExpectedCash, closure.CountedCash, closure.Difference)
	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "caja",
		EntityID:    fmt.Sprint(closure.ID),
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Cierre de caja de %s, diferencia %.2f", closure.Employee, closure.Difference),
		After:       closure,
	})
	return closure, nil
}

// sessionID identifica la sesión por su hora de apertura.
func sessionID(s models.CashSession) string {
	if s.OpenedAt == nil {
		return ""
	}
	return s.OpenedAt.Format(time.RFC3339)
}

func buildClosure(cs models.CashSession, req CloseRequest, user string, now time.Time) models.CashClosure {
	expected := cs.ExpectedCash()
	opened := now
	if cs.OpenedAt != nil {
		opened = *cs.OpenedAt
	}
	return models.CashClosure{
		Employee:      cs.Employee,
		Shift:         cs.Shift,
		OpenedAt:      opened,
		ClosedAt:      now,
		OpeningAmount: money.Cell(cs.OpeningAmount),
		Cash:          money.Cell(cs.Totals.Cash),
		Transfer:      money.Cell(cs.Totals.Transfer),
		Card:          money.Cell(cs.Totals.Card),
		MovementsNet:  money.Cell(cs.MovementsNet()),
		SalesCount:    cs.SalesCount,
		ExpectedCash:  money.Cell(expected),
		CountedCash:   money.Cell(req.CountedCash),
		Difference:    money.Cell(req.CountedCash.Sub(expected)),
		Notes:         strings.TrimSpace(req.Notes),
		ClosedBy:      user,
	}
}

// RecordSale suma los pagos de una venta a los totales de la caja abierta.
func (s *Service) RecordSale(p models.Payments) error {
	_, err := s.files.Update(func(cs *models.CashSession) error {
		if !cs.Open {
			return errClosed
		}
		cs.Totals = cs.Totals.Add(p)
		cs.SalesCount++
		return nil
	})
	return err
}

// RevertSale descuenta una venta anulada de la caja abierta. Si la caja está
// cerrada o la venta es de una sesión anterior (at antes de la apertura) no
// hace nada y devuelve false.
func (s *Service) RevertSale(at time.Time, p models.Payments) (bool, error) {
	reverted := false
	_, err := s.files.Update(func(cs *models.CashSession) error {
		if !cs.Open || cs.SalesCount == 0 {
			return nil
		}
		// la hoja guarda la hora sin fracciones de segundo
		if cs.OpenedAt != nil && at.Before(cs.OpenedAt.Truncate(time.Second)) {
			return nil
		}
		cs.Totals = cs.Totals.Sub(p)
		cs.SalesCount--
		reverted = true
		return nil
	})
	return reverted, err
}

func (s *Service) History(r models.DateRange) ([]models.CashClosure, error) {
	if database.DB == nil {
		return nil, fmt.Errorf("base de datos no inicializada")
	}
	dbq := database.DB.Model(&models.CashClosure{})
	if !r.From.IsZero() {
		dbq = dbq.Where("closed_at >= ?", r.From)
	}
	if !r.To.IsZero() {
		dbq = dbq.Where("closed_at <= ?", r.To)
	}

	var closures []models.CashClosure
	if err := dbq.Order("closed_at desc").Find(&closures).Error; err != nil {
		return nil, fmt.Errorf("listar cierres: %w", err)
	}
	return closures, nil
}
