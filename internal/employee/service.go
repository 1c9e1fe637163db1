package employee

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"almacen-backend/internal/audit"
	"almacen-backend/internal/catalog"
	"almacen-backend/internal/models"
	"almacen-backend/internal/sheets"

	"github.com/gofiber/fiber/v2"
)

type UpdateRequest struct {
	Name   *string `json:"nombre"`
	Shift  *string `json:"turno"`
	Active *bool   `json:"activo"`
}

type Service struct {
	mu    sync.Mutex
	store sheets.Store
}

func NewService(store sheets.Store) *Service {
	return &Service{store: store}
}

func parseEmployee(raw []string, row int) (models.Employee, bool) {
	id := catalog.ParseQuantity(sheets.Cell(raw, models.EmployeeColID))
	name := sheets.Cell(raw, models.EmployeeColName)
	if id <= 0 || name == "" {
		return models.Employee{}, false
	}
	active := strings.ToUpper(sheets.Cell(raw, models.EmployeeColActive))
	return models.Employee{
		ID:     id,
		Row:    row,
		Name:   name,
		Shift:  sheets.Cell(raw, models.EmployeeColShift),
		Active: active != "NO" && active != "FALSE",
	}, true
}

func activeCell(active bool) string {
	if active {
		return "SI"
	}
	return "NO"
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]models.Employee, error) {
	rows, err := s.store.ReadRows(ctx, sheets.SheetEmployees)
	if err != nil {
		return nil, fmt.Errorf("leer empleados: %w", err)
	}

	out := make([]models.Employee, 0, len(rows))
	for i, raw := range rows {
		e, ok := parseEmployee(raw, i+sheets.FirstDataRow)
		if !ok || (onlyActive && !e.Active) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (models.Employee, error) {
	all, err := s.List(ctx, false)
	if err != nil {
		return models.Employee{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Employee{}, fiber.NewError(fiber.StatusNotFound, "Empleado no encontrado")
}

func (s *Service) Create(ctx context.Context, name, shift, user string) (models.Employee, error) {
	name = strings.TrimSpace(name)
	shift = strings.TrimSpace(shift)
	if name == "" {
		return models.Employee{}, fiber.NewError(fiber.StatusBadRequest, "nombre es obligatorio")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.List(ctx, false)
	if err != nil {
		return models.Employee{}, err
	}
	next := 1
	for _, e := range all {
		if strings.EqualFold(e.Name, name) && e.Active {
			return models.Employee{}, fiber.NewError(fiber.StatusBadRequest, "Ya existe un empleado activo con ese nombre")
		}
		if e.ID >= next {
			next = e.ID + 1
		}
	}

	e := models.Employee{ID: next, Name: name, Shift: shift, Active: true}
	row, err := s.store.AppendRows(ctx, sheets.SheetEmployees, [][]any{{e.ID, e.Name, e.Shift, activeCell(true)}})
	if err != nil {
		return models.Employee{}, fmt.Errorf("guardar empleado: %w", err)
	}
	e.Row = row

	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "empleado",
		EntityID:    fmt.Sprint(e.ID),
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Alta de empleado: %s", e.Name),
		After:       e,
	})
	return e, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest, user string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}
	before := e

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.Employee{}, fiber.NewError(fiber.StatusBadRequest, "nombre no puede estar vacío")
		}
		e.Name = name
	}
	if req.Shift != nil {
		e.Shift = strings.TrimSpace(*req.Shift)
	}
	if req.Active != nil {
		e.Active = *req.Active
	}

	if err := s.store.UpdateRow(ctx, sheets.SheetEmployees, e.Row, []any{e.ID, e.Name, e.Shift, activeCell(e.Active)}); err != nil {
		return models.Employee{}, fmt.Errorf("actualizar empleado: %w", err)
	}

	audit.Record(audit.LogOptions{
		UserName:    user,
		EntityType:  "empleado",
		EntityID:    fmt.Sprint(e.ID),
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Empleado actualizado: %s", e.Name),
		Before:      before,
		After:       e,
	})
	return e, nil
}
