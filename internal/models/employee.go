package models

// Columnas de la hoja Empleados
const (
	EmployeeColID     = 1 // A
	EmployeeColName   = 2 // B
	EmployeeColShift  = 3 // C
	EmployeeColActive = 4 // D: SI / NO
)

type Employee struct {
	ID     int    `json:"id"`
	Row    int    `json:"fila"`
	Name   string `json:"nombre"`
	Shift  string `json:"turno"`
	Active bool   `json:"activo"`
}
