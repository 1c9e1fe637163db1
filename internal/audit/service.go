package audit

import (
	"encoding/json"
	"fmt"

	"almacen-backend/internal/database"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/models"
)

type LogOptions struct {
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	if database.DB == nil {
		return fmt.Errorf("base de datos no inicializada")
	}

	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el registro de auditoría: %w", err)
	}
	return nil
}

// Record escribe el registro y sólo loguea si falla; la auditoría nunca
// interrumpe la operación.
func Record(opts LogOptions) {
	if err := WriteLog(opts); err != nil {
		logger.Log.Warningf("Auditoría no registrada (%s %s): %v", opts.EntityType, opts.EntityID, err)
	}
}
