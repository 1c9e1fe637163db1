package audit

import (
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

// GET /api/auditoria?entidad=venta&id=...&limite=100
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if database.DB == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Auditoría no disponible")
		}

		limit := c.QueryInt("limite", 100)
		if limit <= 0 || limit > 1000 {
			return fiber.NewError(fiber.StatusBadRequest, "limite debe estar entre 1 y 1000")
		}

		dbq := database.DB.Model(&models.AuditLog{})
		if entity := c.Query("entidad"); entity != "" {
			dbq = dbq.Where("entity_type = ?", entity)
		}
		if id := c.Query("id"); id != "" {
			dbq = dbq.Where("entity_id = ?", id)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar la auditoría")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}
		return c.JSON(resp)
	}
}
