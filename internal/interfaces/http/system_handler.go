package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
)

// SystemHandler operaciones de sistema: sincronización, respaldos,
// exportación/importación y estadísticas (solo admin).
type SystemHandler struct {
	uc *usecase.SystemUseCase
}

// NewSystemHandler construye el handler.
func NewSystemHandler(uc *usecase.SystemUseCase) *SystemHandler {
	return &SystemHandler{uc: uc}
}

// SyncStatus estado actual de sincronización.
func (h *SystemHandler) SyncStatus(c *fiber.Ctx) error {
	return c.JSON(h.uc.SyncStatus())
}

// NotifyConnectivity informa un cambio de conectividad detectado por el cliente.
func (h *SystemHandler) NotifyConnectivity(c *fiber.Ctx) error {
	var in struct {
		Online bool `json:"online"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	h.uc.NotifyConnectivity(in.Online)
	return c.JSON(h.uc.SyncStatus())
}

// CreateBackup crea un respaldo completo.
func (h *SystemHandler) CreateBackup(c *fiber.Ctx) error {
	out, err := h.uc.CreateBackup()
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBackups lista los respaldos disponibles.
func (h *SystemHandler) ListBackups(c *fiber.Ctx) error {
	out, err := h.uc.ListBackups()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(out)
}

// RestoreBackup restaura un respaldo por ID.
func (h *SystemHandler) RestoreBackup(c *fiber.Ctx) error {
	if err := h.uc.RestoreBackup(c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportAll descarga todas las colecciones como un documento JSON.
func (h *SystemHandler) ExportAll(c *fiber.Ctx) error {
	blob, err := h.uc.ExportAll()
	if err != nil {
		return respondErr(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="chabs_export.json"`)
	return c.Send(blob)
}

// ImportAll reemplaza todas las colecciones con el documento recibido.
func (h *SystemHandler) ImportAll(c *fiber.Ctx) error {
	if err := h.uc.ImportAll(c.Body()); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StorageStats conteos por colección y tamaño aproximado.
func (h *SystemHandler) StorageStats(c *fiber.Ctx) error {
	out, err := h.uc.StorageStats()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(out)
}
