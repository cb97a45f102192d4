package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
)

// AutomationHandler CRUD de reglas de automatización (solo admin).
type AutomationHandler struct {
	uc *usecase.AutomationUseCase
}

// NewAutomationHandler construye el handler.
func NewAutomationHandler(uc *usecase.AutomationUseCase) *AutomationHandler {
	return &AutomationHandler{uc: uc}
}

func (h *AutomationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAutomationRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AutomationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(out)
}

func (h *AutomationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "regla no encontrada"})
	}
	return c.JSON(out)
}

func (h *AutomationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateAutomationRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(out)
}

func (h *AutomationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
