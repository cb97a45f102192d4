package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
)

// deletedCustomerName marcador para referencias huérfanas: eliminar un cliente
// no borra ni rompe los documentos que lo referencian.
const deletedCustomerName = "Cliente eliminado"

// orderView orden con el nombre del cliente resuelto.
type orderView struct {
	*entity.Order
	CustomerName string `json:"customer_name"`
}

// OrderHandler maneja las peticiones HTTP para Order (protegido).
type OrderHandler struct {
	uc        *usecase.OrderUseCase
	customers *usecase.CustomerUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *usecase.OrderUseCase, customers *usecase.CustomerUseCase) *OrderHandler {
	return &OrderHandler{uc: uc, customers: customers}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.view(out))
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.uc.List()
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, h.view(o))
	}
	return c.JSON(out)
}

func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	return c.JSON(h.view(out))
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(h.view(out))
}

// ChangeStatus avanza la orden al siguiente estado de la cadena.
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ChangeStatus(c.Params("id"), in.Status)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(h.view(out))
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// view resuelve el nombre del cliente; huérfano -> marcador.
func (h *OrderHandler) view(o *entity.Order) orderView {
	name := deletedCustomerName
	if customer, err := h.customers.GetByID(o.CustomerID); err == nil && customer != nil {
		name = customer.Name
	}
	return orderView{Order: o, CustomerName: name}
}
