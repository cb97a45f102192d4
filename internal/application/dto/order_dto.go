package dto

import (
	"time"

	"github.com/chabs-app/chabs-api/internal/domain/entity"
)

// CreateOrderRequest datos para crear una orden. El total no se acepta del
// llamador, se deriva siempre de las líneas.
type CreateOrderRequest struct {
	CustomerID string            `json:"customer_id"`
	Items      []entity.LineItem `json:"items"`
	Notes      string            `json:"notes"`
}

// UpdateOrderRequest actualización parcial de una orden. El estado no se
// modifica por aquí, usar la transición explícita.
type UpdateOrderRequest struct {
	CustomerID *string           `json:"customer_id,omitempty"`
	Items      []entity.LineItem `json:"items,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
}

// ChangeStatusRequest solicitud de transición de estado.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// CreateQuotationRequest datos para crear una cotización. QuoteNumber lo
// asigna el sistema.
type CreateQuotationRequest struct {
	CustomerID string            `json:"customer_id"`
	Items      []entity.LineItem `json:"items"`
	ValidUntil time.Time         `json:"valid_until"`
	Notes      string            `json:"notes"`
}

// UpdateQuotationRequest actualización parcial de una cotización.
type UpdateQuotationRequest struct {
	CustomerID *string           `json:"customer_id,omitempty"`
	Items      []entity.LineItem `json:"items,omitempty"`
	ValidUntil *time.Time        `json:"valid_until,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
}
