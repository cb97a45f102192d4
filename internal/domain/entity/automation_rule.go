package entity

import (
	"fmt"
	"time"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Disparadores reconocidos para AutomationRule.
const (
	TriggerLowStock          = "low_stock"
	TriggerOrderCreated      = "order_created"
	TriggerQuotationAccepted = "quotation_accepted"
)

// AutomationRule regla de automatización: cuando se cumple Trigger, se registra Action.
// Threshold solo aplica a low_stock (si es 0 se usa MinimumStock del producto).
type AutomationRule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Trigger   string    `json:"trigger"`
	Threshold int       `json:"threshold,omitempty"`
	Action    string    `json:"action"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *AutomationRule) RecordID() string      { return r.ID }
func (r *AutomationRule) SetRecordID(id string) { r.ID = id }

func (r *AutomationRule) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Validate reglas de negocio de la regla de automatización.
func (r *AutomationRule) Validate() error {
	if r.Name == "" || r.Action == "" {
		return fmt.Errorf("%w: name y action son requeridos", domain.ErrValidation)
	}
	switch r.Trigger {
	case TriggerLowStock, TriggerOrderCreated, TriggerQuotationAccepted:
		return nil
	default:
		return fmt.Errorf("%w: trigger desconocido: %q", domain.ErrValidation, r.Trigger)
	}
}
