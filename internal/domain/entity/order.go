package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Estados de una orden, en el orden del ciclo de vida.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
)

// orderFlow posición de cada estado en la cadena; solo se permite avanzar al siguiente.
var orderFlow = map[string]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderPreparing: 2,
	OrderReady:     3,
	OrderShipped:   4,
	OrderDelivered: 5,
}

// LineItem línea de una orden o cotización. UnitPrice es snapshot al momento
// de crear el documento, no se relee del producto.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal cantidad por precio unitario.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order representa una orden de venta. Total es derivado: se recalcula en cada
// escritura a partir de las líneas, nunca se confía en el valor del llamador.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Items      []LineItem      `json:"items"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (o *Order) RecordID() string      { return o.ID }
func (o *Order) SetRecordID(id string) { o.ID = id }

func (o *Order) Touch(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// RecalculateTotal recalcula Total desde las líneas.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.Subtotal())
	}
	o.Total = total
}

// Validate reglas de negocio de la orden.
func (o *Order) Validate() error {
	if o.CustomerID == "" {
		return fmt.Errorf("%w: customer_id es requerido", domain.ErrValidation)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: la orden requiere al menos una línea", domain.ErrValidation)
	}
	for i, li := range o.Items {
		if li.ProductID == "" || li.Quantity <= 0 {
			return fmt.Errorf("%w: línea %d inválida", domain.ErrValidation, i)
		}
	}
	if _, ok := orderFlow[o.Status]; !ok {
		return fmt.Errorf("%w: estado de orden desconocido: %q", domain.ErrValidation, o.Status)
	}
	return nil
}

// CanTransitionOrder permite solo avanzar un paso en la cadena de estados.
func CanTransitionOrder(from, to string) bool {
	f, okF := orderFlow[from]
	t, okT := orderFlow[to]
	return okF && okT && t == f+1
}
