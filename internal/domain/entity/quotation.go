package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Estados de una cotización.
const (
	QuotationDraft    = "draft"
	QuotationSent     = "sent"
	QuotationAccepted = "accepted"
	QuotationRejected = "rejected"
)

// quotationFlow transiciones permitidas.
var quotationFlow = map[string][]string{
	QuotationDraft:    {QuotationSent},
	QuotationSent:     {QuotationAccepted, QuotationRejected},
	QuotationAccepted: {},
	QuotationRejected: {},
}

// Quotation representa una cotización. QuoteNumber es único y secuencial
// (serie COT-000001), asignado por el proveedor al crear si viene vacío.
type Quotation struct {
	ID          string          `json:"id"`
	QuoteNumber string          `json:"quote_number"`
	CustomerID  string          `json:"customer_id"`
	Items       []LineItem      `json:"items"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	ValidUntil  time.Time       `json:"valid_until,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (q *Quotation) RecordID() string      { return q.ID }
func (q *Quotation) SetRecordID(id string) { q.ID = id }

func (q *Quotation) Touch(now time.Time) {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
}

// RecalculateTotal recalcula Total desde las líneas.
func (q *Quotation) RecalculateTotal() {
	total := decimal.Zero
	for _, li := range q.Items {
		total = total.Add(li.Subtotal())
	}
	q.Total = total
}

// Validate reglas de negocio de la cotización.
func (q *Quotation) Validate() error {
	if q.CustomerID == "" {
		return fmt.Errorf("%w: customer_id es requerido", domain.ErrValidation)
	}
	if len(q.Items) == 0 {
		return fmt.Errorf("%w: la cotización requiere al menos una línea", domain.ErrValidation)
	}
	for i, li := range q.Items {
		if li.ProductID == "" || li.Quantity <= 0 {
			return fmt.Errorf("%w: línea %d inválida", domain.ErrValidation, i)
		}
	}
	if _, ok := quotationFlow[q.Status]; !ok {
		return fmt.Errorf("%w: estado de cotización desconocido: %q", domain.ErrValidation, q.Status)
	}
	return nil
}

// CanTransitionQuotation verifica una transición de estado.
func CanTransitionQuotation(from, to string) bool {
	for _, next := range quotationFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}
