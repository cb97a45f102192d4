package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
)

func TestCanTransitionQuotation(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{entity.QuotationDraft, entity.QuotationSent, true},
		{entity.QuotationSent, entity.QuotationAccepted, true},
		{entity.QuotationSent, entity.QuotationRejected, true},

		// Desde draft no se puede aceptar ni rechazar directamente
		{entity.QuotationDraft, entity.QuotationAccepted, false},
		{entity.QuotationDraft, entity.QuotationRejected, false},

		// Accepted y rejected son terminales
		{entity.QuotationAccepted, entity.QuotationSent, false},
		{entity.QuotationAccepted, entity.QuotationRejected, false},
		{entity.QuotationRejected, entity.QuotationSent, false},

		// Retroceso y estados desconocidos
		{entity.QuotationSent, entity.QuotationDraft, false},
		{"inexistente", entity.QuotationSent, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, entity.CanTransitionQuotation(tc.from, tc.to),
			"transición %q -> %q", tc.from, tc.to)
	}
}

func TestQuotation_Validate(t *testing.T) {
	q := &entity.Quotation{
		CustomerID: "c1",
		Status:     entity.QuotationDraft,
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1}},
	}
	assert.NoError(t, q.Validate())

	sinCliente := &entity.Quotation{Status: entity.QuotationDraft, Items: q.Items}
	assert.ErrorIs(t, sinCliente.Validate(), domain.ErrValidation)

	sinLineas := &entity.Quotation{CustomerID: "c1", Status: entity.QuotationDraft}
	assert.ErrorIs(t, sinLineas.Validate(), domain.ErrValidation)

	lineaInvalida := &entity.Quotation{
		CustomerID: "c1",
		Status:     entity.QuotationDraft,
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 0}},
	}
	assert.ErrorIs(t, lineaInvalida.Validate(), domain.ErrValidation)

	estadoDesconocido := &entity.Quotation{
		CustomerID: "c1",
		Status:     "limbo",
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1}},
	}
	assert.ErrorIs(t, estadoDesconocido.Validate(), domain.ErrValidation)
}
