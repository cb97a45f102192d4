package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/chabs-app/chabs-api/internal/domain/entity"
)

func TestCanTransitionOrder(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{entity.OrderPending, entity.OrderConfirmed, true},
		{entity.OrderConfirmed, entity.OrderPreparing, true},
		{entity.OrderPreparing, entity.OrderReady, true},
		{entity.OrderReady, entity.OrderShipped, true},
		{entity.OrderShipped, entity.OrderDelivered, true},

		// Saltos de estado no permitidos
		{entity.OrderPending, entity.OrderPreparing, false},
		{entity.OrderPending, entity.OrderDelivered, false},
		{entity.OrderConfirmed, entity.OrderShipped, false},

		// Retrocesos no permitidos
		{entity.OrderDelivered, entity.OrderShipped, false},
		{entity.OrderConfirmed, entity.OrderPending, false},

		// Estado terminal y estados desconocidos
		{entity.OrderDelivered, entity.OrderDelivered, false},
		{"inexistente", entity.OrderConfirmed, false},
		{entity.OrderPending, "inexistente", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, entity.CanTransitionOrder(tc.from, tc.to),
			"transición %q -> %q", tc.from, tc.to)
	}
}

func TestOrder_RecalculateTotal(t *testing.T) {
	o := &entity.Order{
		Items: []entity.LineItem{
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(1000)},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
		Total: decimal.NewFromInt(999999), // debe ignorarse
	}
	o.RecalculateTotal()

	assert.True(t, o.Total.Equal(decimal.NewFromInt(3500)),
		"total esperado 3500, obtenido %s", o.Total)
	assert.True(t, o.Items[0].Subtotal().Equal(decimal.NewFromInt(3000)))
	assert.True(t, o.Items[1].Subtotal().Equal(decimal.NewFromInt(500)))
}

func TestOrder_RecalculateTotal_SinItems(t *testing.T) {
	o := &entity.Order{Total: decimal.NewFromInt(42)}
	o.RecalculateTotal()
	assert.True(t, o.Total.IsZero(), "sin items el total es cero")
}
