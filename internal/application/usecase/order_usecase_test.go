package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

func newOrderUseCase(t *testing.T) *usecase.OrderUseCase {
	t.Helper()
	p := newTestProvider(t)
	automation := usecase.NewAutomationUseCase(p.AutomationRules(), logger.Nop())
	return usecase.NewOrderUseCase(p.Orders(), automation)
}

func orderRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerID: "c1",
		Items: []entity.LineItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
		},
	}
}

func TestOrderCreate_EstadoInicialPending(t *testing.T) {
	uc := newOrderUseCase(t)
	stored, err := uc.Create(orderRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.OrderPending, stored.Status)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(3000)))
}

func TestOrderChangeStatus_AvanzaUnPaso(t *testing.T) {
	uc := newOrderUseCase(t)
	stored, err := uc.Create(orderRequest())
	require.NoError(t, err)

	got, err := uc.ChangeStatus(stored.ID, entity.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderConfirmed, got.Status)
}

func TestOrderChangeStatus_RechazaSaltos(t *testing.T) {
	uc := newOrderUseCase(t)
	stored, err := uc.Create(orderRequest())
	require.NoError(t, err)

	_, err = uc.ChangeStatus(stored.ID, entity.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// El estado original se mantiene
	got, err := uc.GetByID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, got.Status)
}

func TestOrderChangeStatus_RechazaRetroceso(t *testing.T) {
	uc := newOrderUseCase(t)
	stored, err := uc.Create(orderRequest())
	require.NoError(t, err)

	_, err = uc.ChangeStatus(stored.ID, entity.OrderConfirmed)
	require.NoError(t, err)

	_, err = uc.ChangeStatus(stored.ID, entity.OrderPending)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderChangeStatus_OrdenInexistente(t *testing.T) {
	uc := newOrderUseCase(t)
	_, err := uc.ChangeStatus("no-existe", entity.OrderConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
