package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

func newTestProvider(t *testing.T) *local.Provider {
	t.Helper()
	store, err := recordstore.New(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return local.NewProvider(store, logger.Nop())
}

func newProductUseCase(t *testing.T) *usecase.ProductUseCase {
	t.Helper()
	p := newTestProvider(t)
	automation := usecase.NewAutomationUseCase(p.AutomationRules(), logger.Nop())
	return usecase.NewProductUseCase(p.Products(), automation)
}

func productRequest(sku string, stock int) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		SKU:          sku,
		Name:         "Tornillo 1/4",
		Category:     "ferretería",
		Unit:         "unidad",
		CostPrice:    decimal.NewFromInt(50),
		SellingPrice: decimal.NewFromInt(100),
		Stock:        stock,
		MinimumStock: 5,
	}
}

func TestAdjustStock_AplicaDelta(t *testing.T) {
	uc := newProductUseCase(t)
	stored, err := uc.Create(productRequest("SKU-001", 10))
	require.NoError(t, err)

	got, err := uc.AdjustStock(stored.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)

	got, err = uc.AdjustStock(stored.ID, 14)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Stock)
}

func TestAdjustStock_NoPermiteStockNegativo(t *testing.T) {
	uc := newProductUseCase(t)
	stored, err := uc.Create(productRequest("SKU-001", 3))
	require.NoError(t, err)

	_, err = uc.AdjustStock(stored.ID, -4)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// El stock no cambió
	got, err := uc.GetByID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	uc := newProductUseCase(t)
	_, err := uc.AdjustStock("no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUpdate_PatchParcial(t *testing.T) {
	uc := newProductUseCase(t)
	stored, err := uc.Create(productRequest("SKU-001", 10))
	require.NoError(t, err)

	nuevoNombre := "Tornillo 3/8"
	got, err := uc.Update(stored.ID, dto.UpdateProductRequest{Name: &nuevoNombre})
	require.NoError(t, err)

	assert.Equal(t, "Tornillo 3/8", got.Name)
	assert.Equal(t, "SKU-001", got.SKU, "los campos no incluidos en el patch se preservan")
	assert.Equal(t, 10, got.Stock)
}
