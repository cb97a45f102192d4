package local_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

func newProvider(t *testing.T) *local.Provider {
	t.Helper()
	store, err := recordstore.New(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return local.NewProvider(store, logger.Nop())
}

func sampleProduct(sku string) *entity.Product {
	return &entity.Product{
		SKU:          sku,
		Name:         "Tornillo 1/4",
		Category:     "ferretería",
		Unit:         "unidad",
		CostPrice:    decimal.NewFromInt(500),
		SellingPrice: decimal.NewFromInt(900),
		Stock:        100,
		MinimumStock: 10,
	}
}

func quotationDraft() *entity.Quotation {
	return &entity.Quotation{
		CustomerID: "c1",
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos: create, unicidad de SKU, patch parcial
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CreateAsignaIDYTiempos(t *testing.T) {
	p := newProvider(t)

	stored, err := p.Products().Create(sampleProduct("SKU-001"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID, "create debe asignar un ID")
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, stored.CreatedAt, stored.UpdatedAt)
}

func TestProducts_SKUDuplicado_RetornaConflicto(t *testing.T) {
	p := newProvider(t)

	_, err := p.Products().Create(sampleProduct("SKU-001"))
	require.NoError(t, err)

	_, err = p.Products().Create(sampleProduct("SKU-001"))
	assert.True(t, errors.Is(err, domain.ErrDuplicateSKU),
		"segundo producto con el mismo SKU debe rechazarse")

	// La comparación es sensible a mayúsculas: sku distinto en caso es otro SKU.
	_, err = p.Products().Create(sampleProduct("sku-001"))
	assert.NoError(t, err)
}

func TestProducts_UpdatePreservaCamposAusentes(t *testing.T) {
	p := newProvider(t)

	stored, err := p.Products().Create(sampleProduct("SKU-001"))
	require.NoError(t, err)

	updated, err := p.Products().Update(stored.ID, []byte(`{"stock": 42}`))
	require.NoError(t, err)

	assert.Equal(t, 42, updated.Stock)
	assert.Equal(t, "SKU-001", updated.SKU, "los campos fuera del patch se preservan")
	assert.Equal(t, "Tornillo 1/4", updated.Name)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
}

// Un patch vacío es un no-op: el registro almacenado queda byte a byte idéntico.
func TestProducts_PatchVacio_NoReescribe(t *testing.T) {
	store, err := recordstore.New(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	p := local.NewProvider(store, logger.Nop())

	stored, err := p.Products().Create(sampleProduct("SKU-001"))
	require.NoError(t, err)

	before, ok := store.ReadRaw("products")
	require.True(t, ok)

	_, err = p.Products().Update(stored.ID, []byte(`{}`))
	require.NoError(t, err)
	_, err = p.Products().Update(stored.ID, nil)
	require.NoError(t, err)

	after, ok := store.ReadRaw("products")
	require.True(t, ok)
	assert.Equal(t, string(before), string(after),
		"patch vacío no debe modificar ni reescribir el registro")
}

func TestProducts_UpdateInexistente_RetornaNotFound(t *testing.T) {
	p := newProvider(t)

	_, err := p.Products().Update("no-existe", []byte(`{"stock": 1}`))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProducts_DeleteDosVeces_SegundaRetornaNotFound(t *testing.T) {
	p := newProvider(t)

	stored, err := p.Products().Create(sampleProduct("SKU-001"))
	require.NoError(t, err)

	require.NoError(t, p.Products().Delete(stored.ID))
	err = p.Products().Delete(stored.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound),
		"la segunda eliminación debe reportar que el estado ya cambió")

	got, err := p.Products().GetByID(stored.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "GetByID de un eliminado es (nil, nil)")
}

func TestProducts_ListEnOrdenDeInsercion(t *testing.T) {
	p := newProvider(t)

	for i := 0; i < 5; i++ {
		_, err := p.Products().Create(sampleProduct(fmt.Sprintf("SKU-%03d", i)))
		require.NoError(t, err)
	}

	list, err := p.Products().List()
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, prod := range list {
		assert.Equal(t, fmt.Sprintf("SKU-%03d", i), prod.SKU)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes: estado inicial y total derivado
// ──────────────────────────────────────────────────────────────────────────────

func TestOrders_CreateDerivaTotalYEstado(t *testing.T) {
	p := newProvider(t)

	order := &entity.Order{
		CustomerID: "c1",
		Items: []entity.LineItem{
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(1000)},
			{ProductID: "p2", Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
		},
		// El total del llamador se ignora.
		Total: decimal.NewFromInt(999999),
	}
	stored, err := p.Orders().Create(order)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderPending, stored.Status)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(3500)),
		"total = 3*1000 + 2*250, nunca el valor del llamador")
}

func TestOrders_UpdateItemsRecalculaTotal(t *testing.T) {
	p := newProvider(t)

	stored, err := p.Orders().Create(&entity.Order{
		CustomerID: "c1",
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)

	updated, err := p.Orders().Update(stored.ID,
		[]byte(`{"items":[{"product_id":"p1","quantity":4,"unit_price":"100"}]}`))
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(400)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cotizaciones: numeración consecutiva
// ──────────────────────────────────────────────────────────────────────────────

func TestQuotations_NumeracionConsecutiva(t *testing.T) {
	p := newProvider(t)

	for i := 1; i <= 3; i++ {
		q, err := p.Quotations().Create(&entity.Quotation{
			CustomerID: "c1",
			Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("COT-%06d", i), q.QuoteNumber)
		assert.Equal(t, entity.QuotationDraft, q.Status)
	}
}

// El consecutivo nunca se reutiliza, ni siquiera tras borrar la cotización.
func TestQuotations_ConsecutivoNoSeReutiliza(t *testing.T) {
	p := newProvider(t)

	q1, err := p.Quotations().Create(&entity.Quotation{
		CustomerID: "c1",
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	require.NoError(t, p.Quotations().Delete(q1.ID))

	q2, err := p.Quotations().Create(&entity.Quotation{
		CustomerID: "c1",
		Items:      []entity.LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "COT-000002", q2.QuoteNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios: unicidad de email
// ──────────────────────────────────────────────────────────────────────────────

func TestUsers_EmailDuplicado_RetornaConflicto(t *testing.T) {
	p := newProvider(t)

	_, err := p.Users().Create(&entity.User{Email: "ana@chabs.app", Name: "Ana", Role: entity.RoleAdmin, Status: "active"})
	require.NoError(t, err)

	_, err = p.Users().Create(&entity.User{Email: "ana@chabs.app", Name: "Otra Ana", Role: entity.RoleSales, Status: "active"})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia entre instancias (reabrir el proveedor sobre el mismo directorio)
// ──────────────────────────────────────────────────────────────────────────────

func TestProvider_DatosSobrevivenReapertura(t *testing.T) {
	dir := t.TempDir()

	store, err := recordstore.New(dir, logger.Nop())
	require.NoError(t, err)
	p1 := local.NewProvider(store, logger.Nop())
	stored, err := p1.Products().Create(sampleProduct("SKU-001"))
	require.NoError(t, err)

	store2, err := recordstore.New(dir, logger.Nop())
	require.NoError(t, err)
	p2 := local.NewProvider(store2, logger.Nop())

	got, err := p2.Products().GetByID(stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SKU-001", got.SKU)
}
