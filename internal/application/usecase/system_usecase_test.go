package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/application/usecase"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/remote"
)

// fakeStatsSource doble del agregador de estadísticas del backend remoto.
type fakeStatsSource struct {
	stats *remote.Stats
	err   error
}

func (f *fakeStatsSource) Stats(context.Context) (*remote.Stats, error) {
	return f.stats, f.err
}

func TestStorageStats_ModoLocal(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.Products().Create(&entity.Product{
		SKU: "SKU-001", Name: "Producto",
		CostPrice: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(150),
		Stock: 10, MinimumStock: 2,
	})
	require.NoError(t, err)

	uc := usecase.NewSystemUseCase(p, nil, nil)
	out, err := uc.StorageStats()
	require.NoError(t, err)
	assert.Equal(t, 1, out.PerCollection[storage.ColProducts])
	assert.Nil(t, out.OrdersTotal, "la suma de pedidos solo se agrega en modo cloud")
}

func TestStorageStats_ModoCloud_AgregaEnElServidor(t *testing.T) {
	total := decimal.RequireFromString("1234.50")
	source := &fakeStatsSource{stats: &remote.Stats{
		PerCollection: map[string]int{storage.ColProducts: 3, storage.ColOrders: 2},
		ApproxBytes:   8192,
		OrdersTotal:   total,
	}}

	uc := usecase.NewSystemUseCase(nil, source, nil)
	out, err := uc.StorageStats()
	require.NoError(t, err)
	assert.Equal(t, 3, out.PerCollection[storage.ColProducts])
	assert.Equal(t, int64(8192), out.ApproxBytes)
	require.NotNil(t, out.OrdersTotal)
	assert.True(t, total.Equal(*out.OrdersTotal))
}

func TestStorageStats_ModoCloud_PropagaElError(t *testing.T) {
	source := &fakeStatsSource{err: domain.ErrRemoteUnavailable}

	uc := usecase.NewSystemUseCase(nil, source, nil)
	_, err := uc.StorageStats()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteUnavailable))
}

// Las operaciones sobre el medio local no existen en modo cloud.
func TestOperacionesLocales_NoDisponiblesEnModoCloud(t *testing.T) {
	uc := usecase.NewSystemUseCase(nil, &fakeStatsSource{}, nil)

	_, err := uc.CreateBackup()
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = uc.ListBackups()
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.True(t, errors.Is(uc.RestoreBackup("cualquiera"), domain.ErrValidation))
	_, err = uc.ExportAll()
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.True(t, errors.Is(uc.ImportAll([]byte(`{}`)), domain.ErrValidation))
}
