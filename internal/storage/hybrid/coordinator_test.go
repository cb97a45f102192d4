package hybrid_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/hybrid"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doble en memoria del backend remoto
// ──────────────────────────────────────────────────────────────────────────────

type fakeRemote struct {
	mu            sync.Mutex
	reachable     bool
	failApply     bool
	failRemaining int // con failApply activo, aplicaciones que aún se aceptan
	applied       []storage.Mutation
	onApply       func(storage.Mutation) // se dispara una vez, tras un Apply exitoso
	onChange      map[string]func(storage.ChangeEvent)
}

func newFakeRemote(reachable bool) *fakeRemote {
	return &fakeRemote{reachable: reachable, onChange: map[string]func(storage.ChangeEvent){}}
}

func (f *fakeRemote) HealthCheck(context.Context) storage.HealthStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return storage.HealthStatus{Reachable: f.reachable, LatencyMs: 1}
}

func (f *fakeRemote) Apply(_ context.Context, m storage.Mutation) error {
	f.mu.Lock()
	if !f.reachable {
		f.mu.Unlock()
		return errors.New("conexión rechazada")
	}
	if f.failApply {
		if f.failRemaining == 0 {
			f.mu.Unlock()
			return errors.New("conexión rechazada")
		}
		f.failRemaining--
	}
	f.applied = append(f.applied, m)
	hook := f.onApply
	f.onApply = nil
	f.mu.Unlock()

	if hook != nil {
		hook(m)
	}
	return nil
}

func (f *fakeRemote) EnsureSchema(context.Context) error { return nil }

func (f *fakeRemote) Subscribe(collection string, onChange func(storage.ChangeEvent)) (storage.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange[collection] = onChange
	return fakeSub{}, nil
}

func (f *fakeRemote) InstanceID() string { return "instancia-propia" }
func (f *fakeRemote) Close()             {}

func (f *fakeRemote) setReachable(ok bool) {
	f.mu.Lock()
	f.reachable = ok
	f.mu.Unlock()
}

func (f *fakeRemote) setFailApply(fail bool) {
	f.mu.Lock()
	f.failApply = fail
	f.failRemaining = 0
	f.mu.Unlock()
}

// setFailAfter acepta n aplicaciones más y rechaza las siguientes.
func (f *fakeRemote) setFailAfter(n int) {
	f.mu.Lock()
	f.failApply = true
	f.failRemaining = n
	f.mu.Unlock()
}

func (f *fakeRemote) setOnApply(hook func(storage.Mutation)) {
	f.mu.Lock()
	f.onApply = hook
	f.mu.Unlock()
}

func (f *fakeRemote) appliedMutations() []storage.Mutation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.Mutation, len(f.applied))
	copy(out, f.applied)
	return out
}

func (f *fakeRemote) emit(collection string, ev storage.ChangeEvent) {
	f.mu.Lock()
	cb := f.onChange[collection]
	f.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

type fakeSub struct{}

func (fakeSub) Cancel() {}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newHybrid(t *testing.T, dir string, remote *fakeRemote) *hybrid.Coordinator {
	t.Helper()
	store, err := recordstore.New(dir, logger.Nop())
	require.NoError(t, err)
	lp := local.NewProvider(store, logger.Nop())
	// Intervalo enorme: los tests disparan los chequeos explícitamente.
	c := hybrid.NewCoordinator(lp, remote, store, time.Hour, logger.Nop())
	t.Cleanup(c.Close)
	return c
}

func createProduct(t *testing.T, c *hybrid.Coordinator, sku string) *entity.Product {
	t.Helper()
	p, err := c.Products().Create(&entity.Product{
		SKU: sku, Name: "Producto " + sku,
		CostPrice: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(150),
		Stock: 10, MinimumStock: 2,
	})
	require.NoError(t, err)
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras offline
// ──────────────────────────────────────────────────────────────────────────────

// Sin conexión, las escrituras siguen funcionando contra Local y quedan
// encoladas; nada llega al remoto.
func TestOffline_EscrituraLocalYEncolado(t *testing.T) {
	remote := newFakeRemote(false)
	c := newHybrid(t, t.TempDir(), remote)

	require.Equal(t, storage.StateOfflineQueued, c.Status().State)

	p := createProduct(t, c, "SKU-001")

	got, err := c.Products().GetByID(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "la lectura local ve la mutación sin sincronizar")

	status := c.Status()
	assert.Equal(t, storage.StateOfflineQueued, status.State)
	assert.Equal(t, 1, status.QueueLength)
	assert.Empty(t, remote.appliedMutations())
}

// Al reconectar, la cola se reproduce en orden FIFO y el estado vuelve a
// ONLINE_SYNCED con la cola vacía.
func TestReconexion_DrenaFIFO(t *testing.T) {
	remote := newFakeRemote(false)
	c := newHybrid(t, t.TempDir(), remote)

	p1 := createProduct(t, c, "SKU-001")
	p2 := createProduct(t, c, "SKU-002")
	require.NoError(t, c.Products().Delete(p1.ID))
	require.Equal(t, 3, c.Status().QueueLength)

	remote.setReachable(true)
	c.NotifyConnectivity(true)

	require.Eventually(t, func() bool {
		s := c.Status()
		return s.State == storage.StateOnlineSynced && s.QueueLength == 0
	}, 2*time.Second, 10*time.Millisecond, "la cola debe drenarse tras reconectar")

	applied := remote.appliedMutations()
	require.Len(t, applied, 3)
	assert.Equal(t, storage.ChangeCreated, applied[0].Kind)
	assert.Equal(t, p1.ID, applied[0].EntityID)
	assert.Equal(t, storage.ChangeCreated, applied[1].Kind)
	assert.Equal(t, p2.ID, applied[1].EntityID)
	assert.Equal(t, storage.ChangeDeleted, applied[2].Kind)
	assert.Equal(t, p1.ID, applied[2].EntityID)
}

// Dos señales de reconexión seguidas no reproducen la cola dos veces.
func TestReconexion_DobleSenalNoDuplicaReproduccion(t *testing.T) {
	remote := newFakeRemote(false)
	c := newHybrid(t, t.TempDir(), remote)

	createProduct(t, c, "SKU-001")

	remote.setReachable(true)
	c.NotifyConnectivity(true)
	c.NotifyConnectivity(true)

	require.Eventually(t, func() bool {
		return c.Status().State == storage.StateOnlineSynced
	}, 2*time.Second, 10*time.Millisecond)

	assert.Len(t, remote.appliedMutations(), 1, "cada mutación se aplica exactamente una vez")
}

// ──────────────────────────────────────────────────────────────────────────────
// Espejo síncrono en línea
// ──────────────────────────────────────────────────────────────────────────────

func TestOnline_EspejoSincrono(t *testing.T) {
	remote := newFakeRemote(true)
	c := newHybrid(t, t.TempDir(), remote)

	require.Equal(t, storage.StateOnlineSynced, c.Status().State)

	p := createProduct(t, c, "SKU-001")

	applied := remote.appliedMutations()
	require.Len(t, applied, 1)
	assert.Equal(t, storage.ColProducts, applied[0].Collection)
	assert.Equal(t, p.ID, applied[0].EntityID)

	// El documento espejado es el resultado local completo.
	var doc entity.Product
	require.NoError(t, json.Unmarshal(applied[0].Doc, &doc))
	assert.Equal(t, "SKU-001", doc.SKU)
}

// Un fallo del espejo nunca llega al llamador: degrada el estado y encola.
func TestOnline_FalloDeEspejoNoFallaLaEscritura(t *testing.T) {
	remote := newFakeRemote(true)
	c := newHybrid(t, t.TempDir(), remote)
	remote.setFailApply(true)

	p := createProduct(t, c, "SKU-001") // no debe fallar

	got, err := c.Products().GetByID(p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	status := c.Status()
	assert.Equal(t, storage.StateOfflineQueued, status.State)
	assert.Equal(t, 1, status.QueueLength)
}

// Los errores de negocio de Local llegan intactos y no encolan nada.
func TestOnline_ErrorDeNegocioNoSeEncola(t *testing.T) {
	remote := newFakeRemote(true)
	c := newHybrid(t, t.TempDir(), remote)

	createProduct(t, c, "SKU-001")
	_, err := c.Products().Create(&entity.Product{SKU: "SKU-001", Name: "Duplicado"})
	require.Error(t, err)

	assert.Equal(t, 0, c.Status().QueueLength)
	assert.Len(t, remote.appliedMutations(), 1, "solo la creación válida se espeja")
}

// ──────────────────────────────────────────────────────────────────────────────
// Durabilidad de la cola entre reinicios
// ──────────────────────────────────────────────────────────────────────────────

func TestCola_SobreviveReinicio(t *testing.T) {
	dir := t.TempDir()

	remote := newFakeRemote(false)
	c1 := newHybrid(t, dir, remote)
	p := createProduct(t, c1, "SKU-001")
	require.Equal(t, 1, c1.Status().QueueLength)
	c1.Close()

	// Nueva ejecución sobre el mismo directorio, ahora con conexión: la cola
	// heredada se reproduce al construir.
	remote2 := newFakeRemote(true)
	c2 := newHybrid(t, dir, remote2)

	require.Eventually(t, func() bool {
		return c2.Status().State == storage.StateOnlineSynced && c2.Status().QueueLength == 0
	}, 2*time.Second, 10*time.Millisecond)

	applied := remote2.appliedMutations()
	require.Len(t, applied, 1)
	assert.Equal(t, p.ID, applied[0].EntityID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Feed de cambios remotos
// ──────────────────────────────────────────────────────────────────────────────

func TestFeedRemoto_AplicaCambiosDeOtrosClientes(t *testing.T) {
	remote := newFakeRemote(true)
	c := newHybrid(t, t.TempDir(), remote)

	doc, _ := json.Marshal(&entity.Product{
		ID: "ajeno-1", SKU: "SKU-REMOTO", Name: "Creado por otro cliente",
		Stock: 5, MinimumStock: 1,
	})
	remote.emit(storage.ColProducts, storage.ChangeEvent{
		Collection: storage.ColProducts,
		Kind:       storage.ChangeCreated,
		EntityID:   "ajeno-1",
		Doc:        doc,
		Origin:     "otra-instancia",
	})

	got, err := c.Products().GetByID("ajeno-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SKU-REMOTO", got.SKU)
}

// El eco de las escrituras propias se descarta por el origen.
func TestFeedRemoto_DescartaEcoPropio(t *testing.T) {
	remote := newFakeRemote(true)
	c := newHybrid(t, t.TempDir(), remote)

	doc, _ := json.Marshal(&entity.Product{ID: "eco-1", SKU: "SKU-ECO", Name: "Eco"})
	remote.emit(storage.ColProducts, storage.ChangeEvent{
		Collection: storage.ColProducts,
		Kind:       storage.ChangeCreated,
		EntityID:   "eco-1",
		Doc:        doc,
		Origin:     "instancia-propia", // mismo InstanceID del fake
	})

	got, err := c.Products().GetByID("eco-1")
	require.NoError(t, err)
	assert.Nil(t, got, "el eco propio no debe reaplicarse")
}

// Una caída a mitad de la reproducción conserva el resto de la cola en orden
// y vuelve a OFFLINE_QUEUED; al recuperarse, cada mutación pendiente llega al
// remoto exactamente una vez.
func TestReconexion_CaidaAMitadDeReproduccion(t *testing.T) {
	remote := newFakeRemote(false)
	c := newHybrid(t, t.TempDir(), remote)

	p1 := createProduct(t, c, "SKU-001")
	p2 := createProduct(t, c, "SKU-002")
	p3 := createProduct(t, c, "SKU-003")
	require.Equal(t, 3, c.Status().QueueLength)

	// La conexión sobrevive al chequeo de salud y a una sola aplicación.
	remote.setReachable(true)
	remote.setFailAfter(1)
	c.NotifyConnectivity(true)

	require.Eventually(t, func() bool {
		s := c.Status()
		return s.State == storage.StateOfflineQueued && s.QueueLength == 2
	}, 2*time.Second, 10*time.Millisecond, "la caída debe dejar el resto encolado")

	applied := remote.appliedMutations()
	require.Len(t, applied, 1)
	assert.Equal(t, p1.ID, applied[0].EntityID)

	// Recuperación: el resto se reproduce en orden y sin duplicados.
	remote.setFailApply(false)
	c.NotifyConnectivity(true)

	require.Eventually(t, func() bool {
		s := c.Status()
		return s.State == storage.StateOnlineSynced && s.QueueLength == 0
	}, 2*time.Second, 10*time.Millisecond)

	applied = remote.appliedMutations()
	require.Len(t, applied, 3)
	assert.Equal(t, p1.ID, applied[0].EntityID)
	assert.Equal(t, p2.ID, applied[1].EntityID)
	assert.Equal(t, p3.ID, applied[2].EntityID)
}

// Una escritura que entra en plena reproducción no se pierde: o se suma a la
// cola que se está drenando o se espeja directa, pero siempre llega al remoto
// y el estado final queda coherente.
func TestDrenado_EscrituraConcurrenteNoSePierde(t *testing.T) {
	remote := newFakeRemote(false)
	c := newHybrid(t, t.TempDir(), remote)

	createProduct(t, c, "SKU-001")
	createProduct(t, c, "SKU-002")

	errCh := make(chan error, 1)
	remote.setOnApply(func(storage.Mutation) {
		_, err := c.Products().Create(&entity.Product{
			SKU: "SKU-003", Name: "Producto SKU-003",
			CostPrice: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(150),
			Stock: 10, MinimumStock: 2,
		})
		errCh <- err
	})

	remote.setReachable(true)
	c.NotifyConnectivity(true)
	require.NoError(t, <-errCh)

	require.Eventually(t, func() bool {
		s := c.Status()
		return s.State == storage.StateOnlineSynced && s.QueueLength == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		for _, m := range remote.appliedMutations() {
			var doc entity.Product
			if json.Unmarshal(m.Doc, &doc) == nil && doc.SKU == "SKU-003" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "la escritura concurrente debe llegar al remoto")
}
