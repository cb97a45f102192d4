// Package hybrid implementa el coordinador de sincronización: una sola
// interfaz CRUD sobre el proveedor local y el remoto. Las escrituras van
// primero a Local y responden con el resultado local; el espejo remoto es
// síncrono cuando hay conexión o se encola de forma durable cuando no.
//
// Política de conflictos (limitación documentada, no una garantía de merge):
// durante un periodo offline Local es autoritativo. Al reproducir la cola, la
// copia remota se sobreescribe con la mutación local encolada; una edición
// concurrente del lado remoto se pierde en silencio salvo que la suscripción
// de cambios la haya traído a Local antes de encolar la mutación local.
package hybrid

import (
	"context"
	"sync"
	"time"

	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

var _ storage.Provider = (*Coordinator)(nil)

// RemoteBackend contrato mínimo del coordinador hacia el backend remoto.
// Lo satisface remote.Provider; los tests usan un doble en memoria.
type RemoteBackend interface {
	HealthCheck(ctx context.Context) storage.HealthStatus
	Apply(ctx context.Context, m storage.Mutation) error
	EnsureSchema(ctx context.Context) error
	Subscribe(collection string, onChange func(storage.ChangeEvent)) (storage.Subscription, error)
	InstanceID() string
	Close()
}

// Coordinator enruta llamadas entre Local y Remote según el estado de
// conectividad y los mantiene eventualmente consistentes.
type Coordinator struct {
	local  *local.Provider
	remote RemoteBackend
	log    *logger.Logger

	// stateMu protege el estado y los metadatos del último health-check.
	stateMu     sync.Mutex
	state       storage.SyncState
	lastCheck   time.Time
	lastLatency int64

	// queueMu protege la cola de reproducción; drainMu garantiza un solo drenador.
	queueMu sync.Mutex
	queue   *replayQueue
	drainMu sync.Mutex

	schemaOnce sync.Once
	subsOnce   sync.Once
	subs       []storage.Subscription
	sched      *scheduler

	products   repository.Repository[*entity.Product]
	customers  repository.Repository[*entity.Customer]
	suppliers  repository.Repository[*entity.Supplier]
	orders     repository.Repository[*entity.Order]
	quotations repository.Repository[*entity.Quotation]
	users      repository.Repository[*entity.User]
	rules      repository.Repository[*entity.AutomationRule]
}

// NewCoordinator construye el coordinador, carga la cola persistida, decide el
// estado inicial con un health-check y arranca el chequeo periódico.
func NewCoordinator(lp *local.Provider, rb RemoteBackend, store *recordstore.Store, interval time.Duration, log *logger.Logger) *Coordinator {
	c := &Coordinator{
		local:  lp,
		remote: rb,
		log:    log,
		queue:  newReplayQueue(store, log),
	}

	c.products = mirrored(c, storage.ColProducts, lp.Products())
	c.customers = mirrored(c, storage.ColCustomers, lp.Customers())
	c.suppliers = mirrored(c, storage.ColSuppliers, lp.Suppliers())
	c.orders = mirrored(c, storage.ColOrders, lp.Orders())
	c.quotations = mirrored(c, storage.ColQuotations, lp.Quotations())
	c.users = mirrored(c, storage.ColUsers, lp.Users())
	c.rules = mirrored(c, storage.ColAutomationRules, lp.AutomationRules())

	hs := rb.HealthCheck(context.Background())
	c.stateMu.Lock()
	c.lastCheck = time.Now().UTC()
	c.lastLatency = hs.LatencyMs
	if hs.Reachable {
		c.state = storage.StateOnlineSynced
	} else {
		c.state = storage.StateOfflineQueued
	}
	c.stateMu.Unlock()

	if hs.Reachable {
		c.onReachable()
		// Cola heredada de una ejecución anterior: reproducir ya.
		if c.queueLength() > 0 {
			c.drain()
		}
	}

	if interval <= 0 {
		interval = 30 * time.Second
	}
	c.sched = newScheduler(interval, c.checkNow)

	log.Info().Str("state", string(c.currentState())).Int("queued", c.queueLength()).
		Msg("coordinador híbrido iniciado")
	return c
}

func (c *Coordinator) Products() repository.Repository[*entity.Product]     { return c.products }
func (c *Coordinator) Customers() repository.Repository[*entity.Customer]   { return c.customers }
func (c *Coordinator) Suppliers() repository.Repository[*entity.Supplier]   { return c.suppliers }
func (c *Coordinator) Orders() repository.Repository[*entity.Order]         { return c.orders }
func (c *Coordinator) Quotations() repository.Repository[*entity.Quotation] { return c.quotations }
func (c *Coordinator) Users() repository.Repository[*entity.User]           { return c.users }
func (c *Coordinator) AutomationRules() repository.Repository[*entity.AutomationRule] {
	return c.rules
}

// Close cancela el chequeo periódico y las suscripciones y cierra ambos
// proveedores. El scheduler se detiene de forma síncrona: no quedan timers
// filtrados entre ciclos de vida.
func (c *Coordinator) Close() {
	if c.sched != nil {
		c.sched.stop()
	}
	for _, sub := range c.subs {
		sub.Cancel()
	}
	c.remote.Close()
	c.local.Close()
}

// Status estado observable de la sincronización. El largo de la cola se lee
// antes de tomar stateMu: el orden de locks en todo el coordinador es
// queueMu -> stateMu.
func (c *Coordinator) Status() storage.SyncStatus {
	qlen := c.queueLength()
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return storage.SyncStatus{
		State:         c.state,
		QueueLength:   qlen,
		LastCheck:     c.lastCheck,
		LastLatencyMs: c.lastLatency,
	}
}

// NotifyConnectivity señal explícita de cambio de conectividad del entorno.
// online=false degrada a OFFLINE_QUEUED sin esperar un fallo remoto;
// online=true dispara un chequeo inmediato (y el drenado si procede).
func (c *Coordinator) NotifyConnectivity(online bool) {
	if !online {
		c.setState(storage.StateOfflineQueued)
		return
	}
	go c.checkNow()
}

// checkNow ejecuta un health-check y, si el remoto está alcanzable y hay cola
// pendiente, drena. Es la tarea del scheduler y también el camino de la señal
// de reconexión.
func (c *Coordinator) checkNow() {
	hs := c.remote.HealthCheck(context.Background())

	c.stateMu.Lock()
	c.lastCheck = time.Now().UTC()
	c.lastLatency = hs.LatencyMs
	state := c.state
	c.stateMu.Unlock()

	if !hs.Reachable {
		if state == storage.StateOnlineSynced {
			c.setState(storage.StateOfflineQueued)
		}
		return
	}

	c.onReachable()
	if state == storage.StateOfflineQueued || c.queueLength() > 0 {
		c.drain()
	}
}

// mirror espeja una mutación ya aplicada en Local. Nunca falla hacia el
// llamador: un fallo remoto degrada el estado y encola para reproducir.
//
// La decisión de ruta (espejo directo o cola) y el encolado ocurren bajo
// queueMu, el mismo lock con el que drain cierra su reproducción: una mutación
// no puede quedar encolada después de que la cola se declaró vacía con el
// estado ya en ONLINE_SYNCED.
func (c *Coordinator) mirror(m storage.Mutation) {
	c.queueMu.Lock()
	state := c.currentState()
	if state == storage.StateOfflineQueued || state == storage.StateOnlineSyncing {
		c.queue.enqueue(m)
		c.queueMu.Unlock()
		return
	}
	c.queueMu.Unlock()

	if state != storage.StateOnlineSynced {
		return
	}
	if err := c.remote.Apply(context.Background(), m); err != nil {
		c.log.Warn().Str("collection", m.Collection).Str("entity", m.EntityID).Err(err).
			Msg("espejo remoto fallido, mutación encolada")
		c.enqueue(m)
		c.setState(storage.StateOfflineQueued)
	}
}

// drain reproduce la cola en orden FIFO. Un solo drenador a la vez; las
// entradas salen de la cola solo después de aplicarse, así una caída a mitad
// de reproducción conserva el resto en orden. La transición final a
// ONLINE_SYNCED se hace bajo queueMu, atómica con la comprobación de cola
// vacía (ver mirror).
func (c *Coordinator) drain() {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	c.setState(storage.StateOnlineSyncing)
	for {
		c.queueMu.Lock()
		m, ok := c.queue.peek()
		if !ok {
			c.setState(storage.StateOnlineSynced)
			c.queueMu.Unlock()
			break
		}
		c.queueMu.Unlock()

		if err := c.remote.Apply(context.Background(), m); err != nil {
			c.log.Warn().Str("collection", m.Collection).Err(err).
				Msg("reproducción interrumpida, conexión perdida")
			c.setState(storage.StateOfflineQueued)
			return
		}
		c.queueMu.Lock()
		c.queue.remove(m.ID)
		c.queueMu.Unlock()
	}
	c.log.Info().Msg("cola de sincronización drenada")
}

// onReachable trabajo diferido hasta tener conectividad: esquema remoto y
// suscripción al feed de cambios de otros clientes.
func (c *Coordinator) onReachable() {
	c.schemaOnce.Do(func() {
		if err := c.remote.EnsureSchema(context.Background()); err != nil {
			c.log.Warn().Err(err).Msg("preparar esquema remoto")
		}
	})
	c.subsOnce.Do(func() {
		for _, col := range storage.Collections {
			sub, err := c.remote.Subscribe(col, c.onRemoteChange)
			if err != nil {
				c.log.Warn().Str("collection", col).Err(err).Msg("suscribir cambios remotos")
				continue
			}
			c.subs = append(c.subs, sub)
		}
	})
}

// onRemoteChange aplica a Local un cambio hecho por otro cliente. El eco de
// las escrituras propias se descarta por el origen.
func (c *Coordinator) onRemoteChange(ev storage.ChangeEvent) {
	if ev.Origin == c.remote.InstanceID() {
		return
	}
	if err := c.local.ApplyChange(ev); err != nil {
		c.log.Warn().Str("collection", ev.Collection).Str("entity", ev.EntityID).Err(err).
			Msg("aplicar cambio remoto a local")
	}
}

func (c *Coordinator) enqueue(m storage.Mutation) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.queue.enqueue(m)
}

func (c *Coordinator) queueLength() int {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.queue.length()
}

func (c *Coordinator) currentState() storage.SyncState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s storage.SyncState) {
	c.stateMu.Lock()
	if c.state != s {
		c.log.Debug().Str("from", string(c.state)).Str("to", string(s)).Msg("transición de estado de sync")
	}
	c.state = s
	c.stateMu.Unlock()
}
