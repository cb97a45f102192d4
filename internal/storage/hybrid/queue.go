package hybrid

import (
	"time"

	"github.com/google/uuid"

	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

// colSyncQueue colección interna del Record Store donde la cola sobrevive reinicios.
const colSyncQueue = "_sync_queue"

// replayQueue cola FIFO durable de mutaciones pendientes de espejo. El mutex
// de la cola evita que un drenado en curso se intercale inconsistentemente con
// nuevos encolados (sin updates perdidos ni doble reproducción).
type replayQueue struct {
	store *recordstore.Store
	log   *logger.Logger

	items []storage.Mutation
}

// newReplayQueue carga la cola persistida (si existe) del Record Store.
func newReplayQueue(store *recordstore.Store, log *logger.Logger) *replayQueue {
	q := &replayQueue{store: store, log: log, items: []storage.Mutation{}}
	store.ReadCollection(colSyncQueue, &q.items)
	if q.items == nil {
		q.items = []storage.Mutation{}
	}
	return q
}

// Los métodos de la cola se llaman con el mutex de cola del coordinador tomado.

func (q *replayQueue) enqueue(m storage.Mutation) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.QueuedAt = time.Now().UTC()
	q.items = append(q.items, m)
	q.persist()
}

// peek primera mutación pendiente sin extraerla.
func (q *replayQueue) peek() (storage.Mutation, bool) {
	if len(q.items) == 0 {
		return storage.Mutation{}, false
	}
	return q.items[0], true
}

// remove extrae la mutación ya aplicada. Se llama después de un Apply exitoso:
// si la conexión cae a mitad de drenado, lo aplicado sale y el resto queda en orden.
func (q *replayQueue) remove(id string) {
	for i, m := range q.items {
		if m.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.persist()
			return
		}
	}
}

func (q *replayQueue) length() int {
	return len(q.items)
}

func (q *replayQueue) persist() {
	if err := q.store.WriteCollection(colSyncQueue, q.items); err != nil {
		// La mutación local ya está aplicada; perder la cola solo retrasa el espejo.
		q.log.Warn().Err(err).Msg("persistir cola de sincronización")
	}
}
