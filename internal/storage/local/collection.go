package local

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
)

// prepareFunc valida una entidad contra su colección antes de persistir.
// isNew distingue create de update (numeración de cotizaciones, etc.).
type prepareFunc[T entity.Record] func(list []T, e T, isNew bool) error

// Collection CRUD genérico sobre una colección del Record Store. El orden de
// la lista es el de inserción; cada operación relee el archivo, así los
// lectores siempre ven el estado persistido más reciente.
type Collection[T entity.Record] struct {
	name    string
	store   *recordstore.Store
	mu      *sync.Mutex
	prepare prepareFunc[T]
}

func newCollection[T entity.Record](name string, store *recordstore.Store, mu *sync.Mutex, prepare prepareFunc[T]) *Collection[T] {
	return &Collection[T]{name: name, store: store, mu: mu, prepare: prepare}
}

// List devuelve la colección completa en orden de inserción.
func (c *Collection[T]) List() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(), nil
}

// GetByID devuelve la entidad o (nil, nil) si no existe.
func (c *Collection[T]) GetByID(id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	for _, e := range c.load() {
		if e.RecordID() == id {
			return e, nil
		}
	}
	return zero, nil
}

// Create asigna ID si el borrador no trae uno, estampa tiempos, valida contra
// la colección y persiste al final de la lista.
func (c *Collection[T]) Create(e T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	list := c.load()
	if e.RecordID() == "" {
		e.SetRecordID(uuid.NewString())
	}
	e.Touch(time.Now().UTC())
	if c.prepare != nil {
		if err := c.prepare(list, e, true); err != nil {
			return zero, err
		}
	}
	list = append(list, e)
	if err := c.store.WriteCollection(c.name, list); err != nil {
		return zero, err
	}
	return e, nil
}

// Update aplica un merge superficial del patch JSON sobre el registro: los
// campos ausentes se preservan. Un patch vacío no modifica ni reescribe nada
// (el registro almacenado queda byte a byte idéntico).
func (c *Collection[T]) Update(id string, patch []byte) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	list := c.load()
	idx := -1
	for i, e := range list {
		if e.RecordID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zero, domain.ErrNotFound
	}

	if empty, err := emptyPatch(patch); err != nil {
		return zero, fmt.Errorf("%w: patch no es un objeto JSON", domain.ErrValidation)
	} else if empty {
		return list[idx], nil
	}

	e := list[idx]
	if err := json.Unmarshal(patch, e); err != nil {
		return zero, fmt.Errorf("%w: aplicar patch: %v", domain.ErrValidation, err)
	}
	// El ID no es modificable vía patch.
	e.SetRecordID(id)
	e.Touch(time.Now().UTC())
	if c.prepare != nil {
		if err := c.prepare(list, e, false); err != nil {
			return zero, err
		}
	}
	if err := c.store.WriteCollection(c.name, list); err != nil {
		return zero, err
	}
	return e, nil
}

// Delete elimina el registro. Una segunda llamada con el mismo ID retorna
// domain.ErrNotFound: el estado ya cambió.
func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.load()
	for i, e := range list {
		if e.RecordID() == id {
			list = append(list[:i], list[i+1:]...)
			return c.store.WriteCollection(c.name, list)
		}
	}
	return domain.ErrNotFound
}

// applyChange upsert/delete de un documento que llega del feed remoto.
// No pasa por prepare: el remoto ya validó la mutación original.
func (c *Collection[T]) applyChange(kind string, id string, doc json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.load()
	if kind == "deleted" {
		for i, e := range list {
			if e.RecordID() == id {
				list = append(list[:i], list[i+1:]...)
				return c.store.WriteCollection(c.name, list)
			}
		}
		return nil
	}

	var e T
	if err := json.Unmarshal(doc, &e); err != nil {
		return fmt.Errorf("decodificar cambio remoto %s/%s: %w", c.name, id, err)
	}
	e.SetRecordID(id)
	for i, cur := range list {
		if cur.RecordID() == id {
			list[i] = e
			return c.store.WriteCollection(c.name, list)
		}
	}
	list = append(list, e)
	return c.store.WriteCollection(c.name, list)
}

// count tamaño de la colección sin decodificar entidades completas.
func (c *Collection[T]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.load())
}

func (c *Collection[T]) load() []T {
	list := []T{}
	c.store.ReadCollection(c.name, &list)
	return list
}

// emptyPatch indica si el patch es un objeto JSON sin claves (o nil).
func emptyPatch(patch []byte) (bool, error) {
	if len(patch) == 0 {
		return true, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(patch, &m); err != nil {
		return false, err
	}
	return len(m) == 0, nil
}
