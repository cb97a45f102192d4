package hybrid

import (
	"encoding/json"

	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
	"github.com/chabs-app/chabs-api/internal/storage"
)

// mirroredRepo envuelve un repositorio local y espeja cada mutación exitosa a
// través del coordinador. Las lecturas nunca consultan Remote: el lector ve
// siempre el estado local más reciente, incluidas mutaciones sin sincronizar.
// Los errores de negocio de Local llegan al llamador sin transformar.
type mirroredRepo[T entity.Record] struct {
	collection string
	local      repository.Repository[T]
	c          *Coordinator
}

func mirrored[T entity.Record](c *Coordinator, collection string, local repository.Repository[T]) mirroredRepo[T] {
	return mirroredRepo[T]{collection: collection, local: local, c: c}
}

func (r mirroredRepo[T]) List() ([]T, error) {
	return r.local.List()
}

func (r mirroredRepo[T]) GetByID(id string) (T, error) {
	return r.local.GetByID(id)
}

func (r mirroredRepo[T]) Create(e T) (T, error) {
	out, err := r.local.Create(e)
	if err != nil {
		return out, err
	}
	r.c.mirror(r.mutation(storage.ChangeCreated, out.RecordID(), out))
	return out, nil
}

func (r mirroredRepo[T]) Update(id string, patch []byte) (T, error) {
	out, err := r.local.Update(id, patch)
	if err != nil {
		return out, err
	}
	// Se espeja el documento completo resultante, no el patch: Local es autoritativo.
	r.c.mirror(r.mutation(storage.ChangeUpdated, id, out))
	return out, nil
}

func (r mirroredRepo[T]) Delete(id string) error {
	if err := r.local.Delete(id); err != nil {
		return err
	}
	r.c.mirror(storage.Mutation{Collection: r.collection, Kind: storage.ChangeDeleted, EntityID: id})
	return nil
}

func (r mirroredRepo[T]) mutation(kind storage.ChangeKind, id string, e T) storage.Mutation {
	doc, err := json.Marshal(e)
	if err != nil {
		r.c.log.Warn().Str("collection", r.collection).Str("entity", id).Err(err).
			Msg("serializar documento para espejo")
	}
	return storage.Mutation{Collection: r.collection, Kind: kind, EntityID: id, Doc: doc}
}
