package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/storage"
)

// prepareFunc valida una entidad contra su colección antes de persistir.
type prepareFunc[T entity.Record] func(list []T, e T, isNew bool) error

// Collection CRUD genérico sobre la tabla de documentos. Misma semántica que
// la colección local; cualquier fallo de transporte se reporta como
// domain.ErrRemoteUnavailable.
type Collection[T entity.Record] struct {
	p       *Provider
	db      Querier // el pool del proveedor; intercambiable por una tx
	name    string
	prepare prepareFunc[T]
}

func newCollection[T entity.Record](p *Provider, name string, prepare prepareFunc[T]) *Collection[T] {
	return &Collection[T]{p: p, db: p.pool, name: name, prepare: prepare}
}

// List devuelve la colección en orden de inserción (seq).
func (c *Collection[T]) List() ([]T, error) {
	ctx, cancel := callCtx()
	defer cancel()
	return c.list(ctx)
}

// GetByID devuelve la entidad o (nil, nil) si no existe.
func (c *Collection[T]) GetByID(id string) (T, error) {
	ctx, cancel := callCtx()
	defer cancel()

	var zero T
	var doc json.RawMessage
	err := c.db.QueryRow(ctx,
		`SELECT doc FROM chabs_records WHERE collection = $1 AND id = $2`,
		c.name, id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, nil
		}
		return zero, wrapRemoteErr(fmt.Errorf("get %s: %w", c.name, err))
	}
	return decodeDoc[T](doc, id)
}

// Create valida contra la colección completa y persiste el documento.
func (c *Collection[T]) Create(e T) (T, error) {
	ctx, cancel := callCtx()
	defer cancel()

	var zero T
	list, err := c.list(ctx)
	if err != nil {
		return zero, err
	}
	if e.RecordID() == "" {
		e.SetRecordID(uuid.NewString())
	}
	e.Touch(time.Now().UTC())
	if c.prepare != nil {
		if err := c.prepare(list, e, true); err != nil {
			return zero, err
		}
	}

	doc, err := json.Marshal(e)
	if err != nil {
		return zero, fmt.Errorf("serializar %s: %w", c.name, err)
	}
	_, err = c.db.Exec(ctx, `
		INSERT INTO chabs_records (collection, id, doc, updated_at)
		VALUES ($1, $2, $3, now())`,
		c.name, e.RecordID(), doc,
	)
	if err != nil {
		return zero, wrapRemoteErr(fmt.Errorf("insert %s: %w", c.name, err))
	}
	c.p.notify(ctx, storage.ChangeEvent{
		Collection: c.name, Kind: storage.ChangeCreated,
		EntityID: e.RecordID(), Doc: doc, Origin: c.p.instanceID,
	})
	return e, nil
}

// Update merge superficial del patch sobre el documento almacenado.
func (c *Collection[T]) Update(id string, patch []byte) (T, error) {
	ctx, cancel := callCtx()
	defer cancel()

	var zero T
	list, err := c.list(ctx)
	if err != nil {
		return zero, err
	}
	var e T
	found := false
	for _, cur := range list {
		if cur.RecordID() == id {
			e = cur
			found = true
			break
		}
	}
	if !found {
		return zero, domain.ErrNotFound
	}

	if empty, err := emptyPatch(patch); err != nil {
		return zero, fmt.Errorf("%w: patch no es un objeto JSON", domain.ErrValidation)
	} else if empty {
		return e, nil
	}

	if err := json.Unmarshal(patch, e); err != nil {
		return zero, fmt.Errorf("%w: aplicar patch: %v", domain.ErrValidation, err)
	}
	e.SetRecordID(id)
	e.Touch(time.Now().UTC())
	if c.prepare != nil {
		if err := c.prepare(list, e, false); err != nil {
			return zero, err
		}
	}

	doc, err := json.Marshal(e)
	if err != nil {
		return zero, fmt.Errorf("serializar %s: %w", c.name, err)
	}
	cmd, err := c.db.Exec(ctx, `
		UPDATE chabs_records SET doc = $3, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		c.name, id, doc,
	)
	if err != nil {
		return zero, wrapRemoteErr(fmt.Errorf("update %s: %w", c.name, err))
	}
	if cmd.RowsAffected() == 0 {
		return zero, domain.ErrNotFound
	}
	c.p.notify(ctx, storage.ChangeEvent{
		Collection: c.name, Kind: storage.ChangeUpdated,
		EntityID: id, Doc: doc, Origin: c.p.instanceID,
	})
	return e, nil
}

// Delete elimina el documento; domain.ErrNotFound si no existe.
func (c *Collection[T]) Delete(id string) error {
	ctx, cancel := callCtx()
	defer cancel()

	cmd, err := c.db.Exec(ctx,
		`DELETE FROM chabs_records WHERE collection = $1 AND id = $2`, c.name, id)
	if err != nil {
		return wrapRemoteErr(fmt.Errorf("delete %s: %w", c.name, err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	c.p.notify(ctx, storage.ChangeEvent{
		Collection: c.name, Kind: storage.ChangeDeleted,
		EntityID: id, Origin: c.p.instanceID,
	})
	return nil
}

func (c *Collection[T]) list(ctx context.Context) ([]T, error) {
	rows, err := c.db.Query(ctx,
		`SELECT id, doc FROM chabs_records WHERE collection = $1 ORDER BY seq`, c.name)
	if err != nil {
		return nil, wrapRemoteErr(fmt.Errorf("list %s: %w", c.name, err))
	}
	defer rows.Close()

	list := []T{}
	for rows.Next() {
		var id string
		var doc json.RawMessage
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, wrapRemoteErr(fmt.Errorf("scan %s: %w", c.name, err))
		}
		e, err := decodeDoc[T](doc, id)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRemoteErr(err)
	}
	return list, nil
}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

func decodeDoc[T entity.Record](doc json.RawMessage, id string) (T, error) {
	var e T
	if err := json.Unmarshal(doc, &e); err != nil {
		var zero T
		return zero, fmt.Errorf("decodificar documento %s: %w", id, err)
	}
	e.SetRecordID(id)
	return e, nil
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
