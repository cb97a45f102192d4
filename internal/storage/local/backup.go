package local

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/storage"
)

// SchemaVersion versión del formato de respaldo/export. importAll y
// restoreBackup rechazan cualquier otra versión en lugar de adivinar una
// migración.
const SchemaVersion = "1"

// maxBackups respaldos retenidos; al crear el sexto se expulsa el más antiguo.
const maxBackups = 5

// Archive instantánea de todas las colecciones. Es el mismo formato para
// respaldos internos y para export/import descargable por el usuario.
type Archive struct {
	SchemaVersion string                     `json:"schema_version"`
	CreatedAt     time.Time                  `json:"created_at"`
	Collections   map[string]json.RawMessage `json:"collections"`
	Counters      map[string]int64           `json:"counters,omitempty"`
}

// BackupHandle referencia opaca a un respaldo puntual.
type BackupHandle struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int       `json:"size_bytes"`
}

// Stats conteos por colección y tamaño aproximado del almacén.
type Stats struct {
	PerCollection map[string]int `json:"per_collection"`
	ApproxBytes   int64          `json:"approx_bytes"`
	Backups       int            `json:"backups"`
}

// CreateBackup congela todas las colecciones en un archivo con marca de
// tiempo. Se retienen como máximo 5 respaldos; el más antiguo se expulsa
// primero (FIFO).
func (p *Provider) CreateBackup() (*BackupHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	archive := p.snapshotLocked()
	data, err := json.Marshal(archive)
	if err != nil {
		return nil, fmt.Errorf("serializar respaldo: %w", err)
	}

	handle := BackupHandle{
		ID:        uuid.NewString(),
		CreatedAt: archive.CreatedAt,
		SizeBytes: len(data),
	}
	if err := p.store.WriteRaw(backupKeyPrefix+handle.ID, data); err != nil {
		return nil, err
	}

	index := p.backupIndexLocked()
	index = append(index, handle)
	for len(index) > maxBackups {
		evicted := index[0]
		index = index[1:]
		if err := p.store.Delete(backupKeyPrefix + evicted.ID); err != nil {
			p.log.Warn().Str("backup", evicted.ID).Err(err).Msg("expulsar respaldo antiguo")
		}
	}
	if err := p.store.WriteCollection(colBackupsIndex, index); err != nil {
		return nil, err
	}

	p.log.Info().Str("backup", handle.ID).Int("size_bytes", handle.SizeBytes).Msg("respaldo creado")
	return &handle, nil
}

// ListBackups respaldos disponibles, del más antiguo al más reciente.
func (p *Provider) ListBackups() []BackupHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backupIndexLocked()
}

// RestoreBackup reemplaza todas las colecciones con el contenido del respaldo.
// Es todo-o-nada: el archivo completo se valida antes de tocar ninguna
// colección; un respaldo malformado o de otra versión de esquema retorna
// domain.ErrInvalidBackup sin cambio parcial de estado.
func (p *Provider) RestoreBackup(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok := p.store.ReadRaw(backupKeyPrefix + id)
	if !ok {
		return domain.ErrNotFound
	}
	return p.applyArchiveLocked(data)
}

// ExportAll exporta todo el sistema en un solo documento JSON descargable.
func (p *Provider) ExportAll() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.MarshalIndent(p.snapshotLocked(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializar export: %w", err)
	}
	return data, nil
}

// ImportAll reemplaza el sistema completo con un blob producido por ExportAll.
// Misma validación todo-o-nada que RestoreBackup.
func (p *Provider) ImportAll(blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyArchiveLocked(blob)
}

// Stats conteos por colección y tamaño aproximado en bytes del medio.
func (p *Provider) Stats() Stats {
	counts := map[string]int{
		storage.ColProducts:        p.products.count(),
		storage.ColCustomers:       p.customers.count(),
		storage.ColSuppliers:       p.suppliers.count(),
		storage.ColOrders:          p.orders.count(),
		storage.ColQuotations:      p.quotations.count(),
		storage.ColUsers:           p.users.count(),
		storage.ColAutomationRules: p.rules.count(),
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		PerCollection: counts,
		ApproxBytes:   p.store.SizeBytes(),
		Backups:       len(p.backupIndexLocked()),
	}
}

func (p *Provider) snapshotLocked() Archive {
	archive := Archive{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Collections:   make(map[string]json.RawMessage, len(storage.Collections)),
		Counters:      map[string]int64{},
	}
	for _, name := range storage.Collections {
		if raw, ok := p.store.ReadRaw(name); ok {
			archive.Collections[name] = raw
		} else {
			archive.Collections[name] = json.RawMessage("[]")
		}
	}
	p.store.ReadCollection(colCounters, &archive.Counters)
	return archive
}

// priorContent contenido de una colección antes de reemplazarla, para poder
// revertir una restauración interrumpida por el medio.
type priorContent struct {
	data    json.RawMessage
	existed bool
}

// applyArchiveLocked valida por completo y después escribe. Todo-o-nada en
// ambas fases: un archivo inválido no toca nada, y si el medio rechaza una
// escritura a mitad de camino las colecciones ya reemplazadas se revierten a
// su contenido previo.
func (p *Provider) applyArchiveLocked(data []byte) error {
	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}
	if archive.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: schema_version desconocida: %q", domain.ErrInvalidBackup, archive.SchemaVersion)
	}
	for name, raw := range archive.Collections {
		var probe []json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("%w: colección %s no es un arreglo JSON", domain.ErrInvalidBackup, name)
		}
	}

	if archive.Counters == nil {
		archive.Counters = map[string]int64{}
	}
	countersRaw, err := json.Marshal(archive.Counters)
	if err != nil {
		return fmt.Errorf("serializar contadores: %w", err)
	}

	targets := make([]string, 0, len(storage.Collections)+1)
	targets = append(targets, storage.Collections...)
	targets = append(targets, colCounters)

	payload := func(name string) json.RawMessage {
		if name == colCounters {
			return countersRaw
		}
		if raw, ok := archive.Collections[name]; ok {
			return raw
		}
		return json.RawMessage("[]")
	}

	prior := make(map[string]priorContent, len(targets))
	written := make([]string, 0, len(targets))
	for _, name := range targets {
		raw, ok := p.store.ReadRaw(name)
		prior[name] = priorContent{data: raw, existed: ok}
		if err := p.store.WriteRaw(name, payload(name)); err != nil {
			p.rollbackLocked(prior, written)
			return err
		}
		written = append(written, name)
	}

	p.log.Info().Time("backup_created_at", archive.CreatedAt).Msg("colecciones restauradas desde respaldo")
	return nil
}

// rollbackLocked devuelve las colecciones ya reemplazadas a su contenido
// previo. Mejor esfuerzo: si el medio también rechaza la reversión solo queda
// registrarlo.
func (p *Provider) rollbackLocked(prior map[string]priorContent, written []string) {
	for _, name := range written {
		prev := prior[name]
		var err error
		if prev.existed {
			err = p.store.WriteRaw(name, prev.data)
		} else {
			err = p.store.Delete(name)
		}
		if err != nil {
			p.log.Error().Str("collection", name).Err(err).Msg("revertir restauración interrumpida")
		}
	}
	p.log.Warn().Int("reverted", len(written)).Msg("restauración interrumpida por el medio, estado previo repuesto")
}

func (p *Provider) backupIndexLocked() []BackupHandle {
	index := []BackupHandle{}
	p.store.ReadCollection(colBackupsIndex, &index)
	return index
}
