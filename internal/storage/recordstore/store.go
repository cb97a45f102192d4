// Package recordstore implementa el primitivo de persistencia por colección:
// cada colección es un archivo JSON dentro de un directorio de datos. No hay
// validación de negocio aquí, solo codificación segura y E/S al medio físico.
package recordstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Store mapea nombres de colección a archivos JSON bajo un directorio.
// Todas las operaciones son seguras para uso concurrente.
type Store struct {
	dir string
	mu  sync.Mutex
	log *logger.Logger
}

// New abre el almacén sobre dir. La capacidad del medio se verifica una sola
// vez aquí: si el directorio no se puede crear o escribir, falla de inmediato
// con domain.ErrStorageUnavailable en lugar de fallar en cada operación.
func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: crear directorio %s: %v", domain.ErrStorageUnavailable, dir, err)
	}
	probe := filepath.Join(dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return nil, fmt.Errorf("%w: escritura de prueba en %s: %v", domain.ErrStorageUnavailable, dir, err)
	}
	_ = os.Remove(probe)
	return &Store{dir: dir, log: log}, nil
}

// ReadCollection decodifica la colección en out (normalmente un *[]T).
// Clave ausente o contenido corrupto se tratan como colección vacía: se deja
// out sin tocar y se emite una advertencia; nunca se retorna error al llamador.
func (s *Store) ReadCollection(name string, out any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.readLocked(name)
	if !ok {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn().Str("collection", name).Err(err).
			Msg("colección corrupta, se trata como vacía")
	}
}

// WriteCollection serializa v y lo persiste de forma atómica (tmp + rename).
// Un rechazo del medio (cuota, permisos) se reporta como domain.ErrStorageWrite.
func (s *Store) WriteCollection(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializar colección %s: %w", name, err)
	}
	return s.WriteRaw(name, data)
}

// WriteRaw persiste los bytes ya serializados de una colección.
func (s *Store) WriteRaw(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageWrite, name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageWrite, name, err)
	}
	return nil
}

// ReadRaw devuelve los bytes crudos de una colección y si existe.
func (s *Store) ReadRaw(name string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(name)
}

// Exists indica si la colección tiene datos persistidos.
func (s *Store) Exists(name string) bool {
	path, err := s.path(name)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, statErr := os.Stat(path)
	return statErr == nil
}

// Delete elimina la colección del medio. Borrar una colección ausente no es error.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: eliminar %s: %v", domain.ErrStorageWrite, name, err)
	}
	return nil
}

// Names lista las colecciones persistidas.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn().Err(err).Msg("listar colecciones")
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names
}

// SizeBytes tamaño aproximado de todo el almacén en disco.
func (s *Store) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if info, err := e.Info(); err == nil && !e.IsDir() {
			total += info.Size()
		}
	}
	return total
}

func (s *Store) readLocked(name string) (json.RawMessage, bool) {
	path, err := s.path(name)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Str("collection", name).Err(err).Msg("leer colección")
		}
		return nil, false
	}
	return data, true
}

func (s *Store) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: nombre de colección inválido: %q", domain.ErrValidation, name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}
