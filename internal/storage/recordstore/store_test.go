package recordstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newStore(t *testing.T) (*recordstore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := recordstore.New(dir, logger.Nop())
	require.NoError(t, err)
	return store, dir
}

// ──────────────────────────────────────────────────────────────────────────────
// Apertura del almacén
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_CreaDirectorio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "anidado", "data")
	_, err := recordstore.New(dir, logger.Nop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// Si el medio no es escribible, la construcción falla de inmediato con
// ErrStorageUnavailable en lugar de fallar operación por operación.
func TestNew_MedioNoEscribible_RetornaStorageUnavailable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignora los permisos del directorio")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	defer os.Chmod(dir, 0o755)

	_, err := recordstore.New(filepath.Join(dir, "data"), logger.Nop())
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable),
		"medio de solo lectura debe reportar ErrStorageUnavailable")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura y escritura
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteRead_Roundtrip(t *testing.T) {
	store, _ := newStore(t)

	in := []doc{{ID: "1", Name: "uno"}, {ID: "2", Name: "dos"}}
	require.NoError(t, store.WriteCollection("docs", in))

	out := []doc{}
	store.ReadCollection("docs", &out)
	assert.Equal(t, in, out)
}

// Colección ausente: out queda intacto, sin error.
func TestRead_ColeccionAusente_QuedaVacia(t *testing.T) {
	store, _ := newStore(t)

	out := []doc{}
	store.ReadCollection("nunca-escrita", &out)
	assert.Empty(t, out)
}

// Contenido corrupto se trata como colección vacía, nunca como error.
func TestRead_ContenidoCorrupto_QuedaVacia(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs.json"), []byte("{esto no es json"), 0o644))

	out := []doc{}
	store.ReadCollection("docs", &out)
	assert.Empty(t, out)
}

func TestWrite_NombreInvalido_RetornaValidation(t *testing.T) {
	store, _ := newStore(t)

	err := store.WriteCollection("../escape", []doc{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// ──────────────────────────────────────────────────────────────────────────────
// Exists / Delete / Names
// ──────────────────────────────────────────────────────────────────────────────

func TestExistsYDelete(t *testing.T) {
	store, _ := newStore(t)

	assert.False(t, store.Exists("docs"))
	require.NoError(t, store.WriteCollection("docs", []doc{{ID: "1"}}))
	assert.True(t, store.Exists("docs"))

	require.NoError(t, store.Delete("docs"))
	assert.False(t, store.Exists("docs"))

	// Borrar una colección ausente no es error.
	assert.NoError(t, store.Delete("docs"))
}

func TestNames_ListaColeccionesPersistidas(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.WriteCollection("products", []doc{}))
	require.NoError(t, store.WriteCollection("orders", []doc{}))

	names := store.Names()
	assert.ElementsMatch(t, []string{"products", "orders"}, names)
}

func TestReadRaw(t *testing.T) {
	store, _ := newStore(t)

	_, ok := store.ReadRaw("docs")
	assert.False(t, ok)

	require.NoError(t, store.WriteRaw("docs", []byte(`[{"id":"1"}]`)))
	raw, ok := store.ReadRaw("docs")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(raw))
}

func TestSizeBytes_CreceConLosDatos(t *testing.T) {
	store, _ := newStore(t)

	base := store.SizeBytes()
	require.NoError(t, store.WriteCollection("docs", []doc{{ID: "1", Name: "uno"}}))
	assert.Greater(t, store.SizeBytes(), base)
}
