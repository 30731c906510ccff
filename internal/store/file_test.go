package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/store"
)

func TestFileBackendMissingKey(t *testing.T) {
	f := store.NewFileBackend(t.TempDir(), false)

	_, err := f.Get(context.Background(), "payments")
	assert.ErrorIs(t, err, store.ErrKeyMissing)
}

func TestFileBackendSetGet(t *testing.T) {
	dir := t.TempDir()
	f := store.NewFileBackend(dir, false)
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "payments", []byte(`["a"]`)))

	data, err := f.Get(ctx, "payments")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(data))

	// One file per key inside the data directory.
	_, err = os.Stat(filepath.Join(dir, "payments.json"))
	assert.NoError(t, err)
}

func TestFileBackendCreatesDataDirOnFirstWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	f := store.NewFileBackend(dir, false)

	require.NoError(t, f.Set(context.Background(), "payments", []byte("[]")))

	_, err := os.Stat(dir)
	assert.NoError(t, err)
}

func TestFileBackendReadOnlyWriteFailsReadsAllowed(t *testing.T) {
	dir := t.TempDir()
	writable := store.NewFileBackend(dir, false)
	ctx := context.Background()
	require.NoError(t, writable.Set(ctx, "payments", []byte(`["a"]`)))

	readOnly := store.NewFileBackend(dir, true)

	err := readOnly.Set(ctx, "payments", []byte(`["b"]`))
	var cfgErr *errs.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	data, err := readOnly.Get(ctx, "payments")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(data))
}
