package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragbot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "cache")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	backend, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
	assert.Nil(t, backend)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestWithTx_Closed(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, backend.DropPrefix([]byte("x")), storage.ErrStorageClosed)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k:1"), []byte("v")); err != nil {
			return err
		}
		return assert.AnError
	}, true)
	assert.ErrorIs(t, err, assert.AnError)

	count, err := backend.CountPrefix([]byte("k:"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountAndDropPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range []string{"a:1", "a:2", "b:1"} {
			if err := tx.Set([]byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	}, true)
	require.NoError(t, err)

	count, err := backend.CountPrefix([]byte("a:"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, backend.DropPrefix([]byte("a:")))

	count, err = backend.CountPrefix([]byte("a:"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = backend.CountPrefix([]byte("b:"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
