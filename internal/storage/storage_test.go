package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newStore(t *testing.T, maxBytes int64) *LocalImageStore {
	t.Helper()
	store, err := NewLocalImageStore(filepath.Join(t.TempDir(), "uploads"), "/uploads/", maxBytes)
	require.NoError(t, err)
	return store
}

func assertFileError(t *testing.T, err error) {
	t.Helper()
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
	assert.Equal(t, "file", validationErr.Fields[0].Field)
}

func TestSaveAndDeletePNG(t *testing.T) {
	store := newStore(t, 1<<20)

	url, err := store.Save(context.Background(), "margherita.PNG", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(store.Dir, strings.TrimPrefix(url, "/uploads/"))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsWrongExtension(t *testing.T) {
	store := newStore(t, 1<<20)
	_, err := store.Save(context.Background(), "menu.gif", bytes.NewReader(pngBytes(t)))
	assertFileError(t, err)
}

func TestSaveRejectsContentMismatch(t *testing.T) {
	store := newStore(t, 1<<20)
	_, err := store.Save(context.Background(), "pizza.jpg", strings.NewReader("definitely not a jpeg"))
	assertFileError(t, err)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	data := pngBytes(t)
	store := newStore(t, int64(len(data)-1))
	_, err := store.Save(context.Background(), "pizza.png", bytes.NewReader(data))
	assertFileError(t, err)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteIgnoresForeignURLs(t *testing.T) {
	store := newStore(t, 1<<20)
	assert.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/pizza.png"))
	assert.NoError(t, store.Delete(context.Background(), "/uploads/../secret"))
}
