package uploads

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("media", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["media"][0]
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 1<<20)
	require.NoError(t, err)

	saved, err := store.Save(fileHeader(t, "pic.bin", pngHeader), false)
	require.NoError(t, err)
	assert.Equal(t, KindImage, saved.Kind)
	assert.Equal(t, "image/png", saved.MIME)
	assert.True(t, strings.HasPrefix(saved.URL, URLPrefix))
	assert.True(t, strings.HasSuffix(saved.URL, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(saved.URL, URLPrefix)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Remove(saved.URL))
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(saved.URL, URLPrefix)))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsText(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	_, err = store.Save(fileHeader(t, "notes.png", []byte("just some text")), true)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveTooLarge(t *testing.T) {
	store, err := NewStore(t.TempDir(), 8)
	require.NoError(t, err)

	_, err = store.Save(fileHeader(t, "pic.png", pngHeader), false)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRemoveIgnoresForeignPaths(t *testing.T) {
	store, err := NewStore(t.TempDir(), 0)
	require.NoError(t, err)

	assert.NoError(t, store.Remove("https://example.com/a.png"))
	assert.NoError(t, store.Remove(URLPrefix+"missing.png"))
}
