package attachments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	a, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "note.txt", a.Name)
	assert.Contains(t, a.MediaType, "text/plain")
	assert.Equal(t, []byte("hello"), a.Data)
}

func TestLoadFile_SniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.unknownext")
	// Minimal PNG signature.
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n00000000"), 0o600))

	a, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", a.MediaType)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "ghost.txt"))
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(first, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("b"), 0o600))

	out, err := LoadFiles([]string{first, second})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a.txt", out[0].Name)

	out, err = LoadFiles(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = LoadFiles([]string{first, filepath.Join(dir, "ghost")})
	assert.Error(t, err)
}
