package filestore

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	fs, err := New(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestSaveAndOpen(t *testing.T) {
	fs := newTestStore(t)

	name, err := fs.Save(strings.NewReader("certificate bytes"), "income.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_income.pdf"), "stored name %q", name)
	assert.True(t, fs.Exists(name))

	f, err := fs.Open(name)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "certificate bytes", string(data))
}

func TestSaveCollisionFree(t *testing.T) {
	fs := newTestStore(t)

	first, err := fs.Save(strings.NewReader("one"), "income.pdf")
	require.NoError(t, err)
	second, err := fs.Save(strings.NewReader("two"), "income.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, fs.Exists(first))
	assert.True(t, fs.Exists(second))
}

func TestSaveStripsPathComponents(t *testing.T) {
	fs := newTestStore(t)

	name, err := fs.Save(strings.NewReader("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_passwd"), "stored name %q", name)
	assert.NotContains(t, name, "/")
}

func TestDelete(t *testing.T) {
	fs := newTestStore(t)

	name, err := fs.Save(strings.NewReader("x"), "doc.pdf")
	require.NoError(t, err)

	require.NoError(t, fs.Delete(name))
	assert.False(t, fs.Exists(name))

	// deleting an already-removed file is not an error
	require.NoError(t, fs.Delete(name))

	_, err = fs.Open(name)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOriginalName(t *testing.T) {
	tests := []struct {
		stored string
		want   string
	}{
		{"5f0c1e1a-1111-2222-3333-444455556666_income.pdf", "income.pdf"},
		{"token_my_tax_return.pdf", "my_tax_return.pdf"},
		{"noseparator", "noseparator"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OriginalName(tt.stored))
	}
}
