package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriter_WriteRequiresDirectory(t *testing.T) {
	w := NewMemoryWriter()

	err := w.WriteFile("out/table/t1.sql", []byte("x"))
	assert.Error(t, err)

	require.NoError(t, w.MkdirAll("out/table"))
	assert.NoError(t, w.WriteFile("out/table/t1.sql", []byte("x")))
}

func TestMemoryWriter_MkdirAllCreatesParents(t *testing.T) {
	w := NewMemoryWriter()

	require.NoError(t, w.MkdirAll("a/b/c"))

	assert.True(t, w.Exists("a"))
	assert.True(t, w.Exists("a/b"))
	assert.True(t, w.Exists("a/b/c"))
	assert.False(t, w.Exists("a/b/c/d"))
}

func TestMemoryWriter_RemoveAll(t *testing.T) {
	w := NewMemoryWriter()
	require.NoError(t, w.MkdirAll("out/table"))
	require.NoError(t, w.WriteFile("out/table/t1.sql", []byte("x")))
	require.NoError(t, w.MkdirAll("keep"))
	require.NoError(t, w.WriteFile("keep/f.sql", []byte("y")))

	require.NoError(t, w.RemoveAll("out"))

	assert.False(t, w.Exists("out"))
	assert.False(t, w.Exists("out/table/t1.sql"))
	assert.True(t, w.Exists("keep/f.sql"))
	assert.Equal(t, []string{"keep/f.sql"}, w.Paths())
}

func TestMemoryWriter_ContentIsCopied(t *testing.T) {
	w := NewMemoryWriter()
	require.NoError(t, w.MkdirAll("d"))

	buf := []byte("original")
	require.NoError(t, w.WriteFile("d/f", buf))
	buf[0] = 'X'

	content, ok := w.ReadFile("d/f")
	require.True(t, ok)
	assert.Equal(t, "original", string(content))
}

func TestMemoryWriter_PathsAreNormalized(t *testing.T) {
	w := NewMemoryWriter()
	require.NoError(t, w.MkdirAll("a//b/"))
	require.NoError(t, w.WriteFile("a//b/f", []byte("x")))

	assert.True(t, w.Exists("a/b/f"))
	content, ok := w.ReadFile("a/b/./f")
	require.True(t, ok)
	assert.Equal(t, "x", string(content))
}
