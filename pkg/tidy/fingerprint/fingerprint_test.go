package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestXXHashSameContentSameSum(t *testing.T) {
	a := writeFile(t, "a.txt", []byte("hello"))
	b := writeFile(t, "b.txt", []byte("hello"))

	fpA, err := XXHash(a)
	require.NoError(t, err)
	fpB, err := XXHash(b)
	require.NoError(t, err)

	assert.Equal(t, fpA.Sum, fpB.Sum)
	assert.Equal(t, int64(5), fpA.Size)
	assert.Equal(t, int64(5), fpB.Size)
}

func TestXXHashDifferentContent(t *testing.T) {
	a := writeFile(t, "a.txt", []byte("hello"))
	b := writeFile(t, "b.txt", []byte("world"))

	fpA, err := XXHash(a)
	require.NoError(t, err)
	fpB, err := XXHash(b)
	require.NoError(t, err)

	assert.NotEqual(t, fpA.Sum, fpB.Sum)
}

func TestXXHashEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)

	fp, err := XXHash(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fp.Size)
}

func TestXXHashMissingFile(t *testing.T) {
	_, err := XXHash(filepath.Join(t.TempDir(), "nonexistent"))
	assert.Error(t, err)
}
