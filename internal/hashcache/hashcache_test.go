package hashcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFilesSkipsAbstractAndMemoizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	c := New()
	got := c.HashFiles(dir, []string{":test", "a.txt"})
	require.Lenf(t, got, 1, "expected abstract target to be skipped, got %v", got)
	first := got[0]

	// Change the file without invalidating: memoized digest must not change.
	require.NoError(t, os.WriteFile(path, []byte("goodbye"), 0644))
	again := c.HashFiles(dir, []string{"a.txt"})
	require.Equal(t, first, again[0], "expected memoized digest to remain stable before invalidation")

	c.Invalidate(path)
	fresh := c.HashFiles(dir, []string{"a.txt"})
	require.NotEqual(t, first, fresh[0], "expected digest to change after invalidation and content change")
}

func TestHashUnreadableFileYieldsPlaceholder(t *testing.T) {
	c := New()
	got := c.HashFiles(t.TempDir(), []string{"does-not-exist.txt"})
	require.Equal(t, []string{"path:x"}, got)
}

func TestDigestIsPathPrefixed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	got := digest(path)
	require.True(t, len(got) >= len("path:") && got[:5] == "path:", "expected digest to be path:-prefixed, got %q", got)
}
