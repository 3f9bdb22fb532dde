package diffdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCompareClassifiesFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, src, "same.txt", "identical\n")
	writeFile(t, dst, "same.txt", "identical\n")
	writeFile(t, src, "new.txt", "only in source\n")
	writeFile(t, src, "changed.txt", "old body\n")
	writeFile(t, dst, "changed.txt", "new body\n")
	writeFile(t, dst, "gone.txt", "only in dest\n")
	writeFile(t, src, "sub/nested.txt", "nested\n")

	entries, err := NewEngine().Compare(src, dst, nil)
	require.NoError(t, err)

	got := map[string]Status{}
	for _, e := range entries {
		got[e.Path] = e.Status
	}
	require.Equal(t, map[string]Status{
		"new.txt":        Added,
		"changed.txt":    Modified,
		"gone.txt":       Deleted,
		"sub/nested.txt": Added,
	}, got)

	// Sorted by relative path.
	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].Path, entries[i].Path)
	}
}

func TestCompareSkipsExcluded(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, src, ".git/config", "vcs\n")
	writeFile(t, src, "node_modules/pkg/index.js", "dep\n")
	writeFile(t, src, "notes.swp", "swap\n")
	writeFile(t, src, "keep.txt", "keep\n")
	writeFile(t, src, "secret.txt", "hidden\n")

	entries, err := NewEngine().Compare(src, dst, []string{"secret"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "keep.txt", entries[0].Path)
}

func TestCompareMissingRoots(t *testing.T) {
	dst := t.TempDir()
	writeFile(t, dst, "orphan.txt", "x\n")

	entries, err := NewEngine().Compare(filepath.Join(dst, "nope"), dst, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, Deleted, entries[0].Status)
}

func TestExcludedPatterns(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		path string
		want bool
	}{
		{"src/main.go", false},
		{".git/HEAD", true},
		{"a/b/.DS_Store", true},
		{"file.swp", true},
		{"backup~", true},
		{"NODE_MODULES/x", true},
		{"targets.txt", true}, // substring match, same as "target"
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, e.Excluded(tc.path, nil), tc.path)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one\ntwo\nthree\n")
	writeFile(t, dir, "b.txt", "one\nTWO\nthree\nfour\n")

	added, removed, err := Stats(Entry{
		SourcePath: filepath.Join(dir, "a.txt"),
		DestPath:   filepath.Join(dir, "b.txt"),
	})
	require.NoError(t, err)
	require.Greater(t, added, 0)
	require.Greater(t, removed, 0)
}

func TestStatsMissingFileCountsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one\ntwo\n")

	added, removed, err := Stats(Entry{
		SourcePath: filepath.Join(dir, "a.txt"),
		DestPath:   filepath.Join(dir, "missing.txt"),
	})
	require.NoError(t, err)
	require.Equal(t, 0, added)
	require.Equal(t, 2, removed)
}

func TestLoadLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "unix.txt", "a\nb\nc\n")
	writeFile(t, dir, "crlf.txt", "a\r\nb\r\n")
	writeFile(t, dir, "noeol.txt", "a\nb")
	writeFile(t, dir, "empty.txt", "")

	lines, err := LoadLines(filepath.Join(dir, "unix.txt"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, lines)

	lines, err = LoadLines(filepath.Join(dir, "crlf.txt"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, lines)

	lines, err = LoadLines(filepath.Join(dir, "noeol.txt"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, lines)

	lines, err = LoadLines(filepath.Join(dir, "empty.txt"))
	require.NoError(t, err)
	require.Empty(t, lines)

	lines, err = LoadLines(filepath.Join(dir, "absent.txt"))
	require.NoError(t, err)
	require.Empty(t, lines)
}
