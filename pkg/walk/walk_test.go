package walk

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/locatew/pkg/codec"
)

// makeTree creates files (and their parent directories) under a new temp dir
func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	return root
}

func collect(t *testing.T, w *Walker, root string) ([]Entry, Counts) {
	t.Helper()
	var entries []Entry
	counts, err := w.Walk(context.Background(), root, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	return entries, counts
}

func TestEntryLine(t *testing.T) {
	assert.Equal(t, `C:\Users\`, Entry{Path: `C:\Users`, IsDir: true}.Line('\\'))
	assert.Equal(t, `C:\`, Entry{Path: `C:\`, IsDir: true}.Line('\\'))
	assert.Equal(t, `C:\a.txt`, Entry{Path: `C:\a.txt`}.Line('\\'))
	assert.Equal(t, "/tmp/", Entry{Path: "/tmp", IsDir: true}.Line('/'))
}

func TestWalkOrderAndCounts(t *testing.T) {
	root := makeTree(t, "b/two.txt", "a/one.txt", "a/sub/three.txt", "top.txt")

	w, err := New(Options{})
	require.NoError(t, err)
	entries, counts := collect(t, w, root)

	var rel []string
	for _, e := range entries {
		r, err := filepath.Rel(root, e.Path)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{".", "a", "a/one.txt", "a/sub", "a/sub/three.txt", "b", "b/two.txt", "top.txt"}, rel)

	assert.Equal(t, int64(4), counts.Dirs)
	assert.Equal(t, int64(4), counts.Files)

	var fileBytes int64
	for _, e := range entries {
		if !e.IsDir {
			fileBytes += int64(len(e.Path))
		}
	}
	assert.Equal(t, fileBytes, counts.FileBytes)
}

func TestWalkExcludes(t *testing.T) {
	root := makeTree(t, "keep/a.txt", "node_modules/pkg/index.js", "logs/x.log", "logs/keep.txt")

	w, err := New(Options{Excludes: []string{"node_modules/", "*.log"}})
	require.NoError(t, err)
	entries, counts := collect(t, w, root)

	for _, e := range entries {
		assert.NotContains(t, e.Path, "node_modules")
		assert.False(t, strings.HasSuffix(e.Path, ".log"), e.Path)
	}
	assert.Equal(t, int64(2), counts.Files)
	assert.Equal(t, int64(3), counts.Dirs) // root, keep, logs
}

func TestWalkExcludeFile(t *testing.T) {
	root := makeTree(t, "a/skip.tmp", "a/keep.txt")
	excludeFile := filepath.Join(t.TempDir(), "excludes")
	require.NoError(t, os.WriteFile(excludeFile, []byte("# temp files\n*.tmp\n"), 0644))

	w, err := New(Options{ExcludeFile: excludeFile})
	require.NoError(t, err)
	_, counts := collect(t, w, root)
	assert.Equal(t, int64(1), counts.Files)

	_, err = New(Options{ExcludeFile: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestWalkCallbackError(t *testing.T) {
	root := makeTree(t, "a.txt", "b.txt")
	w, err := New(Options{})
	require.NoError(t, err)

	stop := assert.AnError
	calls := 0
	_, err = w.Walk(context.Background(), root, func(Entry) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestWalkCanceled(t *testing.T) {
	root := makeTree(t, "a.txt")
	w, err := New(Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Walk(ctx, root, func(Entry) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkAllKeepsRootOrder(t *testing.T) {
	first := makeTree(t, "z.txt", "dir/y.txt")
	second := makeTree(t, "a.txt")

	w, err := New(Options{Separator: '/', Workers: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	counts, err := w.WalkAll(context.Background(), []string{first, second}, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, first+"/", lines[0])
	assert.Equal(t, filepath.Join(first, "dir")+"/", lines[1])
	assert.Equal(t, filepath.Join(first, "dir", "y.txt"), lines[2])
	assert.Equal(t, filepath.Join(first, "z.txt"), lines[3])
	assert.Equal(t, second+"/", lines[4])
	assert.Equal(t, filepath.Join(second, "a.txt"), lines[5])

	assert.Equal(t, Counts{Dirs: 3, Files: 3, FileBytes: int64(len(lines[2]) + len(lines[3]) + len(lines[5]))}, counts)
}

func TestWalkAllSkipsLineBreaks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file names cannot contain line breaks on windows")
	}
	root := makeTree(t, "evil\nname.txt", "trail\r", "bad\ndir/inner.txt", "ok.txt")

	w, err := New(Options{Separator: '/'})
	require.NoError(t, err)

	var buf bytes.Buffer
	counts, err := w.WalkAll(context.Background(), []string{root}, &buf)
	require.NoError(t, err)

	var lines []string
	src := codec.ScanLines(&buf)
	for src.Next() {
		lines = append(lines, src.Line())
	}
	require.NoError(t, src.Err())

	assert.Equal(t, []string{root + "/", filepath.Join(root, "ok.txt")}, lines)
	assert.Equal(t, int64(1), counts.Dirs)
	assert.Equal(t, int64(1), counts.Files)
}

func TestCountsAdd(t *testing.T) {
	c := Counts{Dirs: 1, Files: 2, FileBytes: 3}
	c.Add(Counts{Dirs: 10, Files: 20, FileBytes: 30})
	assert.Equal(t, Counts{Dirs: 11, Files: 22, FileBytes: 33}, c)
}
