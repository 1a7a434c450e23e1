// Package walk produces the path list that updatedb compresses: every file
// and directory under a set of roots, depth first, in lexical order.
package walk

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// Entry is one walked path
type Entry struct {
	Path  string
	IsDir bool
}

// Line renders the entry as stored in the path list: directories end with
// exactly one separator.
func (e Entry) Line(sep byte) string {
	if e.IsDir && !strings.HasSuffix(e.Path, string(sep)) {
		return e.Path + string(sep)
	}
	return e.Path
}

// Counts summarises a walk
type Counts struct {
	Dirs      int64
	Files     int64
	FileBytes int64 // Bytes in file paths; directory paths are not counted
}

// Add accumulates o into c
func (c *Counts) Add(o Counts) {
	c.Dirs += o.Dirs
	c.Files += o.Files
	c.FileBytes += o.FileBytes
}

// Options configures a Walker
type Options struct {
	Excludes    []string       // gitignore-style patterns, relative to each root
	ExcludeFile string         // Optional file of gitignore-style patterns
	Separator   byte           // Separator appended to directories (0 = OS separator)
	Workers     int            // Roots walked at once by WalkAll (0 = NumCPU)
	Logger      zerolog.Logger // Receives skipped entries
}

// Walker enumerates file system trees
type Walker struct {
	opts   Options
	ignore *ignore.GitIgnore
}

// New creates a Walker
func New(opts Options) (*Walker, error) {
	if opts.Separator == 0 {
		opts.Separator = os.PathSeparator
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	w := &Walker{opts: opts}
	switch {
	case opts.ExcludeFile != "":
		gi, err := ignore.CompileIgnoreFileAndLines(opts.ExcludeFile, opts.Excludes...)
		if err != nil {
			return nil, errors.Wrapf(err, "read exclude file %s", opts.ExcludeFile)
		}
		w.ignore = gi
	case len(opts.Excludes) > 0:
		w.ignore = ignore.CompileIgnoreLines(opts.Excludes...)
	}
	return w, nil
}

// Walk calls fn for root and everything below it, depth first in lexical
// order. Entries that cannot be read, or whose path contains a line break,
// are logged and skipped. An error from fn
// or a canceled context stops the walk.
func (w *Walker) Walk(ctx context.Context, root string, fn func(Entry) error) (Counts, error) {
	var counts Counts
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.opts.Logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		isDir := d.IsDir()
		if path != root && w.excluded(root, path, isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		// The path list is newline separated.
		if strings.ContainsAny(path, "\r\n") {
			w.opts.Logger.Debug().Str("path", path).Msg("skipping path containing a line break")
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		if err := fn(Entry{Path: path, IsDir: isDir}); err != nil {
			return err
		}
		if isDir {
			counts.Dirs++
		} else {
			counts.Files++
			counts.FileBytes += int64(len(path))
		}
		return nil
	})
	return counts, err
}

func (w *Walker) excluded(root, path string, isDir bool) bool {
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return w.ignore.MatchesPath(rel)
}

// WalkAll walks every root and writes the path list to out, one entry per
// line. Roots are walked concurrently, each into its own spool file, and the
// spools are copied to out in root order so the list stays depth first.
func (w *Walker) WalkAll(ctx context.Context, roots []string, out io.Writer) (Counts, error) {
	spools := make([]*os.File, len(roots))
	counts := make([]Counts, len(roots))
	defer func() {
		for _, f := range spools {
			if f != nil {
				f.Close()
				os.Remove(f.Name())
			}
		}
	}()

	p := pool.New().WithMaxGoroutines(w.opts.Workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, root := range roots {
		p.Go(func(ctx context.Context) error {
			f, err := os.CreateTemp("", "locatew-walk-*.txt")
			if err != nil {
				return errors.Wrap(err, "create spool file")
			}
			spools[i] = f

			bw := bufio.NewWriter(f)
			sep := w.opts.Separator
			c, err := w.Walk(ctx, root, func(e Entry) error {
				if _, err := bw.WriteString(e.Line(sep)); err != nil {
					return err
				}
				return bw.WriteByte('\n')
			})
			if err != nil {
				return errors.Wrapf(err, "walk %s", root)
			}
			counts[i] = c

			w.opts.Logger.Info().
				Str("root", root).
				Int64("dirs", c.Dirs).
				Int64("files", c.Files).
				Msg("walked root")
			return bw.Flush()
		})
	}
	if err := p.Wait(); err != nil {
		return Counts{}, err
	}

	var total Counts
	for i, f := range spools {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return Counts{}, errors.Wrap(err, "rewind spool file")
		}
		if _, err := io.Copy(out, f); err != nil {
			return Counts{}, errors.Wrap(err, "write path list")
		}
		total.Add(counts[i])
	}
	return total, nil
}
