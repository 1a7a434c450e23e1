// Package storage keeps the history of updatedb runs in a small pebble
// store keyed by KSUID, so iteration order is creation order.
package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/goccy/go-json"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/locatew/pkg/stats"
)

// DefaultDirName is the history directory in the temp directory
const DefaultDirName = "locate.history"

// ErrNotFound is returned by Get for unknown run IDs
var ErrNotFound = errors.New("run not found")

// DefaultPath returns the history location used when none is configured
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultDirName)
}

// History is the run history store
type History struct {
	db *pebble.DB
}

// OpenHistory opens or creates the history store at path
func OpenHistory(path string) (*History, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open history %s", path)
	}
	return &History{db: db}, nil
}

// Append records s under a new run ID, which is also stored in s.RunID.
func (h *History) Append(s *stats.Statistics) (ksuid.KSUID, error) {
	id := ksuid.New()
	s.RunID = id.String()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = id.Time()
	}

	data, err := marshalRun(s)
	if err != nil {
		return ksuid.Nil, err
	}
	if err := h.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return ksuid.Nil, errors.Wrap(err, "store run")
	}
	return id, nil
}

func marshalRun(s *stats.Statistics) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal run")
	}
	return data, nil
}

// Get returns one run
func (h *History) Get(id ksuid.KSUID) (*stats.Statistics, error) {
	data, closer, err := h.db.Get(id.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Mark(errors.Newf("run %s", id), ErrNotFound)
		}
		return nil, errors.Wrapf(err, "read run %s", id)
	}
	defer closer.Close()

	var s stats.Statistics
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", id)
	}
	return &s, nil
}

// Recent returns up to n runs, newest first
func (h *History) Recent(n int) ([]stats.Statistics, error) {
	if n <= 0 {
		return nil, nil
	}

	iter, err := h.db.NewIter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "open history iterator")
	}
	defer iter.Close()

	var runs []stats.Statistics
	for valid := iter.Last(); valid && len(runs) < n; valid = iter.Prev() {
		var s stats.Statistics
		if err := json.Unmarshal(iter.Value(), &s); err != nil {
			return nil, errors.Wrapf(err, "decode run %x", iter.Key())
		}
		runs = append(runs, s)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate history")
	}
	return runs, nil
}

// Close closes the store
func (h *History) Close() error {
	return h.db.Close()
}

// HistoryFile reads a history store without holding it open, so updatedb
// can append runs while a server is reading them.
type HistoryFile struct {
	Path string

	mu sync.Mutex
}

// Recent opens the store, returns up to n runs newest first, and closes it.
// A store that does not exist yet has no runs.
func (f *HistoryFile) Recent(n int) ([]stats.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.Path); os.IsNotExist(err) {
		return nil, nil
	}
	h, err := OpenHistory(f.Path)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.Recent(n)
}
