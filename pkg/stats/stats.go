// Package stats reads and writes the statistics sidecar that updatedb leaves
// next to the database.
package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
)

// DefaultFileName is the sidecar's name in the temp directory
const DefaultFileName = "locate.txt"

// ErrMissing is returned by Load when no sidecar exists
var ErrMissing = errors.New("statistics file not found")

// Statistics describes one updatedb run
type Statistics struct {
	Dirs       uint64 `json:"dirs"`
	Files      uint64 `json:"files"`
	FilesBytes uint64 `json:"files_bytes"`
	DBSize     uint64 `json:"db_size"`
	Elapsed    uint64 `json:"elapsed"` // Seconds

	Checksum  string    `json:"checksum,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultPath returns the sidecar location used when none is configured
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// SetElapsed records d rounded down to whole seconds
func (s *Statistics) SetElapsed(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.Elapsed = uint64(d / time.Second)
}

// Save writes the sidecar as JSON
func (s *Statistics) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal statistics")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write statistics %s", path)
	}
	return nil
}

// Load reads a sidecar written by Save. Missing keys read as zero.
func Load(path string) (*Statistics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Mark(errors.Wrapf(err, "read statistics %s", path), ErrMissing)
		}
		return nil, errors.Wrapf(err, "read statistics %s", path)
	}

	var s Statistics
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse statistics %s", path)
	}
	return &s, nil
}

// Report prints the human readable summary shown by locate --statistics
func (s *Statistics) Report(w io.Writer, name string) error {
	_, err := fmt.Fprintf(w,
		"Database %s:\n"+
			"      %s directories\n"+
			"      %s files\n"+
			"      %s bytes in file names\n"+
			"      %s bytes used to store database\n"+
			"      %d min %d sec to build the database\n",
		name,
		humanize.Comma(int64(s.Dirs)),
		humanize.Comma(int64(s.Files)),
		humanize.Comma(int64(s.FilesBytes)),
		humanize.Comma(int64(s.DBSize)),
		s.Elapsed/60, s.Elapsed%60,
	)
	return err
}
