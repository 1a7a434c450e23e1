package store

import (
	"bufio"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/locatew/pkg/codec"
)

// DBReader provides sequential access to the paths in a database
type DBReader struct {
	file   *os.File
	config DBReaderConfig
}

// NewDBReader opens the database at config.FilePath
func NewDBReader(config DBReaderConfig) (*DBReader, error) {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}

	file, err := os.Open(config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Mark(errors.Wrapf(err, "open %s", config.FilePath), ErrDatabaseMissing)
		}
		return nil, errors.Wrap(err, "open database")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "stat database")
	}
	if info.IsDir() {
		file.Close()
		return nil, errors.Mark(errors.Newf("%s is a directory", config.FilePath), ErrDatabaseMissing)
	}

	return &DBReader{file: file, config: config}, nil
}

// Iterator returns a decoder over the database. Only one iterator may be
// used per reader; the reader owns the file position.
func (r *DBReader) Iterator() *codec.Decoder {
	return codec.NewDecoder(bufio.NewReaderSize(r.file, r.config.BufferSize))
}

// Size returns the size of the database file in bytes
func (r *DBReader) Size() (int64, error) {
	info, err := r.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat database")
	}
	return info.Size(), nil
}

// Close closes the database file
func (r *DBReader) Close() error {
	return r.file.Close()
}
