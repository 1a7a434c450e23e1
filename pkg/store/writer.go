package store

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/xxh3"

	"github.com/ssargent/locatew/pkg/codec"
)

// DBWriter builds a database in a temporary file next to its final path and
// moves it into place on Commit, so readers never see a partial database.
type DBWriter struct {
	file    *os.File
	writer  *bufio.Writer
	out     io.Writer
	hash    *xxh3.Hasher
	config  DBWriterConfig
	tmpPath string
	offset  int64 // Bytes written so far
	lines   int
	used    bool
	closed  bool
}

// NewDBWriter creates the temporary file for a new database
func NewDBWriter(config DBWriterConfig) (*DBWriter, error) {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	tmpPath := config.FilePath + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "create database")
	}

	w := &DBWriter{
		file:    file,
		writer:  bufio.NewWriterSize(file, config.BufferSize),
		hash:    xxh3.New(),
		config:  config,
		tmpPath: tmpPath,
	}
	w.out = io.MultiWriter(w.writer, w.hash)
	return w, nil
}

// Compress encodes every path from src into the database and returns the
// number of bytes written. An empty source still produces a valid, empty
// database.
func (w *DBWriter) Compress(src codec.LineSource) (int64, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	if w.used {
		return 0, ErrAlreadyWritten
	}
	w.used = true

	enc := codec.NewEncoder(src)
	for enc.Next() {
		if err := w.write(enc.Chunk()); err != nil {
			return w.offset, err
		}
	}
	if err := enc.Err(); err != nil {
		return w.offset, err
	}
	w.lines = enc.Lines()

	if w.offset == 0 {
		if err := w.write(codec.AppendHeader(nil)); err != nil {
			return w.offset, err
		}
	}
	return w.offset, nil
}

func (w *DBWriter) write(p []byte) error {
	n, err := w.out.Write(p)
	w.offset += int64(n)
	if err != nil {
		return errors.Wrap(err, "write database")
	}
	return nil
}

// Commit flushes, syncs and renames the temporary file over the final path
func (w *DBWriter) Commit() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	if w.offset == 0 {
		if err := w.write(codec.AppendHeader(nil)); err != nil {
			w.discard()
			return err
		}
	}
	if err := w.writer.Flush(); err != nil {
		w.discard()
		return errors.Wrap(err, "flush database")
	}
	if err := w.file.Sync(); err != nil {
		w.discard()
		return errors.Wrap(err, "sync database")
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrap(err, "close database")
	}
	if err := os.Rename(w.tmpPath, w.config.FilePath); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrap(err, "replace database")
	}
	return nil
}

// Abort discards the temporary file. It is safe to call after Commit.
func (w *DBWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.discard()
}

func (w *DBWriter) discard() error {
	closeErr := w.file.Close()
	if err := os.Remove(w.tmpPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove temporary database")
	}
	return closeErr
}

// Size returns the number of bytes written
func (w *DBWriter) Size() int64 {
	return w.offset
}

// Lines returns the number of paths encoded
func (w *DBWriter) Lines() int {
	return w.lines
}

// Checksum returns the hex xxh3 digest of the bytes written
func (w *DBWriter) Checksum() string {
	return hex.EncodeToString(w.hash.Sum(nil))
}

// Path returns the final database path
func (w *DBWriter) Path() string {
	return w.config.FilePath
}
