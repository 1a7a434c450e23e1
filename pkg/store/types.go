package store

import (
	"github.com/cockroachdb/errors"

	"github.com/ssargent/locatew/pkg/codec"
)

// DefaultBufferSize is the read and write buffer size for database files.
const DefaultBufferSize = 64 * 1024

// MsgRegenerate is shown to users when the database cannot be used.
const MsgRegenerate = "database does not exist or is invalid; regenerate it with updatedb"

// DBWriterConfig holds configuration for the database writer
type DBWriterConfig struct {
	FilePath   string // Final path of the database
	BufferSize int    // Write buffer size
}

// DBReaderConfig holds configuration for the database reader
type DBReaderConfig struct {
	FilePath   string // Path of the database
	BufferSize int    // Read buffer size
}

// Errors
var (
	ErrDatabaseMissing = errors.New("database does not exist")
	ErrWriterClosed    = errors.New("database writer already committed or aborted")
	ErrAlreadyWritten  = errors.New("database writer already used")
)

// IsUnusable reports whether err means the database is missing or is not a
// locatew database, as opposed to a failure partway through a scan.
func IsUnusable(err error) bool {
	return errors.Is(err, ErrDatabaseMissing) || errors.Is(err, codec.ErrInvalidDatabase)
}
