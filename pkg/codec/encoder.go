package codec

import (
	"github.com/cockroachdb/errors"
)

// Encoder turns a sequence of paths into database chunks, one chunk per
// path. The first chunk carries the header record. Concatenating every chunk
// in order yields the complete database.
type Encoder struct {
	src     LineSource
	cursor  Cursor
	started bool
	lines   int
	chunk   []byte
	err     error
}

// NewEncoder creates an encoder reading paths from src.
func NewEncoder(src LineSource) *Encoder {
	return &Encoder{src: src}
}

// Next encodes the next path. It returns false when the source is exhausted
// or an error occurred; Err tells the two apart.
func (e *Encoder) Next() bool {
	if e.err != nil {
		return false
	}
	if !e.src.Next() {
		e.chunk = nil
		if err := e.src.Err(); err != nil {
			e.err = errors.Wrap(err, "read path list")
		}
		return false
	}

	buf := e.chunk[:0]
	if !e.started {
		buf = AppendHeader(buf)
	}
	buf, err := e.cursor.EncodeLine(buf, e.src.Line())
	if err != nil {
		e.chunk = nil
		e.err = errors.Wrapf(err, "path %d", e.lines+1)
		return false
	}

	e.started = true
	e.lines++
	e.chunk = buf
	return true
}

// Chunk returns the bytes produced by the last call to Next. The slice is
// only valid until the following call to Next.
func (e *Encoder) Chunk() []byte {
	return e.chunk
}

// Lines returns the number of paths encoded so far.
func (e *Encoder) Lines() int {
	return e.lines
}

// Err returns the first error encountered, if any.
func (e *Encoder) Err() error {
	return e.err
}
