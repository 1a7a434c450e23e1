package codec

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

// countingReader tracks how many bytes the decoder has consumed.
type countingReader struct {
	r byteReader
	n int64
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Decoder reads paths back out of a database stream. It is not restartable:
// decoding again requires a fresh stream and a fresh Decoder.
type Decoder struct {
	r       *countingReader
	cursor  Cursor
	started bool
	done    bool
	line    string
	suffix  []byte
	err     error
}

// NewDecoder creates a decoder over r. Readers without a ReadByte method are
// wrapped in a bufio.Reader.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: &countingReader{r: br}}
}

// Next decodes the next path. The header is validated on the first call.
// It returns false at the end of the stream or on error; Err tells the two
// apart.
func (d *Decoder) Next() bool {
	if d.done || d.err != nil {
		return false
	}
	if !d.started {
		if err := d.readHeader(); err != nil {
			d.err = err
			return false
		}
		d.started = true
	}

	start := d.r.n
	offset, err := ReadCount(d.r)
	if err != nil {
		return d.stop(err)
	}
	n, err := ReadCount(d.r)
	if err != nil {
		return d.stop(err)
	}
	if n < 0 {
		d.err = &CorruptError{Offset: start, Err: errors.Newf("negative suffix length %d", n)}
		return false
	}

	if cap(d.suffix) < n {
		d.suffix = make([]byte, n)
	}
	d.suffix = d.suffix[:n]
	if _, err := io.ReadFull(d.r, d.suffix); err != nil {
		return d.stop(err)
	}

	line, err := d.cursor.DecodeRecord(offset, d.suffix)
	if err != nil {
		d.err = &CorruptError{Offset: start, Err: err}
		return false
	}
	d.line = line
	return true
}

// stop ends the stream. Running out of bytes, on or inside a record, is a
// normal end; anything else is a read error.
func (d *Decoder) stop(err error) bool {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		d.done = true
		return false
	}
	d.err = errors.Wrap(err, "read database")
	return false
}

func (d *Decoder) readHeader() error {
	offset, err := ReadCount(d.r)
	if err != nil {
		return headerError(err, "missing header")
	}
	if offset != 0 {
		return errors.Wrapf(ErrInvalidDatabase, "header offset %d", offset)
	}

	n, err := ReadCount(d.r)
	if err != nil {
		return headerError(err, "truncated header")
	}
	if n != len(Label) {
		return errors.Wrapf(ErrInvalidDatabase, "label length %d", n)
	}

	label := make([]byte, n)
	if _, err := io.ReadFull(d.r, label); err != nil {
		return headerError(err, "truncated label")
	}
	if string(label) != Label {
		return errors.Wrapf(ErrInvalidDatabase, "label %q", label)
	}
	return nil
}

func headerError(err error, msg string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrap(ErrInvalidDatabase, msg)
	}
	return errors.Wrap(err, "read database header")
}

// Line returns the path decoded by the last call to Next.
func (d *Decoder) Line() string {
	return d.line
}

// Offset returns the number of bytes consumed from the stream.
func (d *Decoder) Offset() int64 {
	return d.r.n
}

// Err returns the first error encountered, if any. A clean or truncated end
// of stream is not an error.
func (d *Decoder) Err() error {
	return d.err
}
