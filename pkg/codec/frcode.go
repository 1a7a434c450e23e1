package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

const (
	// Label identifies a locatew database.
	Label = "LOCATEW"

	// HeaderSize is the encoded size of the header record.
	HeaderSize = 2 + len(Label)

	// MaxCount is the largest value an integer field can hold.
	MaxCount = 1<<15 - 1

	// MinCount is the smallest value an integer field can hold.
	MinCount = -1 << 15

	escape = 0x80
)

var (
	// ErrInvalidDatabase is returned when a stream does not start with the
	// LOCATEW header record.
	ErrInvalidDatabase = errors.New("invalid database file")

	// ErrLineTooLong is returned when a path is longer than MaxCount bytes.
	ErrLineTooLong = errors.New("path longer than 32767 bytes")

	// ErrCountRange is returned when an integer field does not fit in an int16.
	ErrCountRange = errors.New("count out of int16 range")
)

// CorruptError reports a record that was read completely but cannot be
// turned back into a path.
type CorruptError struct {
	Offset int64 // byte offset of the record in the stream
	Err    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt encoding at byte %d: %v", e.Offset, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// AppendCount appends the variable-width encoding of v to dst.
func AppendCount(dst []byte, v int) ([]byte, error) {
	if v < MinCount || v > MaxCount {
		return dst, errors.Wrapf(ErrCountRange, "count %d", v)
	}
	if v > -128 && v < 128 {
		return append(dst, byte(int8(v))), nil
	}
	dst = append(dst, escape)
	return binary.BigEndian.AppendUint16(dst, uint16(int16(v))), nil
}

// ReadCount reads one variable-width integer field. It returns io.EOF when
// the stream ends before the first byte and io.ErrUnexpectedEOF when it ends
// inside an escaped field.
func ReadCount(r io.ByteReader) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != escape {
		return int(int8(b)), nil
	}

	var buf [2]byte
	for i := range buf {
		if buf[i], err = r.ReadByte(); err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
	}
	return int(int16(binary.BigEndian.Uint16(buf[:]))), nil
}

// AppendHeader appends the header record to dst.
func AppendHeader(dst []byte) []byte {
	dst = append(dst, 0, byte(len(Label)))
	return append(dst, Label...)
}

// SharedPrefixLen returns the length in bytes of the longest run of equal
// leading runes of prev and cur.
func SharedPrefixLen(prev, cur string) int {
	n := 0
	for n < len(prev) && n < len(cur) {
		rp, sp := utf8.DecodeRuneInString(prev[n:])
		rc, sc := utf8.DecodeRuneInString(cur[n:])
		if rp != rc || sp != sc {
			break
		}
		// Invalid bytes decode to the same RuneError; compare them raw.
		if rp == utf8.RuneError && sp == 1 && prev[n] != cur[n] {
			break
		}
		n += sp
	}
	return n
}

// Cursor is the per-stream state shared by the encoding and decoding rules:
// the previous path and the shared-prefix length it was produced with.
type Cursor struct {
	prev       string
	prevPrefix int
}

// Prev returns the last path encoded or decoded.
func (c *Cursor) Prev() string {
	return c.prev
}

// PrevPrefix returns the shared-prefix length of the last record.
func (c *Cursor) PrevPrefix() int {
	return c.prevPrefix
}

// EncodeLine appends the entry record for line to dst and advances the
// cursor. On error dst is returned unchanged and the cursor does not move.
func (c *Cursor) EncodeLine(dst []byte, line string) ([]byte, error) {
	if len(line) > MaxCount {
		return dst, errors.Wrapf(ErrLineTooLong, "%d bytes", len(line))
	}

	prefix := SharedPrefixLen(c.prev, line)
	out, err := AppendCount(dst, prefix-c.prevPrefix)
	if err != nil {
		return dst, err
	}
	if out, err = AppendCount(out, len(line)-prefix); err != nil {
		return dst, err
	}
	out = append(out, line[prefix:]...)

	c.prevPrefix = prefix
	c.prev = line
	return out, nil
}

// DecodeRecord rebuilds the path described by offset and suffix and advances
// the cursor.
func (c *Cursor) DecodeRecord(offset int, suffix []byte) (string, error) {
	prefix := c.prevPrefix + offset
	if prefix < 0 || prefix > len(c.prev) {
		return "", errors.Newf("prefix length %d outside previous path of %d bytes", prefix, len(c.prev))
	}
	if prefix < len(c.prev) && !utf8.RuneStart(c.prev[prefix]) {
		return "", errors.Newf("prefix length %d splits a character", prefix)
	}
	if !utf8.Valid(suffix) {
		return "", errors.Newf("invalid UTF-8 at suffix byte %d", invalidAt(suffix))
	}

	line := c.prev[:prefix] + string(suffix)
	c.prevPrefix = prefix
	c.prev = line
	return line, nil
}

func invalidAt(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}
