package query

import (
	"io"
)

const (
	// DefaultQueueCapacity is the number of decoded entries buffered between
	// the decoding goroutine and the matcher.
	DefaultQueueCapacity = 10_000

	// DefaultSeparator ends directory entries and separates path components.
	DefaultSeparator = '\\'
)

// Source is a lazy, finite sequence of database entries. *codec.Decoder
// implements it.
type Source interface {
	Next() bool
	Line() string
	Err() error
}

// Matcher tests candidates against a compiled set of patterns
type Matcher interface {
	// IsMatch reports whether any pattern matches the candidate.
	IsMatch(candidate string) bool
	// MatchCount returns how many patterns match the candidate.
	MatchCount(candidate string) int
	// Len returns the number of patterns.
	Len() int
}

// Entry is a matched database entry
type Entry struct {
	Line      string // Entry as stored; directories keep their trailing separator
	Path      string // Line without the trailing separator
	Candidate string // String given to the matcher
	IsDir     bool
}

// Sink receives matched entries in database order
type Sink interface {
	Emit(Entry) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Entry) error

// Emit implements Sink
func (f SinkFunc) Emit(e Entry) error {
	return f(e)
}

// Options configures a query
type Options struct {
	All           bool // Every pattern must match instead of any
	Basename      bool // Match the last path component only; directories are skipped
	Limit         int  // Stop after this many matches (0 = no limit)
	QueueCapacity int  // Bounded queue size (0 = DefaultQueueCapacity)
	Separator     byte // Path separator (0 = DefaultSeparator)
}

// StopReason tells why a query finished
type StopReason int

const (
	StopExhausted StopReason = iota // Every entry was scanned
	StopLimit                       // The result limit was reached
	StopSink                        // The sink returned an error
	StopCanceled                    // The context was canceled
	StopDecode                      // The source failed
)

func (r StopReason) String() string {
	switch r {
	case StopExhausted:
		return "exhausted"
	case StopLimit:
		return "limit"
	case StopSink:
		return "sink"
	case StopCanceled:
		return "canceled"
	case StopDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Summary describes a finished query
type Summary struct {
	Scanned int // Entries taken off the queue
	Matched int // Entries given to the sink
	Reason  StopReason
}

// writerSink writes each matched path on its own line
type writerSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink writing matched paths, without their trailing
// separator, one per line.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Emit(e Entry) error {
	if _, err := io.WriteString(s.w, e.Path); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, "\n")
	return err
}

// Discard is a Sink that drops every entry, for counting.
var Discard Sink = SinkFunc(func(Entry) error { return nil })
