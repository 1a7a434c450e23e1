package codec

import (
	"bufio"
	"io"
)

// maxScanLine bounds the scanner buffer. Lines between MaxCount and this size
// reach the encoder and fail with ErrLineTooLong instead of a scanner error.
const maxScanLine = 1 << 20

// LineSource is a lazy, finite sequence of paths.
type LineSource interface {
	Next() bool
	Line() string
	Err() error
}

// ScanLines returns a LineSource reading newline-separated paths from r.
// Both "\n" and "\r\n" terminate a line.
func ScanLines(r io.Reader) LineSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxScanLine)
	return &scanSource{s: s}
}

type scanSource struct {
	s *bufio.Scanner
}

func (s *scanSource) Next() bool   { return s.s.Scan() }
func (s *scanSource) Line() string { return s.s.Text() }
func (s *scanSource) Err() error   { return s.s.Err() }

// SliceLines returns a LineSource over an in-memory list of paths.
func SliceLines(lines []string) LineSource {
	return &sliceSource{lines: lines, i: -1}
}

type sliceSource struct {
	lines []string
	i     int
}

func (s *sliceSource) Next() bool {
	if s.i+1 >= len(s.lines) {
		s.i = len(s.lines)
		return false
	}
	s.i++
	return true
}

func (s *sliceSource) Line() string { return s.lines[s.i] }
func (s *sliceSource) Err() error   { return nil }
