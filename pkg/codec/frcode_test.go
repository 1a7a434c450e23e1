package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func encodeAll(t *testing.T, lines []string) []byte {
	t.Helper()
	var out []byte
	enc := NewEncoder(SliceLines(lines))
	for enc.Next() {
		out = append(out, enc.Chunk()...)
	}
	if err := enc.Err(); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return out
}

func decodeAll(t *testing.T, data []byte) []string {
	t.Helper()
	var lines []string
	dec := NewDecoder(bytes.NewReader(data))
	for dec.Next() {
		lines = append(lines, dec.Line())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return lines
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var dirList = []string{
	`C:\Users`,
	`C:\Users\Fourmilier`,
	`C:\Users\Fourmilier\Documents\Bébé Aardvark.jpg`,
	`C:\Users\Fourmilier\Documents\Bébé Armadillo.jpg`,
	`C:\Windows`,
	`D:\ماريو.txt`,
	`E:\` + strings.Repeat("a", 50) + `\` + strings.Repeat("b", 50) + `\` + strings.Repeat("c", 50) + `\` + strings.Repeat("d", 50),
	`E:\` + strings.Repeat("a", 50) + `\` + strings.Repeat("b", 50) + `\` + strings.Repeat("c", 50) + `\` + strings.Repeat("d", 50) + `\e`,
	`E:\f`,
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		lines []string
	}{
		{name: "directory listing", lines: dirList},
		{name: "single path", lines: []string{`C:\`}},
		{name: "empty lines", lines: []string{"", "", `C:\a`, ""}},
		{name: "duplicates kept", lines: []string{`C:\a`, `C:\a`, `C:\a`}},
		{name: "unsorted", lines: []string{`Z:\z`, `A:\a`, `Z:\z\y`, `A:\`}},
		{name: "directories", lines: []string{`C:\`, `C:\Users\`, `C:\Users\Bob\`, `C:\Users\Bob\notes.txt`}},
		{name: "emoji", lines: []string{`C:\🎯\a`, `C:\🎯\b`, `C:\🎲`}},
		{name: "max length", lines: []string{strings.Repeat("x", MaxCount), strings.Repeat("y", MaxCount), strings.Repeat("y", MaxCount-1)}},
		{name: "large offsets", lines: []string{strings.Repeat("p", 300) + "a", strings.Repeat("p", 300) + "b", "q", strings.Repeat("q", 200)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeAll(t, encodeAll(t, tc.lines))
			if !equalLines(got, tc.lines) {
				t.Errorf("round trip mismatch:\n got %q\nwant %q", got, tc.lines)
			}
		})
	}
}

func TestEncoder_Header(t *testing.T) {
	want := []byte{0x00, 0x07, 'L', 'O', 'C', 'A', 'T', 'E', 'W'}

	enc := NewEncoder(SliceLines([]string{`C:\a`, `C:\b`}))
	if !enc.Next() {
		t.Fatalf("Next returned false: %v", enc.Err())
	}
	first := enc.Chunk()
	if !bytes.Equal(first[:HeaderSize], want) {
		t.Errorf("header: got % x, want % x", first[:HeaderSize], want)
	}
	if len(AppendHeader(nil)) != HeaderSize {
		t.Errorf("AppendHeader length: got %d, want %d", len(AppendHeader(nil)), HeaderSize)
	}

	if !enc.Next() {
		t.Fatalf("Next returned false: %v", enc.Err())
	}
	if bytes.Contains(enc.Chunk(), []byte(Label)) {
		t.Errorf("second chunk carries the header: % x", enc.Chunk())
	}
	if enc.Next() {
		t.Error("Next returned true after the last path")
	}
	if enc.Lines() != 2 {
		t.Errorf("Lines: got %d, want 2", enc.Lines())
	}
}

func TestEncoder_EmptySource(t *testing.T) {
	enc := NewEncoder(SliceLines(nil))
	if enc.Next() {
		t.Fatal("Next returned true for an empty source")
	}
	if err := enc.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEncoder_ChunkPerLine(t *testing.T) {
	enc := NewEncoder(SliceLines([]string{`C:\Users`, `C:\Users\Bob`, `C:\Windows`}))
	var chunks [][]byte
	for enc.Next() {
		chunks = append(chunks, append([]byte(nil), enc.Chunk()...))
	}

	want := [][]byte{
		append(AppendHeader(nil), append([]byte{0x00, 0x08}, `C:\Users`...)...),
		append([]byte{0x08, 0x04}, `\Bob`...),
		append([]byte{0xfb, 0x07}, `Windows`...),
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i := range want {
		if !bytes.Equal(chunks[i], want[i]) {
			t.Errorf("chunk %d: got % x, want % x", i, chunks[i], want[i])
		}
	}
}

func TestCursor_PrefixInvariant(t *testing.T) {
	lines := []string{`C:\Users`, `C:\Users\Bob`, `C:\Users\Bob\a.txt`, `C:\Windows`, `D:\`}

	var c Cursor
	prevPrefix := 0
	prev := ""
	for _, line := range lines {
		rec, err := c.EncodeLine(nil, line)
		if err != nil {
			t.Fatalf("EncodeLine(%q): %v", line, err)
		}

		r := bytes.NewReader(rec)
		offset, err := ReadCount(r)
		if err != nil {
			t.Fatalf("ReadCount offset: %v", err)
		}
		n, err := ReadCount(r)
		if err != nil {
			t.Fatalf("ReadCount length: %v", err)
		}
		suffix, _ := io.ReadAll(r)

		p := SharedPrefixLen(prev, line)
		if offset != p-prevPrefix {
			t.Errorf("%q: offset got %d, want %d", line, offset, p-prevPrefix)
		}
		if n != len(line)-p || string(suffix) != line[p:] {
			t.Errorf("%q: suffix got %d %q, want %q", line, n, suffix, line[p:])
		}
		if c.PrevPrefix() != p || c.Prev() != line {
			t.Errorf("%q: cursor got (%q, %d)", line, c.Prev(), c.PrevPrefix())
		}
		prev, prevPrefix = line, p
	}
}

func TestAppendCount_EscapeBoundaries(t *testing.T) {
	testCases := []struct {
		v    int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0xff}},
		{127, []byte{0x7f}},
		{-127, []byte{0x81}},
		{128, []byte{0x80, 0x00, 0x80}},
		{-128, []byte{0x80, 0xff, 0x80}},
		{-129, []byte{0x80, 0xff, 0x7f}},
		{MaxCount, []byte{0x80, 0x7f, 0xff}},
		{MinCount, []byte{0x80, 0x80, 0x00}},
	}

	for _, tc := range testCases {
		got, err := AppendCount(nil, tc.v)
		if err != nil {
			t.Fatalf("AppendCount(%d): %v", tc.v, err)
		}
		if !bytes.Equal(got, tc.want) {
			t.Errorf("AppendCount(%d): got % x, want % x", tc.v, got, tc.want)
		}

		back, err := ReadCount(bytes.NewReader(got))
		if err != nil {
			t.Fatalf("ReadCount(% x): %v", got, err)
		}
		if back != tc.v {
			t.Errorf("ReadCount(% x): got %d, want %d", got, back, tc.v)
		}
	}
}

func TestAppendCount_OutOfRange(t *testing.T) {
	for _, v := range []int{MaxCount + 1, MinCount - 1, 1 << 20} {
		dst := []byte{0x42}
		got, err := AppendCount(dst, v)
		if !errors.Is(err, ErrCountRange) {
			t.Errorf("AppendCount(%d): got err %v, want ErrCountRange", v, err)
		}
		if !bytes.Equal(got, dst) {
			t.Errorf("AppendCount(%d) modified dst: % x", v, got)
		}
	}
}

func TestReadCount_Truncated(t *testing.T) {
	if _, err := ReadCount(bytes.NewReader(nil)); err != io.EOF {
		t.Errorf("empty: got %v, want io.EOF", err)
	}
	if _, err := ReadCount(bytes.NewReader([]byte{0x80, 0x01})); err != io.ErrUnexpectedEOF {
		t.Errorf("short escape: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSharedPrefixLen(t *testing.T) {
	testCases := []struct {
		name      string
		prev, cur string
		want      int
	}{
		{"empty previous", "", `C:\a`, 0},
		{"identical", `C:\a`, `C:\a`, 4},
		{"extension", `C:\Users`, `C:\Users\Bob`, 8},
		{"case sensitive", `C:\users`, `C:\Users`, 3},
		{"diacritic sensitive", `C:\Bébé`, `C:\Bebe`, 4},
		{"shared accent", `C:\Bébé`, `C:\Bébert`, 7},
		{"arabic", `D:\ماريو.txt`, `D:\ماريد.txt`, len(`D:\ماري`)},
		{"same lead byte", "a\u00e9", "a\u00e8", 1},
		{"invalid bytes", "a\xffb", "a\xfeb", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SharedPrefixLen(tc.prev, tc.cur); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEncode_MultiByteSafety(t *testing.T) {
	lines := []string{`D:\ماريو.txt`, `D:\ماريد.txt`, "x\u00e9", "x\u00e8"}

	var c Cursor
	for _, line := range lines {
		before := c.Prev()
		rec, err := c.EncodeLine(nil, line)
		if err != nil {
			t.Fatalf("EncodeLine(%q): %v", line, err)
		}
		p := SharedPrefixLen(before, line)
		suffix := rec[len(rec)-(len(line)-p):]
		if len(suffix) > 0 && suffix[0]&0xc0 == 0x80 {
			t.Errorf("%q: suffix starts mid-character: % x", line, suffix)
		}
	}

	if got := decodeAll(t, encodeAll(t, lines)); !equalLines(got, lines) {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestEncode_LineTooLong(t *testing.T) {
	lines := []string{`C:\ok`, strings.Repeat("z", MaxCount+1), `C:\never`}

	enc := NewEncoder(SliceLines(lines))
	if !enc.Next() {
		t.Fatalf("first line failed: %v", enc.Err())
	}
	if enc.Next() {
		t.Fatal("oversized line was encoded")
	}
	if !errors.Is(enc.Err(), ErrLineTooLong) {
		t.Fatalf("got %v, want ErrLineTooLong", enc.Err())
	}
	if enc.Next() {
		t.Error("encoder continued after an error")
	}
}

func TestDecoder_InvalidHeader(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"offset only", []byte{0x00}},
		{"nonzero offset", append([]byte{0x01, 0x07}, Label...)},
		{"wrong length", append([]byte{0x00, 0x06}, "LOCATE"...)},
		{"wrong label", append([]byte{0x00, 0x07}, "LOCATEX"...)},
		{"truncated label", append([]byte{0x00, 0x07}, "LOCA"...)},
		{"gnu locate02", append([]byte{0x00}, "LOCATE02\x00"...)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec := NewDecoder(bytes.NewReader(tc.data))
			if dec.Next() {
				t.Fatalf("Next returned true, line %q", dec.Line())
			}
			if !errors.Is(dec.Err(), ErrInvalidDatabase) {
				t.Errorf("got %v, want ErrInvalidDatabase", dec.Err())
			}
		})
	}
}

func TestDecoder_HeaderOnly(t *testing.T) {
	if got := decodeAll(t, AppendHeader(nil)); len(got) != 0 {
		t.Errorf("got %q, want no lines", got)
	}
}

func TestDecoder_TruncatedTolerance(t *testing.T) {
	data := encodeAll(t, dirList)

	// Record boundaries, so the number of complete records is known at every cut.
	var ends []int
	pos := 0
	enc := NewEncoder(SliceLines(dirList))
	for enc.Next() {
		pos += len(enc.Chunk())
		ends = append(ends, pos)
	}

	for cut := HeaderSize; cut <= len(data); cut++ {
		complete := 0
		for _, end := range ends {
			if end <= cut {
				complete++
			}
		}

		got := decodeAll(t, data[:cut])
		if !equalLines(got, dirList[:complete]) {
			t.Fatalf("cut %d: got %d lines, want %d", cut, len(got), complete)
		}
	}
}

func TestDecoder_CorruptUTF8(t *testing.T) {
	data := AppendHeader(nil)
	data = append(data, 0x00, 0x03, 'a', 0xff, 'b')

	dec := NewDecoder(bytes.NewReader(data))
	if dec.Next() {
		t.Fatalf("Next returned true, line %q", dec.Line())
	}

	var corrupt *CorruptError
	if !errors.As(dec.Err(), &corrupt) {
		t.Fatalf("got %v, want *CorruptError", dec.Err())
	}
	if corrupt.Offset != int64(HeaderSize) {
		t.Errorf("Offset: got %d, want %d", corrupt.Offset, HeaderSize)
	}
	if corrupt.Unwrap() == nil || !strings.Contains(corrupt.Error(), "UTF-8") {
		t.Errorf("cause not carried: %v", corrupt)
	}
}

func TestDecoder_CorruptPrefix(t *testing.T) {
	testCases := []struct {
		name   string
		record []byte
	}{
		{"negative prefix", []byte{0x00, 0x01, 'a', 0xfe, 0x01, 'b'}},
		{"prefix past previous", []byte{0x00, 0x01, 'a', 0x05, 0x01, 'b'}},
		{"negative length", []byte{0x00, 0xff}},
		{"split character", append([]byte{0x00, 0x02}, append([]byte("é"), 0x01, 0x01, 'x')...)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec := NewDecoder(bytes.NewReader(append(AppendHeader(nil), tc.record...)))
			for dec.Next() {
			}
			var corrupt *CorruptError
			if !errors.As(dec.Err(), &corrupt) {
				t.Errorf("got %v, want *CorruptError", dec.Err())
			}
		})
	}
}

func TestDecoder_Offset(t *testing.T) {
	data := encodeAll(t, dirList)
	dec := NewDecoder(bytes.NewReader(data))
	for dec.Next() {
	}
	if dec.Offset() != int64(len(data)) {
		t.Errorf("Offset: got %d, want %d", dec.Offset(), len(data))
	}
}

func TestScanLines(t *testing.T) {
	src := ScanLines(strings.NewReader("C:\\a\r\nC:\\b\n\nC:\\c"))
	var got []string
	for src.Next() {
		got = append(got, src.Line())
	}
	if err := src.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{`C:\a`, `C:\b`, "", `C:\c`}
	if !equalLines(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecoder_AsLineSource(t *testing.T) {
	data := encodeAll(t, dirList)

	// A decoded database can be fed straight back to an encoder.
	again := encodeAll(t, nil)
	enc := NewEncoder(NewDecoder(bytes.NewReader(data)))
	for enc.Next() {
		again = append(again, enc.Chunk()...)
	}
	if err := enc.Err(); err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Error("re-encoded database differs")
	}
}
