// Package codec implements the front-coded path database used by locate and
// updatedb.
//
// A database is a sequence of records. Each record stores how much of the
// previous path it reuses and the literal remainder, so a depth-first listing
// of a file system, where neighbours share long prefixes, compresses well.
//
// # Database Format
//
//	[Offset(0)][Len(7)]["LOCATEW"]            header record
//	[Offset][SuffixLen][Suffix]               one entry record per path
//	...
//
// Fields:
//   - Offset: signed difference between this record's shared-prefix length
//     and the previous record's shared-prefix length, in bytes
//   - SuffixLen: length in bytes of the non-shared tail of the path
//   - Suffix: SuffixLen bytes of UTF-8 text
//
// Both integer fields use the same variable-width encoding. A value in the
// range -127..127 is a single two's-complement byte. Any other value is the
// escape byte 0x80 followed by the value as a big-endian int16. -128 is always
// escaped because its single-byte form is the escape byte itself.
//
// The shared prefix is measured by comparing the two paths rune by rune and
// summing the UTF-8 widths of the equal leading runes, so a suffix never
// starts in the middle of a multi-byte character.
//
// # Reconstruction
//
// A decoder keeps the previous path and its shared-prefix length. For each
// record:
//
//	prefix := prevPrefix + Offset
//	path   := prev[:prefix] + Suffix
//
// # Usage
//
// Encoding a listing:
//
//	enc := codec.NewEncoder(codec.ScanLines(listing))
//	for enc.Next() {
//	    if _, err := out.Write(enc.Chunk()); err != nil {
//	        return err
//	    }
//	}
//	if err := enc.Err(); err != nil {
//	    return err
//	}
//
// Decoding a database:
//
//	dec := codec.NewDecoder(db)
//	for dec.Next() {
//	    fmt.Println(dec.Line())
//	}
//	return dec.Err()
//
// # Error Handling
//
// A database that does not start with a complete LOCATEW header fails with
// ErrInvalidDatabase. A suffix that is not valid UTF-8, or an offset that
// points outside the previous path, fails with a *CorruptError wrapping the
// cause. A stream that ends on or inside a record after the header simply
// ends; truncated trailing records are dropped without an error.
//
// # Thread Safety
//
// Encoders, decoders and cursors carry per-stream state and must not be
// shared between goroutines.
package codec
