package store

import (
	"bufio"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/locatew/pkg/codec"
)

// CompressFile encodes the newline-separated path list in inFile into the
// database outFile and returns the database size in bytes.
func CompressFile(inFile, outFile string) (int64, error) {
	in, err := os.Open(inFile)
	if err != nil {
		return 0, errors.Wrap(err, "open path list")
	}
	defer in.Close()

	w, err := NewDBWriter(DBWriterConfig{FilePath: outFile})
	if err != nil {
		return 0, err
	}

	n, err := w.Compress(codec.ScanLines(bufio.NewReaderSize(in, DefaultBufferSize)))
	if err != nil {
		_ = w.Abort()
		return n, err
	}
	if err := w.Commit(); err != nil {
		return n, err
	}
	return n, nil
}

// DecompressFile writes every path of the database inFile to outFile, one per
// line, and returns the number of bytes written. On error outFile is removed.
func DecompressFile(inFile, outFile string) (written int64, err error) {
	r, err := NewDBReader(DBReaderConfig{FilePath: inFile})
	if err != nil {
		return 0, err
	}
	defer r.Close()

	out, err := os.Create(outFile)
	if err != nil {
		return 0, errors.Wrap(err, "create path list")
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close path list")
		}
		if err != nil {
			_ = os.Remove(outFile)
		}
	}()

	bw := bufio.NewWriterSize(out, DefaultBufferSize)
	dec := r.Iterator()
	for dec.Next() {
		n, err := bw.WriteString(dec.Line())
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write path list")
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, errors.Wrap(err, "write path list")
		}
		written++
	}
	if err := dec.Err(); err != nil {
		return written, err
	}

	if err := bw.Flush(); err != nil {
		return written, errors.Wrap(err, "flush path list")
	}
	if err := out.Sync(); err != nil {
		return written, errors.Wrap(err, "sync path list")
	}
	return written, nil
}
