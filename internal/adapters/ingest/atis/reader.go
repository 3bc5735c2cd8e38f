package atis

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	perr "atisprep/internal/platform/errors"
)

// Reader streams tab separated rows from one corpus file
type Reader struct {
	path string
	f    *os.File
	cr   *csv.Reader
	rows int
}

// OpenTSV opens path for row reading, skipping the first row when header is true
func OpenTSV(path string, header bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.WithField(perr.IOf(err, "open %s", path), path)
	}
	rd := &Reader{path: path, f: f, cr: newTSV(f)}
	if header {
		if _, _, err := rd.Next(); err != nil && !errors.Is(err, io.EOF) {
			_ = f.Close()
			return nil, err
		}
		rd.rows = 0
	}
	return rd, nil
}

func newTSV(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// Next returns the next row and its 1-based line number, io.EOF when done
func (rd *Reader) Next() ([]string, int, error) {
	rec, err := rd.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, perr.WithField(perr.Wrapf(err, perr.ErrorCodeParse, "read %s", rd.path), rd.path)
	}
	rd.rows++
	line, _ := rd.cr.FieldPos(0)
	return rec, line, nil
}

// Rows returns the number of data rows read so far
func (rd *Reader) Rows() int { return rd.rows }

// Path returns the file being read
func (rd *Reader) Path() string { return rd.path }

// Close closes the underlying file
func (rd *Reader) Close() error {
	if rd == nil || rd.f == nil {
		return nil
	}
	return rd.f.Close()
}

// shortRow reports a row with fewer columns than need
func shortRow(path string, line, got, need int) error {
	return perr.WithField(perr.Parsef("%s:%d: expected at least %d columns, got %d", path, line, need, got), path)
}
