// Package files writes seq2seq splits as flat newline terminated text files
// Each split becomes `<split>.input` and `<split>.output` in the output directory
package files

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"atisprep/internal/core/seq2seq"
	perr "atisprep/internal/platform/errors"
)

// File name suffixes, one file per pair component
const (
	SuffixInput  = "input"
	SuffixOutput = "output"
)

const (
	defaultPermFile = 0o644
	defaultPermDir  = 0o755
	bufSize         = 64 * 1024
)

// rename is swapped in tests to simulate a failed replace
var rename = os.Rename

// Writer writes split files below a root directory
type Writer struct {
	root  string
	permF os.FileMode
	permD os.FileMode
}

// New returns a Writer rooted at dir
func New(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, perr.InvalidArgf("files: output directory is required")
	}
	return &Writer{root: dir, permF: defaultPermFile, permD: defaultPermDir}, nil
}

// Root returns the output directory
func (w *Writer) Root() string { return w.root }

// Path returns the destination of one split component
func (w *Writer) Path(split, suffix string) string {
	return filepath.Join(w.root, split+"."+suffix)
}

// WriteSplit writes the input and output files of one split
// both files are staged before either is renamed into place
func (w *Writer) WriteSplit(ctx context.Context, split string, pairs []seq2seq.Pair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.root, w.permD); err != nil {
		return perr.IOf(err, "create %s", w.root)
	}

	inputs := make([]string, len(pairs))
	outputs := make([]string, len(pairs))
	for i, p := range pairs {
		inputs[i], outputs[i] = p.Input, p.Output
	}

	inTmp, err := w.stage(inputs)
	if err != nil {
		return err
	}
	outTmp, err := w.stage(outputs)
	if err != nil {
		_ = os.Remove(inTmp)
		return err
	}
	if err := rename(inTmp, w.Path(split, SuffixInput)); err != nil {
		_ = os.Remove(inTmp)
		_ = os.Remove(outTmp)
		return perr.IOf(err, "replace %s", w.Path(split, SuffixInput))
	}
	if err := rename(outTmp, w.Path(split, SuffixOutput)); err != nil {
		_ = os.Remove(outTmp)
		return perr.IOf(err, "replace %s", w.Path(split, SuffixOutput))
	}
	return nil
}

// stage writes lines to a temp file in root and returns its path
func (w *Writer) stage(lines []string) (string, error) {
	tmp, err := os.CreateTemp(w.root, ".tmp-*")
	if err != nil {
		return "", perr.IOf(err, "create temp file in %s", w.root)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permF)

	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", perr.IOf(err, "write %s", tmpPath)
	}

	bw := bufio.NewWriterSize(tmp, bufSize)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return fail(err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fail(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", perr.IOf(err, "close %s", tmpPath)
	}
	return tmpPath, nil
}
