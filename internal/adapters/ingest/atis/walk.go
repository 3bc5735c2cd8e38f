package atis

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perr "atisprep/internal/platform/errors"
)

// Files returns the regular files below dir in lexical order
// dot files and dot directories are skipped; symlinks to regular files are
// listed, symlinked directories are not descended into
func Files(ctx context.Context, dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case d.Type().IsRegular():
			out = append(out, p)
		case d.Type()&fs.ModeSymlink != 0:
			fi, serr := os.Stat(p)
			if serr != nil {
				return perr.WithField(perr.IOf(serr, "resolve %s", p), p)
			}
			if fi.Mode().IsRegular() {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := perr.As(err); ok {
			return nil, err
		}
		return nil, perr.WithField(perr.IOf(err, "walk %s", dir), dir)
	}
	return out, nil
}
