package atis

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"atisprep/internal/core/seq2seq"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/platform/logger"
)

// column positions
const (
	ppID, ppUtterance, ppSlots, ppIntent = 0, 1, 2, 3
	ppColumns                            = 4

	devUtterance = 1
	devColumns   = 2

	maIntent, maUtterance, maSlots = 3, 4, 5
	maColumns                      = 6
)

// Loader reads the three corpus directories
// zero value strips the default intent prefix
type Loader struct {
	Formatter seq2seq.Formatter
}

// DevUtterances maps a language code to its raw dev utterances in file order
type DevUtterances map[string][]string

// MultiATISRow is one MultiATIS row in the non-English columns
type MultiATISRow struct {
	Line      int
	Intent    string // prefix removed
	Utterance string // raw
	SlotTags  []string
}

// MultiATISFile is one parsed MultiATIS file
type MultiATISFile struct {
	Path string
	Name MultiATISName
	Rows []MultiATISRow
}

// LoadPlusPlus reads every `<split>_<LANG>.<ext>` file below dir into a Corpus
func (l Loader) LoadPlusPlus(ctx context.Context, dir string) (*Corpus, error) {
	files, err := Files(ctx, dir)
	if err != nil {
		return nil, err
	}
	log := logger.Named("atis")
	c := NewCorpus()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := ParsePlusPlusName(path)
		if err != nil {
			return nil, perr.WithOp(err, "atis.load_plus_plus")
		}
		st := c.Ensure(name.Lang, name.Split)
		n, err := eachRow(path, true, ppColumns, func(row []string, line int) error {
			id, err := strconv.Atoi(strings.TrimSpace(row[ppID]))
			if err != nil {
				return perr.WithField(perr.Wrapf(err, perr.ErrorCodeParse, "%s:%d: id %q is not an integer", path, line, row[ppID]), path)
			}
			st.put(Record{
				ID:        id,
				Utterance: row[ppUtterance],
				SlotTags:  strings.Fields(row[ppSlots]),
				Intent:    l.Formatter.StripIntent(row[ppIntent]),
			})
			return nil
		})
		if err != nil {
			return nil, perr.WithOp(err, "atis.load_plus_plus")
		}
		log.Debug().Str("file", path).Str("lang", name.Lang).Str("split", name.Split).Int("rows", n).Msg("loaded multiatis++ file")
	}
	return c, nil
}

// LoadDevUtterances reads column 1 of every `<split>_<LANG>.<ext>` file below dir
func (l Loader) LoadDevUtterances(ctx context.Context, dir string) (DevUtterances, error) {
	files, err := Files(ctx, dir)
	if err != nil {
		return nil, err
	}
	out := DevUtterances{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := ParsePlusPlusName(path)
		if err != nil {
			return nil, perr.WithOp(err, "atis.load_dev")
		}
		if _, ok := out[name.Lang]; !ok {
			out[name.Lang] = []string{}
		}
		_, err = eachRow(path, true, devColumns, func(row []string, _ int) error {
			out[name.Lang] = append(out[name.Lang], row[devUtterance])
			return nil
		})
		if err != nil {
			return nil, perr.WithOp(err, "atis.load_dev")
		}
	}
	return out, nil
}

// LoadMultiATIS reads every `<Language>-<split>_<suffix>.<ext>` file below dir
// files carry no header row
func (l Loader) LoadMultiATIS(ctx context.Context, dir string) ([]MultiATISFile, error) {
	files, err := Files(ctx, dir)
	if err != nil {
		return nil, err
	}
	out := make([]MultiATISFile, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := ParseMultiATISName(path)
		if err != nil {
			return nil, perr.WithOp(err, "atis.load_multiatis")
		}
		mf := MultiATISFile{Path: path, Name: name}
		_, err = eachRow(path, false, maColumns, func(row []string, line int) error {
			mf.Rows = append(mf.Rows, MultiATISRow{
				Line:      line,
				Intent:    l.Formatter.StripIntent(row[maIntent]),
				Utterance: row[maUtterance],
				SlotTags:  strings.Fields(row[maSlots]),
			})
			return nil
		})
		if err != nil {
			return nil, perr.WithOp(err, "atis.load_multiatis")
		}
		out = append(out, mf)
	}
	return out, nil
}

// eachRow calls fn for every data row of path that has at least need columns
func eachRow(path string, header bool, need int, fn func(row []string, line int) error) (n int, err error) {
	rd, err := OpenTSV(path, header)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rd.Close(); cerr != nil && err == nil {
			err = perr.IOf(cerr, "close %s", path)
		}
	}()
	for {
		row, line, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return rd.Rows(), nil
		}
		if err != nil {
			return rd.Rows(), err
		}
		if len(row) < need {
			return rd.Rows(), shortRow(path, line, len(row), need)
		}
		if err := fn(row, line); err != nil {
			return rd.Rows(), err
		}
	}
}
