package atis

import (
	"path/filepath"
	"strings"

	perr "atisprep/internal/platform/errors"
)

// PlusPlusName is the metadata encoded in a `<split>_<LANG>.<ext>` file name
type PlusPlusName struct {
	Split string
	Lang  string // lowercased
	Ext   string
}

// ParsePlusPlusName parses a MultiATIS++ file name such as `dev_DE.tsv`
// base must contain exactly one `_` and the part after it exactly one `.`
func ParsePlusPlusName(path string) (PlusPlusName, error) {
	base := filepath.Base(path)
	split, langExt, ok := splitOnce(base, "_")
	if !ok {
		return PlusPlusName{}, badName(path, "want <split>_<LANG>.<ext>")
	}
	lang, ext, ok := splitOnce(langExt, ".")
	if !ok {
		return PlusPlusName{}, badName(path, "want <split>_<LANG>.<ext>")
	}
	return PlusPlusName{Split: split, Lang: strings.ToLower(lang), Ext: ext}, nil
}

// MultiATISName is the metadata encoded in a `<Language>-<split>_<suffix>.<ext>` file name
type MultiATISName struct {
	Language string // as written, e.g. Hindi
	Lang     string // hi or tr
	Split    string
}

// ParseMultiATISName parses a MultiATIS file name such as `Hindi-train_1600.tsv`
// base must contain exactly one `-`, Hindi maps to hi and anything else to tr
func ParseMultiATISName(path string) (MultiATISName, error) {
	base := filepath.Base(path)
	language, rest, ok := splitOnce(base, "-")
	if !ok {
		return MultiATISName{}, badName(path, "want <Language>-<split>_<suffix>.<ext>")
	}
	split, _, _ := strings.Cut(rest, ".")
	split, _, _ = strings.Cut(split, "_")

	lang := "tr"
	if language == "Hindi" {
		lang = "hi"
	}
	return MultiATISName{Language: language, Lang: lang, Split: split}, nil
}

// splitOnce splits s around sep and requires exactly one occurrence
func splitOnce(s, sep string) (before, after string, ok bool) {
	if strings.Count(s, sep) != 1 {
		return "", "", false
	}
	before, after, _ = strings.Cut(s, sep)
	return before, after, true
}

func badName(path, want string) error {
	return perr.WithField(perr.InvalidArgf("malformed file name %q: %s", filepath.Base(path), want), path)
}
