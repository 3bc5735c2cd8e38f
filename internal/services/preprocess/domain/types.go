// Package domain defines the core types and interfaces for the preprocess service
package domain

import (
	"slices"

	"atisprep/internal/core/seq2seq"
	perr "atisprep/internal/platform/errors"
)

// Output split names
const (
	SplitTrain = "train"
	SplitDev   = "dev"
	SplitTest  = "test"
)

// SplitNames lists the output splits in write order
var SplitNames = []string{SplitTrain, SplitDev, SplitTest}

// Language codes the MultiATIS merger routes on
const (
	LangHindi   = "hi"
	LangTurkish = "tr"
)

// Input names the four run directories
type Input struct {
	PlusPlusDir  string `name:"input_path_mapp" validate:"required,dir"`
	MultiATISDir string `name:"input_path_ma" validate:"required,dir"`
	DevDir       string `name:"input_path_hi_tr_dev" validate:"required,dir"`
	OutputDir    string `name:"output_path" validate:"required"`
}

// SplitCount is the number of pairs in one split
type SplitCount struct {
	Split string
	Pairs int
}

// Summary reports a finished run
type Summary struct {
	RunID     string
	Languages []string
	Counts    []SplitCount
}

// Dataset holds the ordered pairs of the train, dev and test splits
// input and output lines travel together so they cannot drift apart
type Dataset struct {
	pairs map[string][]seq2seq.Pair
}

// NewDataset returns an empty Dataset with all splits present
func NewDataset() *Dataset {
	d := &Dataset{pairs: make(map[string][]seq2seq.Pair, len(SplitNames))}
	for _, s := range SplitNames {
		d.pairs[s] = nil
	}
	return d
}

// KnownSplit reports whether split is one of SplitNames
func KnownSplit(split string) bool { return slices.Contains(SplitNames, split) }

// Append adds copies of p to split
func (d *Dataset) Append(split string, p seq2seq.Pair, copies int) error {
	if !KnownSplit(split) {
		return perr.InvalidArgf("unknown split %q, want one of %v", split, SplitNames)
	}
	for i := 0; i < copies; i++ {
		d.pairs[split] = append(d.pairs[split], p)
	}
	return nil
}

// Pairs returns the pairs of split in insertion order
func (d *Dataset) Pairs(split string) []seq2seq.Pair { return d.pairs[split] }

// Len returns the number of pairs in split
func (d *Dataset) Len(split string) int { return len(d.pairs[split]) }

// Counts returns the size of every split in SplitNames order
func (d *Dataset) Counts() []SplitCount {
	out := make([]SplitCount, 0, len(SplitNames))
	for _, s := range SplitNames {
		out = append(out, SplitCount{Split: s, Pairs: len(d.pairs[s])})
	}
	return out
}

// DevSet is a per language multiset of raw dev utterances
// a match consumes the earliest remaining occurrence
type DevSet struct {
	order    map[string][]string
	left     map[string]map[string]int
	consumed map[string]map[string]int
}

// NewDevSet builds a DevSet from language -> utterances
func NewDevSet(src map[string][]string) *DevSet {
	d := &DevSet{
		order:    make(map[string][]string, len(src)),
		left:     make(map[string]map[string]int, len(src)),
		consumed: make(map[string]map[string]int, len(src)),
	}
	for lang, utts := range src {
		d.order[lang] = slices.Clone(utts)
		left := make(map[string]int, len(utts))
		for _, u := range utts {
			left[u]++
		}
		d.left[lang] = left
		d.consumed[lang] = map[string]int{}
	}
	return d
}

// Consume removes one occurrence of utt for lang and reports whether one was present
func (d *DevSet) Consume(lang, utt string) bool {
	left := d.left[lang]
	if left[utt] == 0 {
		return false
	}
	left[utt]--
	d.consumed[lang][utt]++
	return true
}

// Languages returns the languages in sorted order
func (d *DevSet) Languages() []string {
	out := make([]string, 0, len(d.order))
	for lang := range d.order {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

// Remaining returns the unconsumed utterances of lang in their original order
func (d *DevSet) Remaining(lang string) []string {
	skip := make(map[string]int, len(d.consumed[lang]))
	for u, n := range d.consumed[lang] {
		skip[u] = n
	}
	out := make([]string, 0, len(d.order[lang]))
	for _, u := range d.order[lang] {
		if skip[u] > 0 {
			skip[u]--
			continue
		}
		out = append(out, u)
	}
	return out
}

// Len returns the number of unconsumed utterances across languages
func (d *DevSet) Len() int {
	n := 0
	for _, left := range d.left {
		for _, c := range left {
			n += c
		}
	}
	return n
}
