// Package seq2seq builds the flat source/target line pairs used for
// sequence to sequence training
//
// A target line lists every slot-bearing token followed by its tag in angle
// brackets, then an intent marker and a language marker
//
//	boston <B-fromloc.city_name> denver <B-toloc.city_name> <intent-flight> <lang-en>
package seq2seq

import "strings"

// Defaults used when a Formatter field is left empty
const (
	DefaultOutsideTag   = "O"
	DefaultIntentPrefix = "atis_"
)

// Pair is one aligned source/target example
type Pair struct {
	Input  string
	Output string
}

// Formatter renders target lines
// zero value uses the defaults above
type Formatter struct {
	OutsideTag   string // tag marking tokens outside any slot
	IntentPrefix string // removed from intent labels wherever it appears
	KeepIntent   bool   // leaves intent labels untouched
}

func (f Formatter) outside() string {
	if f.OutsideTag == "" {
		return DefaultOutsideTag
	}
	return f.OutsideTag
}

// StripIntent removes every occurrence of the intent prefix from label
func (f Formatter) StripIntent(label string) string {
	if f.KeepIntent {
		return label
	}
	p := f.IntentPrefix
	if p == "" {
		p = DefaultIntentPrefix
	}
	return strings.ReplaceAll(label, p, "")
}

// SlotMarker wraps a slot tag
func SlotMarker(tag string) string { return "<" + tag + ">" }

// IntentMarker renders the intent marker for an already stripped intent
func IntentMarker(intent string) string { return "<intent-" + intent + ">" }

// LangMarker renders the language marker
func LangMarker(lang string) string { return "<lang-" + lang + ">" }

// Target builds the target line for tokens and their positional tags
// tokens and tags are paired up to the shorter of the two
func (f Formatter) Target(tokens, tags []string, intent, lang string) string {
	n := min(len(tokens), len(tags))
	out := make([]string, 0, 2*n+2)
	o := f.outside()
	for i := 0; i < n; i++ {
		if tags[i] == o {
			continue
		}
		out = append(out, tokens[i], SlotMarker(tags[i]))
	}
	out = append(out, IntentMarker(intent), LangMarker(lang))
	return strings.Join(out, " ")
}

// Pair builds a Pair whose input is utterance as given
// tokens are the whitespace fields of utterance
func (f Formatter) Pair(utterance string, tags []string, intent, lang string) Pair {
	return Pair{
		Input:  utterance,
		Output: f.Target(strings.Fields(utterance), tags, intent, lang),
	}
}

// SlotTokens counts the tokens of a target line, excluding markers
func SlotTokens(target string) int {
	n := 0
	for _, f := range strings.Fields(target) {
		if strings.HasPrefix(f, "<") && strings.HasSuffix(f, ">") {
			continue
		}
		n++
	}
	return n
}
