// Package normalize provides the text folding used when building seq2seq pairs
// Lowercasing is locale neutral (language.Und) with full Unicode case mapping
// Tokenization is plain Unicode whitespace splitting
package normalize

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer is concurrency safe, casers come from the pool below
type Normalizer struct{}

// cases.Caser keeps internal state and must not be shared across goroutines
var lowerPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Lower returns the locale neutral lowercase form of s
func (n *Normalizer) Lower(s string) string {
	if s == "" {
		return ""
	}
	c := lowerPool.Get().(*cases.Caser)
	out := c.String(s)
	c.Reset()
	lowerPool.Put(c)
	return out
}

// Fields splits s around runs of Unicode whitespace
func (n *Normalizer) Fields(s string) []string {
	return strings.Fields(s)
}

// LowerFields lowercases s and splits it
func (n *Normalizer) LowerFields(s string) []string {
	return n.Fields(n.Lower(s))
}
