package atis

// Record is one MultiATIS++ row with the intent prefix removed
type Record struct {
	ID        int
	Utterance string
	SlotTags  []string
	Intent    string
}

// Corpus is the language -> split -> id table of MultiATIS++ records
// languages, splits and ids iterate in first seen order
type Corpus struct {
	langs  []*LangTable
	byLang map[string]*LangTable
}

// LangTable holds the splits of one language
type LangTable struct {
	Lang    string
	splits  []*SplitTable
	bySplit map[string]*SplitTable
}

// SplitTable holds the records of one split keyed by id
type SplitTable struct {
	Split   string
	records []Record
	byID    map[int]int
}

// NewCorpus returns an empty Corpus
func NewCorpus() *Corpus {
	return &Corpus{byLang: map[string]*LangTable{}}
}

// Ensure registers lang and split without adding records
func (c *Corpus) Ensure(lang, split string) *SplitTable {
	lt, ok := c.byLang[lang]
	if !ok {
		lt = &LangTable{Lang: lang, bySplit: map[string]*SplitTable{}}
		c.byLang[lang] = lt
		c.langs = append(c.langs, lt)
	}
	st, ok := lt.bySplit[split]
	if !ok {
		st = &SplitTable{Split: split, byID: map[int]int{}}
		lt.bySplit[split] = st
		lt.splits = append(lt.splits, st)
	}
	return st
}

// Put stores r under lang and split, a repeated id replaces the earlier record in place
func (c *Corpus) Put(lang, split string, r Record) {
	c.Ensure(lang, split).put(r)
}

func (s *SplitTable) put(r Record) {
	if i, ok := s.byID[r.ID]; ok {
		s.records[i] = r
		return
	}
	s.byID[r.ID] = len(s.records)
	s.records = append(s.records, r)
}

// Languages returns language codes in first seen order
func (c *Corpus) Languages() []string {
	out := make([]string, 0, len(c.langs))
	for _, lt := range c.langs {
		out = append(out, lt.Lang)
	}
	return out
}

// Lang returns the table for code or nil
func (c *Corpus) Lang(code string) *LangTable { return c.byLang[code] }

// Tables returns language tables in first seen order
func (c *Corpus) Tables() []*LangTable { return c.langs }

// Len returns the total number of records
func (c *Corpus) Len() int {
	n := 0
	for _, lt := range c.langs {
		for _, st := range lt.splits {
			n += len(st.records)
		}
	}
	return n
}

// First returns the first record loaded, if any
func (c *Corpus) First() (lang, split string, r Record, ok bool) {
	for _, lt := range c.langs {
		for _, st := range lt.splits {
			if len(st.records) > 0 {
				return lt.Lang, st.Split, st.records[0], true
			}
		}
	}
	return "", "", Record{}, false
}

// Splits returns split tables in first seen order
func (l *LangTable) Splits() []*SplitTable { return l.splits }

// Split returns the table for name or nil
func (l *LangTable) Split(name string) *SplitTable { return l.bySplit[name] }

// Records returns records in first seen id order
func (s *SplitTable) Records() []Record { return s.records }

// Get returns the record stored for id
func (s *SplitTable) Get(id int) (Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Len returns the number of distinct ids
func (s *SplitTable) Len() int { return len(s.records) }
