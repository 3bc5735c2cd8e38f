// Package atis reads the MultiATIS++ and MultiATIS tab separated corpora
//
// Design choices:
// - Files are visited in lexical path order so every run is reproducible.
// - Metadata (split, language) comes from the file name, never the contents.
// - Rows are read through encoding/csv with a tab delimiter and lazy quotes,
//   columns are accessed by position only.
// - Any malformed name, short row or bad id fails the whole load.
package atis
