// Package domain defines the core types and interfaces for the run ledger
package domain

import "time"

// Run describes one preprocessing run
type Run struct {
	ID             string // uuid
	StartedAt      time.Time
	InputPlusPlus  string
	InputMultiATIS string
	InputDev       string
	OutputPath     string
}

// SplitCount is the number of pairs written for one split
type SplitCount struct {
	Split string
	Pairs int
}

// Result is what a finished run reports back to the ledger
type Result struct {
	FinishedAt time.Time
	Languages  []string
	Splits     []SplitCount
}
