package domain

import "context"

// LedgerPort records runs
// implementations may be no-ops when no database is configured
type LedgerPort interface {
	// Start records run as started, creating the ledger tables when missing
	Start(ctx context.Context, run Run) error

	// Finish stamps the run as finished with the languages and per split counts
	Finish(ctx context.Context, runID string, res Result) error
}
