// Package repo provides the run ledger repository implementation.
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atisprep/internal/modkit/repokit"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/services/runs/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the run ledger repository
type Storage interface {
	EnsureSchema(ctx context.Context) error
	InsertRun(ctx context.Context, r domain.Run) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, langs []string) error
	InsertSplitCounts(ctx context.Context, runID string, xs []domain.SplitCount) error
}

// Schema is the DDL applied by EnsureSchema
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS preprocess_runs (
		run_id           uuid PRIMARY KEY,
		started_at       timestamptz NOT NULL,
		finished_at      timestamptz,
		input_path_mapp  text NOT NULL,
		input_path_ma    text NOT NULL,
		input_path_dev   text NOT NULL,
		output_path      text NOT NULL,
		languages        text[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS preprocess_run_splits (
		run_id uuid NOT NULL REFERENCES preprocess_runs (run_id) ON DELETE CASCADE,
		split  text NOT NULL,
		pairs  integer NOT NULL,
		PRIMARY KEY (run_id, split)
	)`,
}

// EnsureSchema implements Storage
func (s *pg) EnsureSchema(ctx context.Context) error {
	for _, ddl := range Schema {
		if _, err := s.q.Exec(ctx, ddl); err != nil {
			return perr.FromPostgresf(err, "ensure ledger schema")
		}
	}
	return nil
}

// InsertRun implements Storage
func (s *pg) InsertRun(ctx context.Context, r domain.Run) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO preprocess_runs
			(run_id, started_at, input_path_mapp, input_path_ma, input_path_dev, output_path)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		r.ID, r.StartedAt, r.InputPlusPlus, r.InputMultiATIS, r.InputDev, r.OutputPath,
	)
	if err != nil {
		return perr.FromPostgresf(err, "insert run %s", r.ID)
	}
	return nil
}

// FinishRun implements Storage
func (s *pg) FinishRun(ctx context.Context, runID string, finishedAt time.Time, langs []string) error {
	if langs == nil {
		langs = []string{}
	}
	ct, err := s.q.Exec(ctx, `
		UPDATE preprocess_runs
		SET finished_at = $2, languages = $3
		WHERE run_id = $1::uuid`,
		runID, finishedAt, langs,
	)
	if err != nil {
		return perr.FromPostgresf(err, "finish run %s", runID)
	}
	if ct != nil && ct.RowsAffected() == 0 {
		return perr.NotFoundf("run %s not found", runID)
	}
	return nil
}

// InsertSplitCounts implements Storage
func (s *pg) InsertSplitCounts(ctx context.Context, runID string, xs []domain.SplitCount) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO preprocess_run_splits (run_id, split, pairs) VALUES `)

	args := make([]any, 0, len(xs)*3)
	for i, x := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*3 + 1
		fmt.Fprintf(&sb, "($%d::uuid,$%d,$%d)", base, base+1, base+2)
		args = append(args, runID, x.Split, x.Pairs)
	}
	sb.WriteString(` ON CONFLICT (run_id, split) DO UPDATE SET pairs = EXCLUDED.pairs`)

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		return perr.FromPostgresf(err, "insert split counts for run %s", runID)
	}
	return nil
}
