// Package service implements the run ledger service
package service

import (
	"context"
	"time"

	"atisprep/internal/modkit/repokit"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/platform/logger"
	"atisprep/internal/services/runs/domain"
	"atisprep/internal/services/runs/repo"
)

// Service implements domain.LedgerPort against Postgres
type Service struct {
	DB   repokit.TxRunner
	Repo repokit.Binder[repo.Storage]
	Now  func() time.Time
}

// New constructs a new ledger service over db
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	return &Service{DB: db, Repo: binder, Now: time.Now}
}

// Start implements domain.LedgerPort
func (s *Service) Start(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		return perr.InvalidArgf("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.Now().UTC()
	}
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := repokit.MustBind(s.Repo, q)
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		return st.InsertRun(ctx, run)
	})
	if err != nil {
		return perr.WithOp(err, "runs.start")
	}
	logger.C(ctx).Debug().Str("run_id", run.ID).Msg("run recorded")
	return nil
}

// Finish implements domain.LedgerPort
func (s *Service) Finish(ctx context.Context, runID string, res domain.Result) error {
	if res.FinishedAt.IsZero() {
		res.FinishedAt = s.Now().UTC()
	}
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := repokit.MustBind(s.Repo, q)
		if err := st.FinishRun(ctx, runID, res.FinishedAt, res.Languages); err != nil {
			return err
		}
		return st.InsertSplitCounts(ctx, runID, res.Splits)
	})
	if err != nil {
		return perr.WithOp(err, "runs.finish")
	}
	logger.C(ctx).Debug().Str("run_id", runID).Int("splits", len(res.Splits)).Msg("run finished")
	return nil
}

// Noop implements domain.LedgerPort and records nothing
type Noop struct{}

// Start implements domain.LedgerPort
func (Noop) Start(context.Context, domain.Run) error { return nil }

// Finish implements domain.LedgerPort
func (Noop) Finish(context.Context, string, domain.Result) error { return nil }
