package service

import (
	"context"
	"testing"
	"time"

	"atisprep/internal/modkit/repokit"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/services/runs/domain"
	"atisprep/internal/services/runs/repo"
)

type fakeStorage struct {
	ops      []string
	run      domain.Run
	finished time.Time
	langs    []string
	counts   []domain.SplitCount
	failOn   string
}

func (f *fakeStorage) step(op string) error {
	f.ops = append(f.ops, op)
	if op == f.failOn {
		return perr.DBf("%s failed", op)
	}
	return nil
}

func (f *fakeStorage) EnsureSchema(context.Context) error { return f.step("schema") }

func (f *fakeStorage) InsertRun(_ context.Context, r domain.Run) error {
	f.run = r
	return f.step("insert")
}

func (f *fakeStorage) FinishRun(_ context.Context, _ string, at time.Time, langs []string) error {
	f.finished, f.langs = at, langs
	return f.step("finish")
}

func (f *fakeStorage) InsertSplitCounts(_ context.Context, _ string, xs []domain.SplitCount) error {
	f.counts = xs
	return f.step("counts")
}

type fakeTx struct{ txs int }

func (f *fakeTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	return nil, nil
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) repokit.Row { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	f.txs++
	return fn(f)
}

func newSvc(st *fakeStorage) (*Service, *fakeTx) {
	tx := &fakeTx{}
	s := New(tx, repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return st }))
	s.Now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	return s, tx
}

func TestStart_EnsuresSchemaThenInserts(t *testing.T) {
	st := &fakeStorage{}
	s, tx := newSvc(st)

	if err := s.Start(context.Background(), domain.Run{ID: "r1"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tx.txs != 1 || len(st.ops) != 2 || st.ops[0] != "schema" || st.ops[1] != "insert" {
		t.Fatalf("ops = %v txs=%d", st.ops, tx.txs)
	}
	if !st.run.StartedAt.Equal(s.Now()) {
		t.Fatalf("StartedAt not defaulted: %v", st.run.StartedAt)
	}
}

func TestStart_Validation(t *testing.T) {
	s, tx := newSvc(&fakeStorage{})
	if err := s.Start(context.Background(), domain.Run{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if tx.txs != 0 {
		t.Fatalf("no tx expected")
	}
}

func TestFinish_WritesCounts(t *testing.T) {
	st := &fakeStorage{}
	s, _ := newSvc(st)
	res := domain.Result{
		Languages: []string{"en", "de"},
		Splits:    []domain.SplitCount{{Split: "train", Pairs: 3}},
	}
	if err := s.Finish(context.Background(), "r1", res); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(st.langs) != 2 || len(st.counts) != 1 || st.finished.IsZero() {
		t.Fatalf("unexpected storage state: %+v", st)
	}
}

func TestFinish_ErrorCarriesOp(t *testing.T) {
	st := &fakeStorage{failOn: "finish"}
	s, _ := newSvc(st)
	err := s.Finish(context.Background(), "r1", domain.Result{})
	e, ok := perr.As(err)
	if !ok || e.Op() != "runs.finish" || e.Code() != perr.ErrorCodeDB {
		t.Fatalf("err = %v", err)
	}
	if len(st.ops) != 1 {
		t.Fatalf("counts should not run after a failed finish: %v", st.ops)
	}
}

func TestNoop(t *testing.T) {
	var l domain.LedgerPort = Noop{}
	if err := l.Start(context.Background(), domain.Run{}); err != nil {
		t.Fatal(err)
	}
	if err := l.Finish(context.Background(), "", domain.Result{}); err != nil {
		t.Fatal(err)
	}
}
