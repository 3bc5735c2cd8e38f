package repokit

import (
	"context"
	"errors"
	"testing"

	kit "atisprep/internal/platform/testkit"
)

type fakeQ struct{}

func (f *fakeQ) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	var z CommandTag
	return z, nil
}

func (f *fakeQ) QueryRow(ctx context.Context, sql string, args ...any) Row {
	var z Row
	return z
}

type fakeTx struct {
	fakeQ
	calls int
}

func (f *fakeTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	f.calls++
	return fn(&f.fakeQ)
}

var (
	_ Queryer  = (*fakeQ)(nil)
	_ TxRunner = (*fakeTx)(nil)
)

func TestBindFunc_BindCallsFunc(t *testing.T) {
	t.Parallel()

	var q Queryer // nil is fine; BindFunc doesn't use it
	b := BindFunc[string](func(_ Queryer) string { return "ok" })
	if got := b.Bind(q); got != "ok" {
		t.Fatalf("BindFunc.Bind = %q, want ok", got)
	}
}

func TestRequireQueryer(t *testing.T) {
	t.Parallel()

	var nilQ Queryer
	kit.MustPanic(t, func() { _ = RequireQueryer(nilQ) })
	kit.MustPanic(t, func() { _ = MustBind[int](BindFunc[int](func(Queryer) int { return 1 }), nilQ) })

	in := Queryer(&fakeQ{})
	if RequireQueryer(in) != in {
		t.Fatalf("RequireQueryer did not return the same instance")
	}
}

func TestWithTx_Delegates(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	want := errors.New("inner")
	err := WithTx(context.Background(), tx, func(q Queryer) error {
		if q == nil {
			t.Fatalf("nil queryer inside tx")
		}
		return want
	})
	if !errors.Is(err, want) || tx.calls != 1 {
		t.Fatalf("WithTx err=%v calls=%d", err, tx.calls)
	}
}
