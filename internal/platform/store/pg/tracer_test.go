package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"select 1", "select 1"},
		{"  select   1  ", " select 1 "},
		{"INSERT INTO preprocess_runs\n\t(run_id, started_at)\r\nVALUES ($1,$2)", "INSERT INTO preprocess_runs (run_id, started_at) VALUES ($1,$2)"},
		{"", ""},
	}
	for i, c := range cases {
		if got := compact(c.in); got != c.want {
			t.Fatalf("case %d: compact(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}

func TestTracer_InfoAndWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	type logLine struct {
		Level     string  `json:"level"`
		ElapsedMS float64 `json:"elapsed_ms"`
		Slow      bool    `json:"slow"`
		SQL       string  `json:"sql"`
		Error     string  `json:"error"`
		Message   string  `json:"message"`
		Component string  `json:"component"`
	}

	ev := QueryEvent{
		SQL:       "UPDATE preprocess_runs\n SET finished_at = $2\tWHERE run_id = $1",
		Args:      []any{"id", 2},
		ElapsedUS: 1500,
		Err:       errors.New("boom"),
	}
	tr.OnQuery(context.Background(), ev)

	var line logLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal info log: %v\nraw=%s", err, buf.String())
	}
	// emitted even though the parent logger was at error level
	if line.Level != "info" || line.Slow || line.Message != "pg query" || line.Component != "pg" {
		t.Fatalf("info line mismatch: %+v", line)
	}
	if line.ElapsedMS != 1.5 || line.Error != "boom" {
		t.Fatalf("fields mismatch: %+v", line)
	}
	if line.SQL != "UPDATE preprocess_runs SET finished_at = $2 WHERE run_id = $1" {
		t.Fatalf("sql not compacted: %q", line.SQL)
	}

	buf.Reset()
	ev.Slow = true
	tr.OnQuery(context.Background(), ev)
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal warn log: %v\nraw=%s", err, buf.String())
	}
	if line.Level != "warn" || !line.Slow {
		t.Fatalf("warn line mismatch: %+v", line)
	}
}
