package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "atisprep/internal/platform/testkit"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

func TestInit_Get_Named_C_WithRun(t *testing.T) {
	var console, sink bytes.Buffer

	Init(Options{
		Level:      "debug",
		Format:     "console",
		Service:    "svc-a",
		Component:  "root",
		Writer:     &console,
		Sink:       &sink,
		WithCaller: true,
		StaticFields: map[string]string{
			"build": "test",
		},
	})

	Get().Info().Str("k", "v").Msg("root-msg")
	Named("loader").Info().Msg("named-msg")

	ctx := WithRun(context.Background(), "run-123")
	C(ctx).Info().Msg("ctx-msg")
	C(context.Background()).Info().Msg("ctx-empty")

	out := console.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "ctx-msg")
	kit.MustContain(t, out, "component=")
	kit.MustContain(t, out, "loader")
	kit.MustContain(t, out, "run_id=")
	kit.MustContain(t, out, "run-123")
	kit.MustContain(t, out, "build=")
	kit.MustContain(t, out, "service=")

	// the sink gets structured lines, not console formatting
	js := sink.String()
	kit.MustContain(t, js, `"message":"ctx-msg"`)
	kit.MustContain(t, js, `"run_id":"run-123"`)
	kit.MustContain(t, js, `"component":"loader"`)
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_COMPONENT", "comp-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_FILE", "/tmp/run.log")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "svc-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.File != "/tmp/run.log" {
		t.Fatalf("FromEnv caller/file mismatch: %+v", opt)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "")
	opt := FromEnv()
	if opt.File != DefaultFile {
		t.Fatalf("File = %q, want %q", opt.File, DefaultFile)
	}
	if opt.Level != "info" {
		t.Fatalf("Level = %q, want info", opt.Level)
	}
}

func TestWithRun_Empty(t *testing.T) {
	ctx := WithRun(context.Background(), "")
	if got := RunID(ctx); got != "" {
		t.Fatalf("RunID = %q, want empty", got)
	}
	if C(ctx) != Get() {
		t.Fatalf("C without run id should return the root logger")
	}
}
