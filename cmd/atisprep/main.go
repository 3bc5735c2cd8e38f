// Command atisprep reformats the MultiATIS++ and MultiATIS corpora into
// flat seq2seq train, dev and test files
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"atisprep/internal/core/version"
	"atisprep/internal/modkit"
	"atisprep/internal/platform/config"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/platform/logger"
	"atisprep/internal/platform/store"

	ppdom "atisprep/internal/services/preprocess/domain"
	ppmod "atisprep/internal/services/preprocess/module"
	runsmod "atisprep/internal/services/runs/module"

	"github.com/google/uuid"
)

const usage = "usage: atisprep [-version] <input_path_mapp> <input_path_ma> <input_path_hi_tr_dev> <output_path>\n"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one preprocessing run and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("atisprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(stderr, usage) }
	showVersion := fs.Bool("version", false, "print build info and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		_ = json.NewEncoder(stdout).Encode(version.Info())
		return 0
	}
	if fs.NArg() != 4 {
		fs.Usage()
		return 2
	}

	opt := logger.FromEnv()
	logFile, err := os.Create(opt.File)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "atisprep: open run log: %v\n", err)
		return 1
	}
	defer func() { _ = logFile.Close() }()
	opt.Writer = stdout
	opt.Sink = logFile
	logger.Init(opt)
	l := logger.Get()

	bi := version.Info()
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("atisprep starting")

	root := config.New()
	pgCfg := root.Prefix("ATISPREP_PGSQL_")
	st, err := store.Open(ctx, store.Config{
		AppName: "atisprep",
		PG: store.PGConfig{
			Enabled:     pgCfg.Has("DBURL"),
			URL:         pgCfg.MayString("DBURL", ""),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		return fail(l, stderr, perr.Wrap(err, perr.ErrorCodeDB, "open run ledger"))
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Log: *l,
		Cfg: root,
		PG:  st.PG,
	}

	runs := runsmod.New(deps)
	pm, err := ppmod.New(deps, ppmod.WithDepsModules(runs))
	if err != nil {
		return fail(l, stderr, err)
	}

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	positional := fs.Args()
	sum, err := pm.Runner().Run(ctx, ppdom.Input{
		PlusPlusDir:  positional[0],
		MultiATISDir: positional[1],
		DevDir:       positional[2],
		OutputDir:    positional[3],
	})
	if err != nil {
		return fail(logger.C(ctx), stderr, err)
	}

	ev := logger.C(ctx).Info().Strs("languages", sum.Languages)
	for _, c := range sum.Counts {
		ev = ev.Int(c.Split, c.Pairs)
	}
	ev.Msg("atisprep done")
	return 0
}

// fail logs err, prints it for the operator and maps it to an exit code
func fail(l *logger.Logger, stderr io.Writer, err error) int {
	ev := l.Error().Err(err).Str("code", perr.CodeOf(err).String())
	if e, ok := perr.As(err); ok {
		if e.Field() != "" {
			ev = ev.Str("field", e.Field())
		}
		if e.Op() != "" {
			ev = ev.Str("op", e.Op())
		}
	}
	ev.Msg("atisprep failed")
	_, _ = fmt.Fprintf(stderr, "atisprep: %v\n", err)
	return perr.ExitCode(err)
}
