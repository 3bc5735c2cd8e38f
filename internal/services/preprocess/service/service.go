// Package service implements the preprocess pipeline
// MultiATIS++ is loaded and reformatted, then MultiATIS Hindi and Turkish rows
// are merged in with dev routing and train oversampling, then all splits are written
package service

import (
	"context"
	"time"

	"atisprep/internal/adapters/ingest/atis"
	"atisprep/internal/adapters/sink/files"
	"atisprep/internal/core/normalize"
	"atisprep/internal/core/seq2seq"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/platform/logger"
	"atisprep/internal/platform/validate"
	"atisprep/internal/services/preprocess/domain"
	rundom "atisprep/internal/services/runs/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config for the preprocess service
type Config struct {
	CopiesHindi   int // train copies of an unmatched Hindi row
	CopiesTurkish int // train copies of an unmatched Turkish row
	Formatter     seq2seq.Formatter
}

// Service implements domain.RunnerPort
type Service struct {
	Loader  domain.LoaderPort
	NewSink func(dir string) (domain.SinkPort, error)
	Ledger  rundom.LedgerPort
	Norm    *normalize.Normalizer
	Cfg     Config
}

// New constructs a new preprocess service
// a nil ledger records nothing
func New(loader domain.LoaderPort, ledger rundom.LedgerPort, cfg Config) *Service {
	if cfg.CopiesHindi <= 0 {
		cfg.CopiesHindi = 3
	}
	if cfg.CopiesTurkish <= 0 {
		cfg.CopiesTurkish = 7
	}
	return &Service{
		Loader:  loader,
		NewSink: fileSink,
		Ledger:  ledger,
		Norm:    normalize.New(),
		Cfg:     cfg,
	}
}

func fileSink(dir string) (domain.SinkPort, error) {
	w, err := files.New(dir)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Run executes the whole pipeline for in
func (s *Service) Run(ctx context.Context, in domain.Input) (domain.Summary, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Summary{}, err
	}

	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logger.WithRun(ctx, runID)
	}
	log := s.log(ctx)
	started := time.Now()

	if err := s.ledger().Start(ctx, rundom.Run{
		ID:             runID,
		StartedAt:      started.UTC(),
		InputPlusPlus:  in.PlusPlusDir,
		InputMultiATIS: in.MultiATISDir,
		InputDev:       in.DevDir,
		OutputPath:     in.OutputDir,
	}); err != nil {
		return domain.Summary{}, err
	}

	corpus, err := s.LoadCorpus(ctx, in.PlusPlusDir)
	if err != nil {
		return domain.Summary{}, err
	}
	ds, err := s.Reformat(ctx, corpus)
	if err != nil {
		return domain.Summary{}, err
	}
	dev, err := s.LoadDevSet(ctx, in.DevDir)
	if err != nil {
		return domain.Summary{}, err
	}
	if err := s.Merge(ctx, in.MultiATISDir, ds, dev); err != nil {
		return domain.Summary{}, err
	}
	if err := s.Write(ctx, in.OutputDir, ds); err != nil {
		return domain.Summary{}, err
	}

	sum := domain.Summary{RunID: runID, Languages: corpus.Languages(), Counts: ds.Counts()}
	splits := make([]rundom.SplitCount, 0, len(sum.Counts))
	for _, c := range sum.Counts {
		splits = append(splits, rundom.SplitCount{Split: c.Split, Pairs: c.Pairs})
	}
	if err := s.ledger().Finish(ctx, runID, rundom.Result{
		FinishedAt: time.Now().UTC(),
		Languages:  sum.Languages,
		Splits:     splits,
	}); err != nil {
		return domain.Summary{}, err
	}

	ev := log.Info().Dur("elapsed", time.Since(started))
	for _, c := range sum.Counts {
		ev = ev.Int(c.Split, c.Pairs)
	}
	ev.Msg("preprocess finished")
	return sum, nil
}

// LoadCorpus reads the MultiATIS++ directory
func (s *Service) LoadCorpus(ctx context.Context, dir string) (*atis.Corpus, error) {
	c, err := s.Loader.LoadPlusPlus(ctx, dir)
	if err != nil {
		return nil, err
	}
	log := s.log(ctx)
	log.Info().Strs("languages", c.Languages()).Int("records", c.Len()).Msg("processed languages from multiatis++")
	if lang, split, r, ok := c.First(); ok {
		log.Info().
			Str("lang", lang).
			Str("split", split).
			Int("id", r.ID).
			Str("utterance", r.Utterance).
			Strs("slots", r.SlotTags).
			Str("intent", r.Intent).
			Msg("example record")
	}
	return c, nil
}

// Reformat turns every corpus record into a lowercased pair
// languages, splits and records are visited in corpus order
func (s *Service) Reformat(ctx context.Context, c *atis.Corpus) (*domain.Dataset, error) {
	ds := domain.NewDataset()
	for _, lt := range c.Tables() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, st := range lt.Splits() {
			if !domain.KnownSplit(st.Split) {
				return nil, perr.WithOp(perr.InvalidArgf("unknown split %q for language %s", st.Split, lt.Lang), "preprocess.reformat")
			}
			for _, r := range st.Records() {
				utt := s.Norm.Lower(r.Utterance)
				p := seq2seq.Pair{
					Input:  utt,
					Output: s.Cfg.Formatter.Target(s.Norm.Fields(utt), r.SlotTags, r.Intent, lt.Lang),
				}
				if err := ds.Append(st.Split, p, 1); err != nil {
					return nil, perr.WithOp(err, "preprocess.reformat")
				}
			}
		}
	}
	s.logFirstPairs(ctx, ds)
	return ds, nil
}

// LoadDevSet reads the Hindi and Turkish dev utterances
func (s *Service) LoadDevSet(ctx context.Context, dir string) (*domain.DevSet, error) {
	src, err := s.Loader.LoadDevUtterances(ctx, dir)
	if err != nil {
		return nil, err
	}
	dev := domain.NewDevSet(src)
	ev := s.log(ctx).Info()
	for _, lang := range dev.Languages() {
		ev = ev.Int(lang, len(src[lang]))
	}
	ev.Msg("loaded dev utterances")
	return dev, nil
}

// Merge adds the MultiATIS rows of dir to ds
// a row whose raw utterance is still in dev goes to dev, unmatched Hindi and
// Turkish train rows are oversampled, anything else keeps its own split
func (s *Service) Merge(ctx context.Context, dir string, ds *domain.Dataset, dev *domain.DevSet) error {
	mfs, err := s.Loader.LoadMultiATIS(ctx, dir)
	if err != nil {
		return err
	}
	log := s.log(ctx)
	for _, mf := range mfs {
		if err := ctx.Err(); err != nil {
			return err
		}
		lang, split := mf.Name.Lang, mf.Name.Split
		log.Info().Str("file", mf.Path).Str("lang", lang).Str("split", split).Int("rows", len(mf.Rows)).Msg("merging multiatis file")

		for _, row := range mf.Rows {
			p := s.Cfg.Formatter.Pair(row.Utterance, row.SlotTags, row.Intent, lang)
			target, copies := s.route(dev, lang, split, row.Utterance)
			if err := ds.Append(target, p, copies); err != nil {
				return perr.WithField(perr.WithOp(err, "preprocess.merge"), mf.Path)
			}
		}
	}

	d := zerolog.Dict()
	for _, lang := range dev.Languages() {
		d = d.Strs(lang, dev.Remaining(lang))
	}
	log.Info().Int("remaining", dev.Len()).Dict("dev_set", d).Msg("hi and tr dev sets after merge")
	return nil
}

// route picks the destination split and copy count for one MultiATIS row
func (s *Service) route(dev *domain.DevSet, lang, split, utt string) (string, int) {
	switch {
	case dev.Consume(lang, utt):
		return domain.SplitDev, 1
	case lang == domain.LangHindi && split == domain.SplitTrain:
		return domain.SplitTrain, s.Cfg.CopiesHindi
	case lang == domain.LangTurkish && split == domain.SplitTrain:
		return domain.SplitTrain, s.Cfg.CopiesTurkish
	default:
		return split, 1
	}
}

// Write writes every split of ds below dir
func (s *Service) Write(ctx context.Context, dir string, ds *domain.Dataset) error {
	sink, err := s.NewSink(dir)
	if err != nil {
		return err
	}
	log := s.log(ctx)
	for _, split := range domain.SplitNames {
		if err := sink.WriteSplit(ctx, split, ds.Pairs(split)); err != nil {
			return perr.WithOp(err, "preprocess.write")
		}
		log.Debug().Str("split", split).Int("pairs", ds.Len(split)).Msg("wrote split")
	}
	return nil
}

func (s *Service) logFirstPairs(ctx context.Context, ds *domain.Dataset) {
	log := s.log(ctx)
	for _, split := range domain.SplitNames {
		ps := ds.Pairs(split)
		if len(ps) == 0 {
			continue
		}
		log.Info().Str("split", split).Str("input", ps[0].Input).Str("output", ps[0].Output).Msg("example pair")
	}
}

func (s *Service) ledger() rundom.LedgerPort {
	if s.Ledger == nil {
		return noLedger{}
	}
	return s.Ledger
}

func (s *Service) log(ctx context.Context) *logger.Logger {
	l := logger.C(ctx).With().Str("component", "preprocess").Logger()
	return &l
}

type noLedger struct{}

func (noLedger) Start(context.Context, rundom.Run) error            { return nil }
func (noLedger) Finish(context.Context, string, rundom.Result) error { return nil }
