package domain

import (
	"context"

	"atisprep/internal/adapters/ingest/atis"
	"atisprep/internal/core/seq2seq"
	rundom "atisprep/internal/services/runs/domain"
)

// RunnerPort is the external port for one preprocessing run
type RunnerPort interface {
	Run(ctx context.Context, in Input) (Summary, error)
}

// LoaderPort reads the corpus directories
type LoaderPort interface {
	LoadPlusPlus(ctx context.Context, dir string) (*atis.Corpus, error)
	LoadDevUtterances(ctx context.Context, dir string) (atis.DevUtterances, error)
	LoadMultiATIS(ctx context.Context, dir string) ([]atis.MultiATISFile, error)
}

// SinkPort writes one split
type SinkPort interface {
	WriteSplit(ctx context.Context, split string, pairs []seq2seq.Pair) error
}

// Ports are dependencies injected into the preprocess module
type Ports struct {
	Ledger rundom.LedgerPort // optional, nil records nothing
}
