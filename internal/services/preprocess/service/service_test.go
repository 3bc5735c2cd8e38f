package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"atisprep/internal/adapters/ingest/atis"
	"atisprep/internal/core/seq2seq"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/platform/logger"
	kit "atisprep/internal/platform/testkit"
	"atisprep/internal/services/preprocess/domain"
	rundom "atisprep/internal/services/runs/domain"
)

const header = "id\tutterance\tslot_labels\tintent\n"

func maRow(intent, utt, slots string) string {
	return strings.Join([]string{"0", "english", "O", intent, utt, slots}, "\t") + "\n"
}

type fixture struct {
	in  domain.Input
	out string
}

// newFixture lays out the three input trees and an output dir
func newFixture(t *testing.T, mapp, ma, dev map[string]string) fixture {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	return fixture{
		in: domain.Input{
			PlusPlusDir:  kit.WriteTree(t, mapp),
			MultiATISDir: kit.WriteTree(t, ma),
			DevDir:       kit.WriteTree(t, dev),
			OutputDir:    out,
		},
		out: out,
	}
}

func (f fixture) lines(t *testing.T, split, suffix string) []string {
	t.Helper()
	return kit.ReadLines(t, filepath.Join(f.out, split+"."+suffix))
}

type fakeLedger struct {
	started  []rundom.Run
	finished []rundom.Result
	ids      []string
}

func (f *fakeLedger) Start(_ context.Context, r rundom.Run) error {
	f.started = append(f.started, r)
	return nil
}

func (f *fakeLedger) Finish(_ context.Context, id string, res rundom.Result) error {
	f.ids = append(f.ids, id)
	f.finished = append(f.finished, res)
	return nil
}

func newService(l rundom.LedgerPort) *Service {
	return New(atis.Loader{}, l, Config{})
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t,
		map[string]string{
			"train_EN.tsv": header + "1\tFlights from Boston to Denver\tO O B-fromloc.city_name O B-toloc.city_name\tatis_flight\n",
			"dev_EN.tsv":   header + "2\tShow Fares\tO O\tatis_airfare\n",
			"test_DE.tsv":  header + "3\tFlüge nach Denver\tO O B-toloc.city_name\tatis_flight\n",
		},
		map[string]string{
			"Hindi-train_1600.tsv": maRow("atis_flight", "Boston Se Denver", "B-fromloc.city_name O B-toloc.city_name") +
				maRow("atis_airfare", "Kiraya Batao", "O O"),
			"Turkish-train_638.tsv": maRow("atis_flight", "Denver'a uçuş", "B-toloc.city_name O"),
			"Turkish-test.tsv":      maRow("atis_flight", "Boston uçuş", "B-fromloc.city_name O"),
		},
		map[string]string{
			"dev_HI.tsv": header + "9\tKiraya Batao\tO O\tatis_airfare\n",
			"dev_TR.tsv": header,
		},
	)
	ledger := &fakeLedger{}
	s := newService(ledger)

	ctx := logger.WithRun(context.Background(), "run-e2e")
	sum, err := s.Run(ctx, f.in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	trainIn := f.lines(t, domain.SplitTrain, "input")
	trainOut := f.lines(t, domain.SplitTrain, "output")
	if trainIn[0] != "flights from boston to denver" {
		t.Fatalf("mapp input should be lowercased: %q", trainIn[0])
	}
	if want := "boston <B-fromloc.city_name> denver <B-toloc.city_name> <intent-flight> <lang-en>"; trainOut[0] != want {
		t.Fatalf("train.output[0] = %q, want %q", trainOut[0], want)
	}
	// 1 mapp + 3 hindi copies + 7 turkish copies
	if len(trainIn) != 11 || len(trainOut) != 11 {
		t.Fatalf("train lines = %d/%d, want 11", len(trainIn), len(trainOut))
	}
	hi := 0
	for i, l := range trainIn {
		if l == "Boston Se Denver" {
			hi++
			if trainOut[i] != "Boston <B-fromloc.city_name> Denver <B-toloc.city_name> <intent-flight> <lang-hi>" {
				t.Fatalf("hindi output = %q", trainOut[i])
			}
		}
	}
	if hi != 3 {
		t.Fatalf("hindi copies = %d, want 3", hi)
	}

	devIn := f.lines(t, domain.SplitDev, "input")
	if len(devIn) != 2 || devIn[0] != "show fares" || devIn[1] != "Kiraya Batao" {
		t.Fatalf("dev.input = %q", devIn)
	}
	testOut := f.lines(t, domain.SplitTest, "output")
	if len(testOut) != 2 || testOut[0] != "denver <B-toloc.city_name> <intent-flight> <lang-de>" || testOut[1] != "Boston <B-fromloc.city_name> <intent-flight> <lang-tr>" {
		t.Fatalf("test.output = %q", testOut)
	}

	if sum.RunID != "run-e2e" || len(sum.Languages) != 2 || sum.Languages[0] != "en" {
		t.Fatalf("summary = %+v", sum)
	}
	if len(ledger.started) != 1 || ledger.started[0].ID != "run-e2e" || ledger.started[0].OutputPath != f.out {
		t.Fatalf("ledger start = %+v", ledger.started)
	}
	if len(ledger.finished) != 1 || ledger.ids[0] != "run-e2e" || ledger.finished[0].Splits[0].Pairs != 11 {
		t.Fatalf("ledger finish = %+v", ledger.finished)
	}
}

func TestRun_LineCountsMatchPerSplit(t *testing.T) {
	f := newFixture(t,
		map[string]string{"train_EN.tsv": header + "1\ta b\tO O\tatis_x\n2\tc\tB-y\tatis_x\n"},
		map[string]string{"Turkish-dev.tsv": maRow("atis_x", "d e", "O B-z")},
		map[string]string{"dev_TR.tsv": header},
	)
	if _, err := newService(nil).Run(context.Background(), f.in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, split := range domain.SplitNames {
		in, out := f.lines(t, split, "input"), f.lines(t, split, "output")
		if len(in) != len(out) {
			t.Fatalf("%s: %d inputs vs %d outputs", split, len(in), len(out))
		}
		for i := range in {
			if seq2seq.SlotTokens(out[i]) > len(strings.Fields(in[i])) {
				t.Fatalf("%s:%d output has more tokens than input", split, i)
			}
		}
	}
}

func TestMerge_DevOccurrencesBoundRouting(t *testing.T) {
	ma := kit.WriteTree(t, map[string]string{
		"Hindi-test.tsv": strings.Repeat(maRow("atis_flight", "same utterance", "O O"), 4),
	})
	s := newService(nil)
	ds := domain.NewDataset()
	dev := domain.NewDevSet(map[string][]string{"hi": {"same utterance", "same utterance"}})

	if err := s.Merge(context.Background(), ma, ds, dev); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if ds.Len(domain.SplitDev) != 2 || ds.Len(domain.SplitTest) != 2 {
		t.Fatalf("dev=%d test=%d, want 2/2", ds.Len(domain.SplitDev), ds.Len(domain.SplitTest))
	}
	if dev.Len() != 0 {
		t.Fatalf("dev set should be drained, %d left", dev.Len())
	}
}

func TestMerge_DevMatchBeatsOversampling(t *testing.T) {
	ma := kit.WriteTree(t, map[string]string{
		"Turkish-train.tsv": maRow("atis_flight", "ucus", "O") + maRow("atis_flight", "ucus", "O"),
	})
	s := New(atis.Loader{}, nil, Config{CopiesTurkish: 2})
	ds := domain.NewDataset()
	dev := domain.NewDevSet(map[string][]string{"tr": {"ucus"}, "hi": {"ucus"}})

	if err := s.Merge(context.Background(), ma, ds, dev); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if ds.Len(domain.SplitDev) != 1 || ds.Len(domain.SplitTrain) != 2 {
		t.Fatalf("dev=%d train=%d, want 1/2", ds.Len(domain.SplitDev), ds.Len(domain.SplitTrain))
	}
	if got := dev.Remaining("hi"); len(got) != 1 {
		t.Fatalf("hindi dev entry must not be consumed by a turkish row: %v", got)
	}
}

func TestMerge_UnknownSplitFails(t *testing.T) {
	ma := kit.WriteTree(t, map[string]string{"Hindi-validation.tsv": maRow("atis_flight", "x", "O")})
	err := newService(nil).Merge(context.Background(), ma, domain.NewDataset(), domain.NewDevSet(nil))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if e, _ := perr.As(err); e.Op() != "preprocess.merge" {
		t.Fatalf("op = %q", e.Op())
	}
}

func TestReformat_UnknownSplitFails(t *testing.T) {
	c := atis.NewCorpus()
	c.Put("en", "valid", atis.Record{ID: 1, Utterance: "x"})
	_, err := newService(nil).Reformat(context.Background(), c)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	kit.MustContain(t, err.Error(), `unknown split "valid"`)
}

func TestReformat_OrderAndIntentAcrossLanguages(t *testing.T) {
	c := atis.NewCorpus()
	c.Put("de", "train", atis.Record{ID: 5, Utterance: "Nach DENVER", SlotTags: []string{"O", "B-toloc.city_name"}, Intent: "flight"})
	c.Put("en", "train", atis.Record{ID: 1, Utterance: "To Denver", SlotTags: []string{"O", "B-toloc.city_name"}, Intent: "flight"})
	c.Put("de", "train", atis.Record{ID: 2, Utterance: "Preis", SlotTags: []string{"O"}, Intent: "airfare"})

	ds, err := newService(nil).Reformat(context.Background(), c)
	if err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	ps := ds.Pairs(domain.SplitTrain)
	got := []string{ps[0].Output, ps[1].Output, ps[2].Output}
	want := []string{
		"denver <B-toloc.city_name> <intent-flight> <lang-de>",
		"<intent-airfare> <lang-de>",
		"denver <B-toloc.city_name> <intent-flight> <lang-en>",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pair %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRun_ValidationAndLoadErrors(t *testing.T) {
	s := newService(nil)
	_, err := s.Run(context.Background(), domain.Input{PlusPlusDir: t.TempDir()})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if e, _ := perr.As(err); e.Field() != "input_path_ma" {
		t.Fatalf("field = %q", e.Field())
	}

	f := newFixture(t,
		map[string]string{"train_EN.tsv": header + "1\tto\n"},
		map[string]string{},
		map[string]string{},
	)
	if _, err := s.Run(context.Background(), f.in); !perr.IsCode(err, perr.ErrorCodeParse) {
		t.Fatalf("short row err = %v", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	f := newFixture(t,
		map[string]string{"train_EN.tsv": header},
		map[string]string{},
		map[string]string{},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newService(nil).Run(ctx, f.in); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}
