package module

import (
	"atisprep/internal/core/seq2seq"
	"atisprep/internal/platform/config"
	"atisprep/internal/platform/validate"
)

// Options holds configuration settings for the preprocess module
// a blank IntentPrefix keeps intent labels as they are
type Options struct {
	IntentPrefix  string `name:"ATISPREP_INTENT_PREFIX"`
	OutsideTag    string `name:"ATISPREP_OUTSIDE_TAG" validate:"required"`
	CopiesHindi   int    `name:"ATISPREP_TRAIN_COPIES_HI" validate:"min=1"`
	CopiesTurkish int    `name:"ATISPREP_TRAIN_COPIES_TR" validate:"min=1"`
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("ATISPREP_")
	return Options{
		IntentPrefix:  pc.Lookup("INTENT_PREFIX", seq2seq.DefaultIntentPrefix),
		OutsideTag:    pc.MayString("OUTSIDE_TAG", seq2seq.DefaultOutsideTag),
		CopiesHindi:   pc.MayInt("TRAIN_COPIES_HI", 3),
		CopiesTurkish: pc.MayInt("TRAIN_COPIES_TR", 7),
	}
}

// Validate checks the resolved options
func (o Options) Validate() error { return validate.Struct(o) }

// Formatter returns the target line formatter for these options
func (o Options) Formatter() seq2seq.Formatter {
	return seq2seq.Formatter{
		OutsideTag:   o.OutsideTag,
		IntentPrefix: o.IntentPrefix,
		KeepIntent:   o.IntentPrefix == "",
	}
}
