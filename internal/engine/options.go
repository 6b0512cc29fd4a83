package engine

import (
	"time"

	"github.com/Fred-qub/deliriumGame/internal/domain/rules"
	"github.com/Fred-qub/deliriumGame/internal/platform/config"
)

// Options carries the author-tunable playback settings in engine terms.
type Options struct {
	WordsPerMinute float64
	MinDisplay     time.Duration
	CharsPerSecond float64
	FadeIn         time.Duration
	FadeOut        time.Duration

	Garble rules.GarbleParams

	// SingleSkipDismisses makes the press that completes the reveal also
	// dismiss the line. When false, dismissal takes a second press.
	SingleSkipDismisses bool

	// HandshakeTimeout is the fallback for the animation handshake.
	// Zero preserves the historical behavior: wait forever.
	HandshakeTimeout time.Duration

	SpokenAnchor      Anchor
	MonologueAnchor   Anchor
	MonologuePortrait string
}

// DefaultOptions mirrors the shipped tuning defaults.
func DefaultOptions() Options {
	return OptionsFromTuning(config.DefaultTuning())
}

// OptionsFromTuning maps a tuning file onto engine options.
func OptionsFromTuning(t config.Tuning) Options {
	policy := rules.GarbleProbabilistic
	if t.GarblePolicy == string(rules.GarblePeriodic) {
		policy = rules.GarblePeriodic
	}

	return Options{
		WordsPerMinute:      t.WordsPerMinute,
		MinDisplay:          t.MinDisplay(),
		CharsPerSecond:      t.CharsPerSecond,
		FadeIn:              t.FadeIn(),
		FadeOut:             t.FadeOut(),
		Garble:              rules.GarbleParams{Density: t.GarbleDensity, Policy: policy},
		SingleSkipDismisses: t.SingleSkipDismisses,
		HandshakeTimeout:    t.HandshakeTimeout(),
		SpokenAnchor:        anchorFrom(t.SpokenAnchor, AnchorBottom),
		MonologueAnchor:     anchorFrom(t.MonologueAnchor, AnchorCentre),
		MonologuePortrait:   t.MonologuePortrait,
	}
}

func anchorFrom(s string, fallback Anchor) Anchor {
	switch Anchor(s) {
	case AnchorBottom, AnchorCentre:
		return Anchor(s)
	default:
		return fallback
	}
}
