// Package engine - presentation.go
// Presentation state machine for the dialogue box: spoken vs monologue
// configuration, fade phases and the snapshot the rendering layer consumes.
//
// The state is mutated only by the Sequencer; the rendering layer is a
// read-only subscriber via the Publisher.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/domain/dialogue"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
)

// Phase is the visibility phase of the dialogue box.
type Phase string

const (
	PhaseHidden    Phase = "Hidden"
	PhaseFadingIn  Phase = "FadingIn"
	PhaseVisible   Phase = "Visible"
	PhaseFadingOut Phase = "FadingOut"
)

// Anchor is the on-screen position of the dialogue box.
type Anchor string

const (
	AnchorBottom Anchor = "bottom"
	AnchorCentre Anchor = "centre"
)

// FontStyle selects the text rendering style.
type FontStyle string

const (
	FontNormal FontStyle = "normal"
	FontItalic FontStyle = "italic"
)

// Snapshot is the full presentation state pushed to the rendering layer.
type Snapshot struct {
	Visible             bool      `json:"visible"`
	Phase               Phase     `json:"phase"`
	Anchor              Anchor    `json:"anchor"`
	Font                FontStyle `json:"font"`
	SpeakerLabelVisible bool      `json:"speaker_label_visible"`
	SpeakerLabel        string    `json:"speaker_label"`
	Portrait            string    `json:"portrait"`
	Alpha               float64   `json:"alpha"`
	Text                string    `json:"text"`
	AudioCue            string    `json:"audio_cue"`
}

// Publisher receives presentation snapshots after every mutation.
type Publisher interface {
	PublishPresentation(Snapshot)
}

// fadeTicks is how many alpha steps a fade is divided into.
const fadeTicks = 8

// Presentation owns the dialogue box state.
type Presentation struct {
	mu        sync.Mutex
	snap      Snapshot
	publisher Publisher
	logger    *logger.Logger
	opts      Options
}

// NewPresentation creates the presentation state machine. The publisher may
// be nil (headless tests).
func NewPresentation(opts Options, pub Publisher, log *logger.Logger) *Presentation {
	return &Presentation{
		snap: Snapshot{
			Phase:  PhaseHidden,
			Anchor: opts.SpokenAnchor,
			Font:   FontNormal,
		},
		publisher: pub,
		logger:    log,
		opts:      opts,
	}
}

// Begin configures the box for a line and leaves it hidden, ready to fade in.
func (p *Presentation) Begin(line dialogue.Line, hearingAidFitted bool) {
	p.mu.Lock()
	switch line.Mode {
	case dialogue.ModeMonologue:
		p.snap = Snapshot{
			Phase:               PhaseHidden,
			Anchor:              p.opts.MonologueAnchor,
			Font:                FontItalic,
			SpeakerLabelVisible: false,
			SpeakerLabel:        "",
			Portrait:            p.opts.MonologuePortrait,
			AudioCue:            "inner_voice",
		}
	default:
		p.snap = Snapshot{
			Phase:               PhaseHidden,
			Anchor:              p.opts.SpokenAnchor,
			Font:                FontNormal,
			SpeakerLabelVisible: line.Speaker != dialogue.SpeakerNone,
			SpeakerLabel:        line.Speaker.Label(),
			Portrait:            portraitFor(line.Speaker),
			AudioCue:            audioCueFor(line.Speaker, hearingAidFitted),
		}
	}
	p.mu.Unlock()
	p.publish()
}

// SetText updates the revealed portion of the current line.
func (p *Presentation) SetText(text string) {
	p.mu.Lock()
	p.snap.Text = text
	p.mu.Unlock()
	p.publish()
}

// FadeIn raises alpha to 1 over the configured duration. Returns false if the
// context is cancelled mid-fade. A zero duration shows the box instantly.
func (p *Presentation) FadeIn(ctx context.Context) bool {
	return p.fade(ctx, p.opts.FadeIn, PhaseFadingIn, PhaseVisible, 1)
}

// FadeOut lowers alpha to 0 over the configured duration and hides the box.
func (p *Presentation) FadeOut(ctx context.Context) bool {
	return p.fade(ctx, p.opts.FadeOut, PhaseFadingOut, PhaseHidden, 0)
}

func (p *Presentation) fade(ctx context.Context, dur time.Duration, during, after Phase, target float64) bool {
	if dur <= 0 {
		p.mu.Lock()
		p.applyPhase(after, target)
		p.mu.Unlock()
		p.publish()
		return true
	}

	p.mu.Lock()
	start := p.snap.Alpha
	p.snap.Phase = during
	p.snap.Visible = true
	p.mu.Unlock()
	p.publish()

	step := dur / fadeTicks
	for i := 1; i <= fadeTicks; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(step):
		}
		frac := float64(i) / fadeTicks
		p.mu.Lock()
		p.snap.Alpha = start + (target-start)*frac
		p.mu.Unlock()
		p.publish()
	}

	p.mu.Lock()
	p.applyPhase(after, target)
	p.mu.Unlock()
	p.publish()
	return true
}

// applyPhase must be called with the mutex held.
func (p *Presentation) applyPhase(phase Phase, alpha float64) {
	p.snap.Phase = phase
	p.snap.Alpha = alpha
	p.snap.Visible = phase != PhaseHidden
	if phase == PhaseHidden {
		p.snap.Text = ""
	}
}

// HideImmediate forces the box hidden from any phase. Idempotent; used
// defensively before a new sequence so no stale visual state leaks through.
func (p *Presentation) HideImmediate() {
	p.mu.Lock()
	p.applyPhase(PhaseHidden, 0)
	p.snap.AudioCue = ""
	p.mu.Unlock()
	p.publish()
}

// Snapshot returns a copy of the current presentation state.
func (p *Presentation) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *Presentation) publish() {
	if p.publisher == nil {
		return
	}
	p.publisher.PublishPresentation(p.Snapshot())
}

func portraitFor(s dialogue.Speaker) string {
	switch s {
	case dialogue.SpeakerDoctor:
		return "portrait_doctor"
	case dialogue.SpeakerArthur:
		return "portrait_arthur"
	default:
		return ""
	}
}

// audioCueFor keys the voice cue by speaker identity and hearing-aid state.
func audioCueFor(s dialogue.Speaker, fitted bool) string {
	switch s {
	case dialogue.SpeakerDoctor:
		if fitted {
			return "voice_doctor_clear"
		}
		return "voice_doctor_muffled"
	case dialogue.SpeakerArthur:
		return "voice_arthur"
	default:
		return ""
	}
}
