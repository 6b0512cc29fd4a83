package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/Fred-qub/deliriumGame/internal/domain/dialogue"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
)

type capturingPublisher struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (p *capturingPublisher) PublishPresentation(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, s)
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

func instantOptions() Options {
	opts := DefaultOptions()
	opts.FadeIn = 0
	opts.FadeOut = 0
	opts.CharsPerSecond = 0
	return opts
}

func TestSpokenConfiguration(t *testing.T) {
	p := NewPresentation(instantOptions(), nil, logger.NewLogger())

	p.Begin(dialogue.Line{Speaker: dialogue.SpeakerDoctor, Text: "Hello", Mode: dialogue.ModeSpoken}, false)

	snap := p.Snapshot()
	if !snap.SpeakerLabelVisible || snap.SpeakerLabel != "Doctor:" {
		t.Errorf("Expected visible label 'Doctor:', got visible=%v label=%q", snap.SpeakerLabelVisible, snap.SpeakerLabel)
	}
	if snap.Anchor != AnchorBottom {
		t.Errorf("Expected bottom anchor for spoken mode, got %s", snap.Anchor)
	}
	if snap.Font != FontNormal {
		t.Errorf("Expected normal font for spoken mode, got %s", snap.Font)
	}
	if snap.AudioCue != "voice_doctor_muffled" {
		t.Errorf("Expected muffled doctor cue before fitting, got %q", snap.AudioCue)
	}
}

func TestSpokenAudioCueAfterFitting(t *testing.T) {
	p := NewPresentation(instantOptions(), nil, logger.NewLogger())
	p.Begin(dialogue.Line{Speaker: dialogue.SpeakerDoctor, Mode: dialogue.ModeSpoken}, true)

	if cue := p.Snapshot().AudioCue; cue != "voice_doctor_clear" {
		t.Errorf("Expected clear doctor cue after fitting, got %q", cue)
	}
}

func TestMonologueConfiguration(t *testing.T) {
	p := NewPresentation(instantOptions(), nil, logger.NewLogger())

	p.Begin(dialogue.Line{Speaker: dialogue.SpeakerNone, Text: "...", Mode: dialogue.ModeMonologue}, false)

	snap := p.Snapshot()
	if snap.SpeakerLabelVisible || snap.SpeakerLabel != "" {
		t.Error("Monologue must hide the speaker label")
	}
	if snap.Anchor != AnchorCentre {
		t.Errorf("Expected centre anchor for monologue, got %s", snap.Anchor)
	}
	if snap.Font != FontItalic {
		t.Errorf("Expected italic font for monologue, got %s", snap.Font)
	}
	if snap.Portrait != "portrait_inner_voice" {
		t.Errorf("Expected inner-voice portrait, got %q", snap.Portrait)
	}
}

func TestInstantFadeShowsAndHides(t *testing.T) {
	p := NewPresentation(instantOptions(), nil, logger.NewLogger())
	p.Begin(dialogue.Line{Speaker: dialogue.SpeakerArthur, Mode: dialogue.ModeSpoken}, false)

	if !p.FadeIn(context.Background()) {
		t.Fatal("Instant fade-in must not report cancellation")
	}
	snap := p.Snapshot()
	if snap.Phase != PhaseVisible || snap.Alpha != 1 || !snap.Visible {
		t.Errorf("Expected visible at alpha 1, got %+v", snap)
	}

	if !p.FadeOut(context.Background()) {
		t.Fatal("Instant fade-out must not report cancellation")
	}
	snap = p.Snapshot()
	if snap.Phase != PhaseHidden || snap.Alpha != 0 || snap.Visible {
		t.Errorf("Expected hidden at alpha 0, got %+v", snap)
	}
}

func TestHideImmediateIdempotent(t *testing.T) {
	p := NewPresentation(instantOptions(), nil, logger.NewLogger())
	p.Begin(dialogue.Line{Speaker: dialogue.SpeakerDoctor, Mode: dialogue.ModeSpoken}, false)
	p.FadeIn(context.Background())
	p.SetText("mid-line")

	p.HideImmediate()
	first := p.Snapshot()
	p.HideImmediate()
	second := p.Snapshot()

	if first != second {
		t.Errorf("HideImmediate must be idempotent: %+v vs %+v", first, second)
	}
	if second.Phase != PhaseHidden || second.Alpha != 0 || second.Text != "" {
		t.Errorf("Expected hidden, alpha 0, empty text, got %+v", second)
	}
}

func TestPublisherReceivesMutations(t *testing.T) {
	pub := &capturingPublisher{}
	p := NewPresentation(instantOptions(), pub, logger.NewLogger())

	p.Begin(dialogue.Line{Speaker: dialogue.SpeakerDoctor, Mode: dialogue.ModeSpoken}, false)
	p.SetText("He")
	p.HideImmediate()

	if pub.count() < 3 {
		t.Errorf("Expected a snapshot per mutation, got %d", pub.count())
	}
}
