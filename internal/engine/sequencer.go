// Package engine - sequencer.go
// The dialogue sequencer: runs one cancellable sequence of steps at a time,
// driving the presentation state machine, the garbling codec and the
// typewriter, and suspending on the animation handshake.
package engine

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/domain/dialogue"
	"github.com/Fred-qub/deliriumGame/internal/domain/rules"
	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/platform/metrics"
)

// State is the sequencer's coarse state.
type State string

const (
	StateIdle    State = "Idle"
	StateRunning State = "Running"
)

// HearingAidInteraction is the ledger name the hearing-aid query delegates to.
const HearingAidInteraction = "HearingAid"

// InteractionQuery is the sequencer's read-only view of the interaction ledger.
type InteractionQuery interface {
	HasInteractedWith(name string) bool
}

type runSignals struct {
	skip     chan struct{}
	dismiss  chan struct{}
	external chan struct{}
}

// Sequencer plays dialogue sequences. Only one sequence runs at a time;
// starting a new one cancels the current one synchronously, forcing the
// presentation to Hidden before the new sequence's first step.
type Sequencer struct {
	pres     *Presentation
	opts     Options
	query    InteractionQuery
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector
	rng      *rand.Rand

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	signals   runSignals
	state     State
	stepIndex int
	current   string
	sceneID   string
}

// NewSequencer wires the sequencer to its collaborators. The interaction
// query may be nil, in which case the hearing aid is never fitted.
func NewSequencer(pres *Presentation, opts Options, query InteractionQuery, eventLog *events.EventLog, log *logger.Logger) *Sequencer {
	return &Sequencer{
		pres:     pres,
		opts:     opts,
		query:    query,
		eventLog: eventLog,
		logger:   log,
		metrics:  metrics.Get(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		state:    StateIdle,
		sceneID:  "Doctor",
	}
}

// SetScene labels emitted events with the active scene identifier.
func (s *Sequencer) SetScene(id string) {
	s.mu.Lock()
	s.sceneID = id
	s.mu.Unlock()
}

// State returns Idle or Running.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StepIndex returns the index of the step currently executing.
func (s *Sequencer) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepIndex
}

// CurrentSequence returns the name of the active sequence, empty when idle.
func (s *Sequencer) CurrentSequence() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return ""
	}
	return s.current
}

// Play starts a sequence, cancelling any in-flight one first. It returns
// once the previous sequence (if any) has been torn down and the new one is
// running; callers never observe overlapping visual state.
func (s *Sequencer) Play(seq dialogue.Sequence) {
	s.start(seq)
}

// PlayAndWait runs a sequence to completion. Returns false if the sequence
// was cancelled, either by ctx or by a newer Play call.
func (s *Sequencer) PlayAndWait(ctx context.Context, seq dialogue.Sequence) bool {
	done := s.start(seq)
	select {
	case <-done:
		return true
	case <-ctx.Done():
		s.Cancel()
		return false
	}
}

// Cancel tears down the active sequence, forcing the presentation to Hidden
// before returning. No-op when idle.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sequencer) start(seq dialogue.Sequence) <-chan struct{} {
	s.mu.Lock()
	// A competing Play may install a fresh run while we wait out the old
	// one's teardown, so re-check after every wait until the slots are free.
	for s.cancel != nil {
		cancel, done := s.cancel, s.done
		s.mu.Unlock()
		cancel()
		<-done
		s.mu.Lock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sig := runSignals{
		skip:     make(chan struct{}, 1),
		dismiss:  make(chan struct{}, 1),
		external: make(chan struct{}, 1),
	}
	s.cancel = cancel
	s.done = done
	s.signals = sig
	s.state = StateRunning
	s.stepIndex = 0
	s.current = seq.Name
	s.mu.Unlock()

	go s.run(ctx, cancel, seq, done, sig)
	return done
}

func (s *Sequencer) run(ctx context.Context, cancel context.CancelFunc, seq dialogue.Sequence, done chan struct{}, sig runSignals) {
	defer close(done)
	defer s.finish(ctx, cancel, seq.Name, done)

	// Guarantee no stale visual state leaks between sequences.
	s.pres.HideImmediate()

	s.metrics.RecordSequenceStart()
	s.appendEvent(events.SceneEvent{
		Type:     events.EventTypeSequenceStarted,
		ActorID:  "Sequencer",
		TargetID: seq.Name,
		Payload:  map[string]interface{}{"steps": len(seq.Steps)},
	})

	for i, step := range seq.Steps {
		s.setStep(i)

		var ok bool
		switch step.Kind {
		case dialogue.StepShowLine:
			ok = s.runLine(ctx, step, sig)
		case dialogue.StepWaitSignal:
			ok = s.runHandshake(ctx, sig)
		case dialogue.StepCallback:
			if step.Callback != nil {
				step.Callback()
			}
			ok = true
		default:
			s.logger.Warn("Unknown step kind %q in sequence %s, skipping", step.Kind, seq.Name)
			ok = true
		}

		if !ok {
			return
		}
	}
}

func (s *Sequencer) finish(ctx context.Context, cancel context.CancelFunc, name string, done chan struct{}) {
	cancelled := ctx.Err() != nil
	cancel()

	if cancelled {
		s.pres.HideImmediate()
		s.metrics.RecordSequenceCancel()
		s.appendEvent(events.SceneEvent{
			Type:     events.EventTypeSequenceCancelled,
			ActorID:  "Sequencer",
			TargetID: name,
		})
	} else {
		s.metrics.RecordSequenceComplete()
		s.appendEvent(events.SceneEvent{
			Type:     events.EventTypeSequenceCompleted,
			ActorID:  "Sequencer",
			TargetID: name,
		})
	}

	s.mu.Lock()
	// A newer Play may already own the slots; only release our own.
	if s.done == done {
		s.cancel = nil
		s.done = nil
		s.signals = runSignals{}
		s.state = StateIdle
		s.current = ""
	}
	s.mu.Unlock()
}

func (s *Sequencer) setStep(i int) {
	s.mu.Lock()
	s.stepIndex = i
	s.mu.Unlock()
}

// runLine executes one ShowLine step: configure presentation, fade in,
// reveal, hold, fade out. Returns false on cancellation.
func (s *Sequencer) runLine(ctx context.Context, step dialogue.Step, sig runSignals) bool {
	// Absent line text skips the step rather than erroring.
	if strings.TrimSpace(step.Text) == "" {
		return true
	}

	// Skip and dismiss are per-step signals; drop anything stale.
	drain(sig.skip)
	drain(sig.dismiss)

	fitted := s.hearingAidFitted()
	garbled := step.Garble == dialogue.GarbleAlways ||
		(step.Garble == dialogue.GarbleAuto && !fitted)

	text := step.Text
	if garbled {
		text = rules.Garble(text, s.opts.Garble, s.rng)
	}

	line := dialogue.Line{Speaker: step.Speaker, Text: text, Mode: step.Mode, Garbled: garbled}

	// The display timer runs from the start of the step, in parallel with
	// the reveal.
	hold := time.NewTimer(rules.DisplayDuration(step.Text, s.opts.WordsPerMinute, s.opts.MinDisplay))
	defer hold.Stop()

	s.pres.Begin(line, fitted)
	if !s.pres.FadeIn(ctx) {
		return false
	}

	completed, skippedReveal := revealText(ctx, text, s.opts.CharsPerSecond, sig.skip, s.pres.SetText)
	if !completed {
		return false
	}

	s.metrics.RecordLine(garbled)
	s.appendEvent(events.SceneEvent{
		Type:    events.EventTypeLineShown,
		ActorID: string(line.Speaker),
		Payload: map[string]interface{}{
			"mode":    string(line.Mode),
			"garbled": garbled,
			"words":   rules.WordCount(step.Text),
		},
	})

	// Hold the line until the timer elapses or, for dismissible lines, the
	// player dismisses. Dismissal can never land before the reveal has
	// completed; we only listen for it from here on.
	holdNeeded := true
	if step.Dismissible && skippedReveal && s.opts.SingleSkipDismisses {
		holdNeeded = false
	}

	if holdNeeded {
		if step.Dismissible {
			select {
			case <-ctx.Done():
				return false
			case <-hold.C:
			case <-sig.dismiss:
			case <-sig.skip: // second press of the same input
			}
		} else {
			select {
			case <-ctx.Done():
				return false
			case <-hold.C:
			}
		}
	}

	return s.pres.FadeOut(ctx)
}

// runHandshake suspends the sequence until the external animation system
// signals completion. With no timeout configured this wait is unbounded and
// only a cancelling Play can end it.
func (s *Sequencer) runHandshake(ctx context.Context, sig runSignals) bool {
	s.metrics.RecordHandshakeWait()
	s.appendEvent(events.SceneEvent{
		Type:    events.EventTypeHandshakeWait,
		ActorID: "Sequencer",
	})

	timedOut := false
	if s.opts.HandshakeTimeout > 0 {
		fallback := time.NewTimer(s.opts.HandshakeTimeout)
		defer fallback.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-sig.external:
		case <-fallback.C:
			s.logger.Warn("Animation handshake timed out after %v, assuming complete", s.opts.HandshakeTimeout)
			s.metrics.RecordHandshakeTimeout()
			timedOut = true
		}
	} else {
		select {
		case <-ctx.Done():
			return false
		case <-sig.external:
		}
	}

	s.appendEvent(events.SceneEvent{
		Type:    events.EventTypeHandshakeComplete,
		ActorID: "Sequencer",
		Payload: map[string]interface{}{"timed_out": timedOut},
	})
	return true
}

// Skip completes the current character reveal instantly. Edge-triggered;
// dropped when no reveal is pending.
func (s *Sequencer) Skip() {
	s.metrics.RecordSkip()
	s.mu.Lock()
	ch := s.signals.skip
	s.mu.Unlock()
	signal(ch)
}

// Dismiss ends the post-reveal hold of a dismissible line early.
func (s *Sequencer) Dismiss() {
	s.metrics.RecordDismiss()
	s.mu.Lock()
	ch := s.signals.dismiss
	s.mu.Unlock()
	signal(ch)
}

// SignalExternalCompletion unblocks the animation handshake. Called exactly
// once per handshake by the animation system; extra calls are dropped.
func (s *Sequencer) SignalExternalCompletion() {
	s.mu.Lock()
	ch := s.signals.external
	s.mu.Unlock()
	signal(ch)
}

func (s *Sequencer) hearingAidFitted() bool {
	if s.query == nil {
		return false
	}
	return s.query.HasInteractedWith(HearingAidInteraction)
}

func (s *Sequencer) appendEvent(e events.SceneEvent) {
	if s.eventLog == nil {
		return
	}
	s.mu.Lock()
	e.SceneID = s.sceneID
	s.mu.Unlock()
	s.eventLog.Append(e)
}

func signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func drain(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}
