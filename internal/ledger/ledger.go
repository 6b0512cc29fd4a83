// Package ledger records the ordered interaction history of the doctor scene,
// scores it, and triggers the transition to the patient POV once the scene
// is played out.
package ledger

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/platform/metrics"
)

// State is the ledger's lifecycle state.
type State string

const (
	StateCollecting State = "Collecting"
	StateFull       State = "Full"
	StateResolved   State = "Resolved"
)

// Outcome is the aggregate scene result, computed exactly once.
type Outcome string

const (
	OutcomePending    Outcome = "Pending"
	OutcomeAllSuccess Outcome = "AllSuccess"
	OutcomeAllFailure Outcome = "AllFailure"
	OutcomeMixed      Outcome = "Mixed"
)

// InteractionRecord is one recorded interaction. Append-only, never mutated
// after creation.
type InteractionRecord struct {
	Name      string `json:"name"`
	IsSuccess bool   `json:"is_success"`
	Order     int    `json:"order"` // 1-based position in the history
}

// SceneDirector schedules the transition out of the doctor scene.
type SceneDirector interface {
	ScheduleTransition(scene string, delay time.Duration)
}

// RecordStore persists interaction records. Optional; nil disables persistence.
type RecordStore interface {
	SaveInteraction(ctx context.Context, rec InteractionRecord) error
}

// Ledger is the capped, ordered record of player interactions.
// Single-writer in practice: interactions are serialized by player input.
type Ledger struct {
	mu              sync.Mutex
	activation      map[string]bool
	history         []InteractionRecord
	successCount    int
	failureCount    int
	maxInteractions int
	state           State
	outcome         Outcome

	director        SceneDirector
	transitionScene string
	transitionDelay time.Duration

	store    RecordStore
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector
}

// Config wires the ledger's collaborators and limits.
type Config struct {
	MaxInteractions int
	TransitionScene string
	TransitionDelay time.Duration
	Director        SceneDirector
	Store           RecordStore
	EventLog        *events.EventLog
	Logger          *logger.Logger
}

// New creates a ledger in the Collecting state.
func New(cfg Config) *Ledger {
	max := cfg.MaxInteractions
	if max <= 0 {
		max = 1
	}
	return &Ledger{
		activation:      make(map[string]bool),
		history:         make([]InteractionRecord, 0, max),
		maxInteractions: max,
		state:           StateCollecting,
		outcome:         OutcomePending,
		director:        cfg.Director,
		transitionScene: cfg.TransitionScene,
		transitionDelay: cfg.TransitionDelay,
		store:           cfg.Store,
		eventLog:        cfg.EventLog,
		logger:          cfg.Logger,
		metrics:         metrics.Get(),
	}
}

// RecordInteraction appends one interaction outcome. Once the ledger is
// full, further calls are logged no-ops that change nothing.
func (l *Ledger) RecordInteraction(name string, isSuccess bool) {
	l.mu.Lock()

	if l.state != StateCollecting {
		l.mu.Unlock()
		l.metrics.RecordInteraction(true)
		if l.logger != nil {
			l.logger.Warn("Interaction %q ignored: ledger already resolved", name)
		}
		l.appendEvent(events.SceneEvent{
			Type:     events.EventTypeInteractionIgnored,
			ActorID:  "Player",
			TargetID: name,
		})
		return
	}

	rec := InteractionRecord{
		Name:      name,
		IsSuccess: isSuccess,
		Order:     len(l.history) + 1,
	}
	l.history = append(l.history, rec)
	// Write-once-true: re-recording a name only affects score and history.
	l.activation[name] = true
	if isSuccess {
		l.successCount++
	} else {
		l.failureCount++
	}

	full := len(l.history) == l.maxInteractions
	if full {
		l.state = StateFull
		l.outcome = l.computeOutcome()
		l.state = StateResolved
	}
	outcome := l.outcome
	l.mu.Unlock()

	l.metrics.RecordInteraction(false)
	if l.logger != nil {
		l.logger.Event("INTERACTION", name, "success="+strconv.FormatBool(isSuccess)+" order="+strconv.Itoa(rec.Order))
	}
	l.appendEvent(events.SceneEvent{
		Type:     events.EventTypeInteractionRecorded,
		ActorID:  "Player",
		TargetID: name,
		Payload:  map[string]interface{}{"is_success": isSuccess, "order": rec.Order},
	})
	l.persist(rec)

	if full {
		l.resolve(outcome)
	}
}

// computeOutcome must be called with the mutex held and the history full.
func (l *Ledger) computeOutcome() Outcome {
	switch {
	case l.successCount == l.maxInteractions:
		return OutcomeAllSuccess
	case l.failureCount == l.maxInteractions:
		return OutcomeAllFailure
	default:
		return OutcomeMixed
	}
}

func (l *Ledger) resolve(outcome Outcome) {
	if l.logger != nil {
		l.logger.Event("OUTCOME", "Ledger", string(outcome))
	}
	l.appendEvent(events.SceneEvent{
		Type:     events.EventTypeOutcomeResolved,
		ActorID:  "Ledger",
		TargetID: string(outcome),
		Payload: map[string]interface{}{
			"successes": l.SuccessCount(),
			"failures":  l.FailureCount(),
		},
	})
	if l.director != nil {
		l.director.ScheduleTransition(l.transitionScene, l.transitionDelay)
	}
}

// HasInteractedWith reports whether name was ever successfully recorded.
// Absent names return false; it never errors.
func (l *Ledger) HasInteractedWith(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activation[name]
}

// History returns a copy of the recorded interactions in order.
func (l *Ledger) History() []InteractionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]InteractionRecord, len(l.history))
	copy(out, l.history)
	return out
}

// State returns the ledger lifecycle state.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Outcome returns the resolved outcome, Pending while collecting.
func (l *Ledger) Outcome() Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outcome
}

// SuccessCount returns the number of successful interactions recorded.
func (l *Ledger) SuccessCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.successCount
}

// FailureCount returns the number of failed interactions recorded.
func (l *Ledger) FailureCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failureCount
}

func (l *Ledger) appendEvent(e events.SceneEvent) {
	if l.eventLog == nil {
		return
	}
	e.SceneID = "Doctor"
	l.eventLog.Append(e)
}

func (l *Ledger) persist(rec InteractionRecord) {
	if l.store == nil {
		return
	}
	// Off the hot path, same as the event log's write-through.
	go func() {
		if err := l.store.SaveInteraction(context.Background(), rec); err != nil && l.logger != nil {
			l.logger.Error("Failed to persist interaction %q: %v", rec.Name, err)
		}
	}()
}
