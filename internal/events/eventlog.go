// Package events provides the append-only log of scene events.
// The doctor scene writes it; the patient POV scene replays it.
package events

import (
	"math/rand"
	"sync"
	"time"
)

// EventType defines the category of a scene event.
type EventType string

const (
	EventTypeInteractionRecorded EventType = "INTERACTION_RECORDED"
	EventTypeInteractionIgnored  EventType = "INTERACTION_IGNORED"
	EventTypeOutcomeResolved     EventType = "OUTCOME_RESOLVED"
	EventTypeSequenceStarted     EventType = "SEQUENCE_STARTED"
	EventTypeSequenceCancelled   EventType = "SEQUENCE_CANCELLED"
	EventTypeSequenceCompleted   EventType = "SEQUENCE_COMPLETED"
	EventTypeLineShown           EventType = "LINE_SHOWN"
	EventTypeHandshakeWait       EventType = "HANDSHAKE_WAIT"
	EventTypeHandshakeComplete   EventType = "HANDSHAKE_COMPLETE"
	EventTypeHearingRestored     EventType = "HEARING_RESTORED"
	EventTypeSceneTransition     EventType = "SCENE_TRANSITION"
	EventTypeReplayMissing       EventType = "REPLAY_MISSING"
)

// SceneEvent represents an immutable record of something that happened in a scene.
type SceneEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // Who performed or owns the action
	TargetID  string      `json:"target_id"` // What was affected (optional)
	Payload   interface{} `json:"payload"`   // Event-specific data
	SceneID   string      `json:"scene_id"`  // "Doctor" or "PatientPOV"
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event SceneEvent) error
}

// EventLog is the in-memory append-only log of scene events.
type EventLog struct {
	mu        sync.RWMutex
	events    []SceneEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]SceneEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event SceneEvent) {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to persistent storage off the hot path.
		go func(e SceneEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// Replay returns the full event history in append order.
func (el *EventLog) Replay() []SceneEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	out := make([]SceneEvent, len(el.events))
	copy(out, el.events)
	return out
}

// GetByType returns all events of a given type.
func (el *EventLog) GetByType(t EventType) []SceneEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SceneEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetByActor returns all events owned by a specific actor.
func (el *EventLog) GetByActor(actorID string) []SceneEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SceneEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of events appended so far.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomSuffix()
}

const suffixLetters = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = suffixLetters[rand.Intn(len(suffixLetters))]
	}
	return string(b)
}
