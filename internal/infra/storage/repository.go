// Package storage provides the persistence layer for the scene server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// StoredEvent mirrors the scene event structure for persistence.
// The engine packages should NOT import this; use interfaces instead.
type StoredEvent struct {
	ID        string                 `json:"id" db:"id"`
	SceneID   string                 `json:"scene_id" db:"scene_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable log.
	Append(ctx context.Context, event StoredEvent) error

	// GetBySceneID retrieves all events for one scene, in append order.
	GetBySceneID(ctx context.Context, sceneID string) ([]StoredEvent, error)

	// GetByActorID retrieves all events owned by an actor.
	GetByActorID(ctx context.Context, sceneID, actorID string) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, sceneID, eventType string) ([]StoredEvent, error)
}

// StoredInteraction is one row of the scored interaction history.
type StoredInteraction struct {
	Ord        int       `json:"order" db:"ord"`
	Name       string    `json:"name" db:"name"`
	IsSuccess  bool      `json:"is_success" db:"is_success"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// InteractionRepository defines the interface for interaction persistence.
type InteractionRepository interface {
	// Save inserts one interaction row. Order collisions are an error; the
	// ledger never reuses an order slot.
	Save(ctx context.Context, rec StoredInteraction) error

	// GetAll retrieves the stored history in recorded order.
	GetAll(ctx context.Context) ([]StoredInteraction, error)
}
