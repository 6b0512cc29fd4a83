package storage

import (
	"context"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/ledger"
)

// EventSink adapts an EventRepository to the event log's persister interface.
type EventSink struct {
	repo EventRepository
}

func NewEventSink(repo EventRepository) *EventSink {
	return &EventSink{repo: repo}
}

func (s *EventSink) Append(e events.SceneEvent) error {
	payload, _ := e.Payload.(map[string]interface{})
	return s.repo.Append(context.Background(), StoredEvent{
		ID:        e.ID,
		SceneID:   e.SceneID,
		Timestamp: e.Timestamp,
		EventType: string(e.Type),
		ActorID:   e.ActorID,
		TargetID:  e.TargetID,
		Payload:   payload,
	})
}

// InteractionSink adapts an InteractionRepository to the ledger's store interface.
type InteractionSink struct {
	repo InteractionRepository
}

func NewInteractionSink(repo InteractionRepository) *InteractionSink {
	return &InteractionSink{repo: repo}
}

func (s *InteractionSink) SaveInteraction(ctx context.Context, rec ledger.InteractionRecord) error {
	return s.repo.Save(ctx, StoredInteraction{
		Ord:        rec.Order,
		Name:       rec.Name,
		IsSuccess:  rec.IsSuccess,
		RecordedAt: time.Now(),
	})
}
