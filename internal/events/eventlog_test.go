package events

import (
	"sync"
	"testing"
	"time"
)

type capturingPersister struct {
	mu     sync.Mutex
	events []SceneEvent
}

func (p *capturingPersister) Append(e SceneEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(SceneEvent{Type: EventTypeLineShown, ActorID: "Doctor"})

	got := el.Replay()
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Error("Expected generated event ID")
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Expected generated timestamp")
	}
}

func TestReplayPreservesOrder(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(SceneEvent{ID: "a", Type: EventTypeSequenceStarted})
	el.Append(SceneEvent{ID: "b", Type: EventTypeLineShown})
	el.Append(SceneEvent{ID: "c", Type: EventTypeSequenceCompleted})

	got := el.Replay()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Expected event %d to be %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestGetByType(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(SceneEvent{Type: EventTypeLineShown})
	el.Append(SceneEvent{Type: EventTypeInteractionRecorded})
	el.Append(SceneEvent{Type: EventTypeLineShown})

	if got := el.GetByType(EventTypeLineShown); len(got) != 2 {
		t.Errorf("Expected 2 LINE_SHOWN events, got %d", len(got))
	}
}

func TestPersisterReceivesWrites(t *testing.T) {
	p := &capturingPersister{}
	el := NewEventLog(p)
	el.Append(SceneEvent{Type: EventTypeOutcomeResolved})

	deadline := time.Now().Add(2 * time.Second)
	for p.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Persister never received the event")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
