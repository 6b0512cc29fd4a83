package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *SQLiteEventRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "scene.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEventRepository(db)
}

func TestEventRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	err := repo.Append(ctx, StoredEvent{
		ID:        "ev-1",
		SceneID:   "Doctor",
		Timestamp: time.Now(),
		EventType: "LINE_SHOWN",
		ActorID:   "Doctor",
		TargetID:  "",
		Payload:   map[string]interface{}{"garbled": true},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.GetBySceneID(ctx, "Doctor")
	if err != nil {
		t.Fatalf("GetBySceneID: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ev-1" || got[0].EventType != "LINE_SHOWN" {
		t.Errorf("Unexpected events: %+v", got)
	}
	if got[0].Payload["garbled"] != true {
		t.Errorf("Payload lost in round trip: %v", got[0].Payload)
	}

	other, err := repo.GetBySceneID(ctx, "PatientPOV")
	if err != nil {
		t.Fatalf("GetBySceneID: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Scene filter leaked: %+v", other)
	}
}

func TestEventTypeFilter(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	base := time.Now()
	for i, et := range []string{"LINE_SHOWN", "INTERACTION_RECORDED", "LINE_SHOWN"} {
		err := repo.Append(ctx, StoredEvent{
			ID:        "ev-" + et + string(rune('a'+i)),
			SceneID:   "Doctor",
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
			EventType: et,
			ActorID:   "Doctor",
			Payload:   map[string]interface{}{},
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	lines, err := repo.GetByEventType(ctx, "Doctor", "LINE_SHOWN")
	if err != nil {
		t.Fatalf("GetByEventType: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("Expected 2 LINE_SHOWN events, got %d", len(lines))
	}
}

func TestInteractionHistoryRoundTrip(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "scene.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	defer db.Close()
	repo := NewSQLiteInteractionRepository(db)
	ctx := context.Background()

	recs := []StoredInteraction{
		{Ord: 1, Name: "BloodPressure", IsSuccess: true, RecordedAt: time.Now()},
		{Ord: 2, Name: "Stethoscope", IsSuccess: false, RecordedAt: time.Now()},
	}
	for _, rec := range recs {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	// The ledger never reuses an order slot; the schema enforces it.
	if err := repo.Save(ctx, StoredInteraction{Ord: 1, Name: "Duplicate", RecordedAt: time.Now()}); err == nil {
		t.Error("Expected a constraint error on a duplicate order")
	}

	got, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != 2 || got[0].Name != "BloodPressure" || got[1].Name != "Stethoscope" {
		t.Errorf("Unexpected history: %+v", got)
	}
	if !got[0].IsSuccess || got[1].IsSuccess {
		t.Errorf("Success flags lost: %+v", got)
	}
}
