package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, scene_id, timestamp, event_type, actor_id, target_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SceneID, event.Timestamp, event.EventType,
		event.ActorID, event.TargetID, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadStr string
		err := rows.Scan(&e.ID, &e.SceneID, &e.Timestamp, &e.EventType, &e.ActorID, &e.TargetID, &payloadStr)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetBySceneID(ctx context.Context, sceneID string) ([]StoredEvent, error) {
	query := `SELECT id, scene_id, timestamp, event_type, actor_id, target_id, payload FROM events WHERE scene_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sceneID)
}

func (r *SQLiteEventRepository) GetByActorID(ctx context.Context, sceneID, actorID string) ([]StoredEvent, error) {
	query := `SELECT id, scene_id, timestamp, event_type, actor_id, target_id, payload FROM events WHERE scene_id = ? AND actor_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sceneID, actorID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sceneID, eventType string) ([]StoredEvent, error) {
	query := `SELECT id, scene_id, timestamp, event_type, actor_id, target_id, payload FROM events WHERE scene_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sceneID, eventType)
}

// ---------------------------------------------------------
// SQLiteInteractionRepository
// ---------------------------------------------------------

type SQLiteInteractionRepository struct {
	db *sql.DB
}

func NewSQLiteInteractionRepository(db *sql.DB) *SQLiteInteractionRepository {
	return &SQLiteInteractionRepository{db: db}
}

func (r *SQLiteInteractionRepository) Save(ctx context.Context, rec StoredInteraction) error {
	query := `INSERT INTO interactions (ord, name, is_success, recorded_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, rec.Ord, rec.Name, rec.IsSuccess, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (r *SQLiteInteractionRepository) GetAll(ctx context.Context) ([]StoredInteraction, error) {
	query := `SELECT ord, name, is_success, recorded_at FROM interactions ORDER BY ord ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []StoredInteraction
	for rows.Next() {
		var rec StoredInteraction
		if err := rows.Scan(&rec.Ord, &rec.Name, &rec.IsSuccess, &rec.RecordedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
