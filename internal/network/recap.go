// Package network - recap.go
// Scene recap endpoint: JSON export of the event history and the scored
// interaction ledger, for debugging sessions and post-scene review.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/ledger"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/platform/metrics"
)

// RecapHandler provides the scene recap API.
type RecapHandler struct {
	eventLog *events.EventLog
	ledger   *ledger.Ledger
	logger   *logger.Logger
}

// NewRecapHandler creates a new recap handler.
func NewRecapHandler(el *events.EventLog, led *ledger.Ledger, log *logger.Logger) *RecapHandler {
	return &RecapHandler{
		eventLog: el,
		ledger:   led,
		logger:   log,
	}
}

// RecapEvent is a sanitized event for external viewing.
type RecapEvent struct {
	ID        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Scene     string                 `json:"scene"`
	Type      string                 `json:"type"`
	Actor     string                 `json:"actor"`
	Target    string                 `json:"target,omitempty"`
	Summary   string                 `json:"summary"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// RecapResponse is the API response for the scene recap.
type RecapResponse struct {
	Outcome      string                     `json:"outcome"`
	LedgerState  string                     `json:"ledger_state"`
	Interactions []ledger.InteractionRecord `json:"interactions"`
	TotalEvents  int                        `json:"total_events"`
	FilteredBy   string                     `json:"filtered_by,omitempty"`
	GeneratedAt  string                     `json:"generated_at"`
	Events       []RecapEvent               `json:"events"`
}

// HandleRecap returns the scene recap.
// GET /api/recap?scene=Doctor&type=LINE_SHOWN
func (rh *RecapHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sceneID := r.URL.Query().Get("scene")
	eventType := r.URL.Query().Get("type")

	allEvents := rh.eventLog.Replay()

	var recapEvents []RecapEvent
	filterDesc := ""

	for _, e := range allEvents {
		if sceneID != "" {
			if e.SceneID != sceneID {
				continue
			}
			filterDesc = "Scene " + sceneID
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		recapEvents = append(recapEvents, rh.convertToRecapEvent(e))
	}

	response := RecapResponse{
		Outcome:      string(rh.ledger.Outcome()),
		LedgerState:  string(rh.ledger.State()),
		Interactions: rh.ledger.History(),
		TotalEvents:  len(recapEvents),
		FilteredBy:   filterDesc,
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Events:       recapEvents,
	}

	rh.logger.Event("RECAP", "API", "Events:"+strconv.Itoa(len(recapEvents)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleEventDetail returns details of a specific event.
// GET /api/recap/event?event_id=XXX
func (rh *RecapHandler) HandleEventDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		rh.jsonError(w, "Missing event_id", http.StatusBadRequest)
		return
	}

	for _, e := range rh.eventLog.Replay() {
		if e.ID == eventID {
			detail := rh.convertToRecapEvent(e)
			if payload, ok := e.Payload.(map[string]interface{}); ok {
				detail.Details = payload
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(detail)
			return
		}
	}

	rh.jsonError(w, "Event not found", http.StatusNotFound)
}

// HandleStats returns aggregate playback statistics.
// GET /api/recap/stats
func (rh *RecapHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	allEvents := rh.eventLog.Replay()

	stats := map[string]int{
		"total_events":      len(allEvents),
		"lines_shown":       0,
		"interactions":      0,
		"handshakes":        0,
		"cancellations":     0,
		"missing_replays":   0,
		"scene_transitions": 0,
	}

	for _, e := range allEvents {
		switch e.Type {
		case events.EventTypeLineShown:
			stats["lines_shown"]++
		case events.EventTypeInteractionRecorded:
			stats["interactions"]++
		case events.EventTypeHandshakeComplete:
			stats["handshakes"]++
		case events.EventTypeSequenceCancelled:
			stats["cancellations"]++
		case events.EventTypeReplayMissing:
			stats["missing_replays"]++
		case events.EventTypeSceneTransition:
			stats["scene_transitions"]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
		"counters":     metrics.Get().Export(),
	})
}

// RegisterRoutes sets up the recap API routes.
func (rh *RecapHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/recap", rh.HandleRecap)
	mux.HandleFunc("/api/recap/event", rh.HandleEventDetail)
	mux.HandleFunc("/api/recap/stats", rh.HandleStats)
}

// convertToRecapEvent transforms an internal event to public format.
func (rh *RecapHandler) convertToRecapEvent(e events.SceneEvent) RecapEvent {
	return RecapEvent{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Scene:     e.SceneID,
		Type:      string(e.Type),
		Actor:     e.ActorID,
		Target:    e.TargetID,
		Summary:   summarizeEvent(e),
	}
}

// summarizeEvent creates a human-readable summary.
func summarizeEvent(e events.SceneEvent) string {
	switch e.Type {
	case events.EventTypeLineShown:
		return "A line of dialogue was shown."
	case events.EventTypeInteractionRecorded:
		return "The player completed an interaction."
	case events.EventTypeInteractionIgnored:
		return "A late interaction was ignored."
	case events.EventTypeOutcomeResolved:
		return "The scene outcome was resolved."
	case events.EventTypeSequenceStarted:
		return "A dialogue sequence started."
	case events.EventTypeSequenceCancelled:
		return "A dialogue sequence was cancelled mid-flight."
	case events.EventTypeSequenceCompleted:
		return "A dialogue sequence ran to completion."
	case events.EventTypeHandshakeWait:
		return "Playback suspended, waiting on an animation."
	case events.EventTypeHandshakeComplete:
		return "The animation handshake completed."
	case events.EventTypeHearingRestored:
		return "The hearing aid was fitted; the world became clear."
	case events.EventTypeSceneTransition:
		return "The scene changed."
	case events.EventTypeReplayMissing:
		return "An interaction had no authored replay."
	default:
		return "Something happened..."
	}
}

// jsonError sends an error response.
func (rh *RecapHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
