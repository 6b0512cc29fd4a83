// Package metrics provides observability for the scene server.
// Counters cover dialogue playback, the interaction ledger and transport.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers runtime counters.
type Collector struct {
	// Dialogue playback
	SequencesStarted   int64
	SequencesCancelled int64
	SequencesCompleted int64
	LinesShown         int64
	LinesGarbled       int64
	SkipSignals        int64
	DismissSignals     int64
	HandshakeWaits     int64
	HandshakeTimeouts  int64

	// Interaction ledger
	InteractionsRecorded int64
	InteractionsIgnored  int64

	// WebSocket
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSequenceStart notes a new dialogue sequence beginning.
func (c *Collector) RecordSequenceStart() {
	atomic.AddInt64(&c.SequencesStarted, 1)
}

// RecordSequenceCancel notes a sequence cancelled mid-flight.
func (c *Collector) RecordSequenceCancel() {
	atomic.AddInt64(&c.SequencesCancelled, 1)
}

// RecordSequenceComplete notes a sequence that ran all of its steps.
func (c *Collector) RecordSequenceComplete() {
	atomic.AddInt64(&c.SequencesCompleted, 1)
}

// RecordLine notes a line shown, garbled or clear.
func (c *Collector) RecordLine(garbled bool) {
	atomic.AddInt64(&c.LinesShown, 1)
	if garbled {
		atomic.AddInt64(&c.LinesGarbled, 1)
	}
}

// RecordSkip notes a skip signal from the input source.
func (c *Collector) RecordSkip() {
	atomic.AddInt64(&c.SkipSignals, 1)
}

// RecordDismiss notes a dismiss signal from the input source.
func (c *Collector) RecordDismiss() {
	atomic.AddInt64(&c.DismissSignals, 1)
}

// RecordHandshakeWait notes the sequencer suspending on the animation handshake.
func (c *Collector) RecordHandshakeWait() {
	atomic.AddInt64(&c.HandshakeWaits, 1)
}

// RecordHandshakeTimeout notes a handshake resolved by the fallback timeout.
func (c *Collector) RecordHandshakeTimeout() {
	atomic.AddInt64(&c.HandshakeTimeouts, 1)
}

// RecordInteraction notes a ledger write, or an ignored late write.
func (c *Collector) RecordInteraction(ignored bool) {
	if ignored {
		atomic.AddInt64(&c.InteractionsIgnored, 1)
		return
	}
	atomic.AddInt64(&c.InteractionsRecorded, 1)
}

// WSConnect / WSDisconnect track active websocket clients.
func (c *Collector) WSConnect() {
	atomic.AddInt64(&c.WSConnectionsActive, 1)
}

func (c *Collector) WSDisconnect() {
	atomic.AddInt64(&c.WSConnectionsActive, -1)
}

// RecordWSMessage tracks transport traffic.
func (c *Collector) RecordWSMessage(inbound bool) {
	if inbound {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError tracks transport failures.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot is the exported view of the collector.
type Snapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`

	SequencesStarted   int64 `json:"sequences_started"`
	SequencesCancelled int64 `json:"sequences_cancelled"`
	SequencesCompleted int64 `json:"sequences_completed"`
	LinesShown         int64 `json:"lines_shown"`
	LinesGarbled       int64 `json:"lines_garbled"`
	SkipSignals        int64 `json:"skip_signals"`
	DismissSignals     int64 `json:"dismiss_signals"`
	HandshakeWaits     int64 `json:"handshake_waits"`
	HandshakeTimeouts  int64 `json:"handshake_timeouts"`

	InteractionsRecorded int64 `json:"interactions_recorded"`
	InteractionsIgnored  int64 `json:"interactions_ignored"`

	WSConnectionsActive int64 `json:"ws_connections_active"`
	WSMessagesIn        int64 `json:"ws_messages_in"`
	WSMessagesOut       int64 `json:"ws_messages_out"`
	WSErrors            int64 `json:"ws_errors"`
}

// Export returns a consistent snapshot of all counters.
func (c *Collector) Export() Snapshot {
	c.mu.RLock()
	start := c.StartTime
	c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:        time.Since(start).Seconds(),
		SequencesStarted:     atomic.LoadInt64(&c.SequencesStarted),
		SequencesCancelled:   atomic.LoadInt64(&c.SequencesCancelled),
		SequencesCompleted:   atomic.LoadInt64(&c.SequencesCompleted),
		LinesShown:           atomic.LoadInt64(&c.LinesShown),
		LinesGarbled:         atomic.LoadInt64(&c.LinesGarbled),
		SkipSignals:          atomic.LoadInt64(&c.SkipSignals),
		DismissSignals:       atomic.LoadInt64(&c.DismissSignals),
		HandshakeWaits:       atomic.LoadInt64(&c.HandshakeWaits),
		HandshakeTimeouts:    atomic.LoadInt64(&c.HandshakeTimeouts),
		InteractionsRecorded: atomic.LoadInt64(&c.InteractionsRecorded),
		InteractionsIgnored:  atomic.LoadInt64(&c.InteractionsIgnored),
		WSConnectionsActive:  atomic.LoadInt64(&c.WSConnectionsActive),
		WSMessagesIn:         atomic.LoadInt64(&c.WSMessagesIn),
		WSMessagesOut:        atomic.LoadInt64(&c.WSMessagesOut),
		WSErrors:             atomic.LoadInt64(&c.WSErrors),
	}
}

// Handler serves the collector as JSON for dashboards and soak tests.
func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collector.Export())
}
