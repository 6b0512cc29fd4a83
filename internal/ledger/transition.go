package ledger

import (
	"sync"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
)

// TransitionFunc performs the actual scene load. The server wires this to a
// frontend broadcast; tests capture it directly.
type TransitionFunc func(scene string)

// Director implements SceneDirector with a one-shot delayed timer.
type Director struct {
	mu       sync.Mutex
	timer    *time.Timer
	fn       TransitionFunc
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewDirector creates a scene director.
func NewDirector(fn TransitionFunc, eventLog *events.EventLog, log *logger.Logger) *Director {
	return &Director{
		fn:       fn,
		eventLog: eventLog,
		logger:   log,
	}
}

// ScheduleTransition loads scene after delay. Scheduling again replaces any
// pending transition.
func (d *Director) ScheduleTransition(scene string, delay time.Duration) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, func() {
		if d.logger != nil {
			d.logger.Event("SCENE_TRANSITION", "Director", scene)
		}
		if d.fn != nil {
			d.fn(scene)
		}
	})
	d.mu.Unlock()

	if d.eventLog != nil {
		d.eventLog.Append(events.SceneEvent{
			Type:     events.EventTypeSceneTransition,
			ActorID:  "Director",
			TargetID: scene,
			Payload:  map[string]interface{}{"delay_seconds": delay.Seconds()},
		})
	}
}

// Cancel stops a pending transition, if any.
func (d *Director) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
