// Package scene glues the transport to the playback engine: player actions
// come in, dialogue and scoring come out. It owns the scene flow from the
// doctor's visit to the patient-POV replay.
package scene

import (
	"context"
	"sync/atomic"

	"github.com/Fred-qub/deliriumGame/internal/engine"
	"github.com/Fred-qub/deliriumGame/internal/ledger"
	"github.com/Fred-qub/deliriumGame/internal/network"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/script"
)

// Controller routes player actions and drives the scene flow.
type Controller struct {
	sequencer *engine.Sequencer
	ledger    *ledger.Ledger
	library   *script.Library
	replay    *engine.ReplayDirector
	trigger   engine.TriggerFunc
	logger    *logger.Logger

	replaying atomic.Bool
}

// NewController wires the scene controller.
func NewController(seq *engine.Sequencer, led *ledger.Ledger, lib *script.Library, replay *engine.ReplayDirector, trigger engine.TriggerFunc, log *logger.Logger) *Controller {
	return &Controller{
		sequencer: seq,
		ledger:    led,
		library:   lib,
		replay:    replay,
		trigger:   trigger,
		logger:    log,
	}
}

// HandleAction routes one parsed player action. Implements network.ActionHandler.
func (c *Controller) HandleAction(action network.PlayerAction) {
	switch action.Type {
	case "SKIP":
		c.sequencer.Skip()
	case "DISMISS":
		c.sequencer.Dismiss()
	case "ANIMATION_DONE":
		c.sequencer.SignalExternalCompletion()
	case "INTERACT":
		c.handleInteract(action.Name)
	case "START_REPLAY":
		go c.EnterPatientPOV(context.Background())
	}
}

// handleInteract records the interaction and plays its authored sequence.
// The authored spec carries the success flag; an unauthored interaction is
// a content bug, logged and dropped rather than scored blind.
func (c *Controller) handleInteract(name string) {
	spec, ok := c.library.Lookup(name)
	if !ok {
		c.logger.Warn("INTERACT %q has no authored sequence, dropped", name)
		return
	}

	c.ledger.RecordInteraction(name, spec.Success)
	c.sequencer.Play(engine.BuildSequence(spec, c.trigger))
}

// PlayOpening plays an authored sequence without scoring it. The scene's
// opening beat uses this: the muffled greeting before any interaction.
func (c *Controller) PlayOpening(name string) bool {
	spec, ok := c.library.Lookup(name)
	if !ok {
		return false
	}
	c.sequencer.Play(engine.BuildSequence(spec, c.trigger))
	return true
}

// EnterPatientPOV replays the recorded history from the patient's side.
// Re-entry while a replay is running is a no-op.
func (c *Controller) EnterPatientPOV(ctx context.Context) {
	if !c.replaying.CompareAndSwap(false, true) {
		c.logger.Warn("Patient POV replay already running, ignored")
		return
	}
	defer c.replaying.Store(false)

	played := c.replay.PlayHistory(ctx, c.ledger.History())
	c.logger.Info("Patient POV replay finished: %d sequences played", played)
}
