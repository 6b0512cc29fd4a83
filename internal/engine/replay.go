// Package engine - replay.go
// Patient-POV playback: walks the ledger history in recorded order and plays
// each interaction's replay spec. A missing library entry is a logged skip,
// never an error.
package engine

import (
	"context"

	"github.com/Fred-qub/deliriumGame/internal/domain/dialogue"
	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/ledger"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/script"
)

// TriggerFunc publishes an animation cue to the rendering layer.
type TriggerFunc func(cue string)

// BuildSequence converts an authored spec into a playable sequence. Trigger
// steps call back through trigger with their cue; a nil trigger makes them
// no-ops.
func BuildSequence(spec script.SequenceSpec, trigger TriggerFunc) dialogue.Sequence {
	steps := make([]dialogue.Step, 0, len(spec.Steps))
	for _, st := range spec.Steps {
		switch st.Kind {
		case "line":
			steps = append(steps, dialogue.ShowLine(
				speakerFrom(st.Speaker),
				st.Text,
				modeFrom(st.Mode),
				garbleFrom(st.Garble),
				st.Dismissible,
			))
		case "trigger":
			cue := st.Cue
			steps = append(steps, dialogue.Invoke(func() {
				if trigger != nil {
					trigger(cue)
				}
			}))
		case "wait":
			steps = append(steps, dialogue.WaitSignal())
		}
	}
	return dialogue.Sequence{Name: spec.Name, Steps: steps}
}

func speakerFrom(s string) dialogue.Speaker {
	switch s {
	case "Doctor":
		return dialogue.SpeakerDoctor
	case "Arthur":
		return dialogue.SpeakerArthur
	default:
		return dialogue.SpeakerNone
	}
}

func modeFrom(s string) dialogue.Mode {
	if s == "monologue" {
		return dialogue.ModeMonologue
	}
	return dialogue.ModeSpoken
}

func garbleFrom(s string) dialogue.GarbleRule {
	switch s {
	case "always":
		return dialogue.GarbleAlways
	case "never":
		return dialogue.GarbleNever
	default:
		return dialogue.GarbleAuto
	}
}

// ReplayDirector drives the patient-POV scene off the recorded history.
type ReplayDirector struct {
	seq      *Sequencer
	lib      *script.Library
	trigger  TriggerFunc
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewReplayDirector wires the director.
func NewReplayDirector(seq *Sequencer, lib *script.Library, trigger TriggerFunc, eventLog *events.EventLog, log *logger.Logger) *ReplayDirector {
	return &ReplayDirector{
		seq:      seq,
		lib:      lib,
		trigger:  trigger,
		eventLog: eventLog,
		logger:   log,
	}
}

// PlayHistory replays every recorded interaction in order. Returns the
// number of sequences played. Stops early when ctx is cancelled.
func (d *ReplayDirector) PlayHistory(ctx context.Context, history []ledger.InteractionRecord) int {
	d.seq.SetScene("PatientPOV")

	played := 0
	for _, rec := range history {
		if ctx.Err() != nil {
			return played
		}

		spec, ok := d.lib.LookupReplay(rec.Name)
		if !ok {
			if d.logger != nil {
				d.logger.Warn("No replay spec for interaction %q, skipping", rec.Name)
			}
			if d.eventLog != nil {
				d.eventLog.Append(events.SceneEvent{
					Type:     events.EventTypeReplayMissing,
					ActorID:  "ReplayDirector",
					TargetID: rec.Name,
					SceneID:  "PatientPOV",
				})
			}
			continue
		}

		if !d.seq.PlayAndWait(ctx, BuildSequence(spec, d.trigger)) {
			return played
		}
		played++
	}
	return played
}
