// Package engine - variants.go
// Named entry points for the sequence shapes the scenes use. Each builds a
// dialogue.Sequence and hands it to Play.
package engine

import (
	"strings"

	"github.com/Fred-qub/deliriumGame/internal/domain/dialogue"
	"github.com/Fred-qub/deliriumGame/internal/events"
)

// ShowLine plays a single line. Doctor lines garble according to the
// hearing-aid state; everyone else is always clear.
func (s *Sequencer) ShowLine(speaker dialogue.Speaker, text string, mode dialogue.Mode, dismissible bool) {
	rule := dialogue.GarbleNever
	if speaker == dialogue.SpeakerDoctor && mode == dialogue.ModeSpoken {
		rule = dialogue.GarbleAuto
	}
	s.Play(dialogue.Sequence{
		Name:  "line",
		Steps: []dialogue.Step{dialogue.ShowLine(speaker, text, mode, rule, dismissible)},
	})
}

// ShowMonologue plays a single inner-voice line: auto-dismissed, no speaker
// label, never garbled.
func (s *Sequencer) ShowMonologue(text string) {
	s.Play(dialogue.Sequence{
		Name: "monologue",
		Steps: []dialogue.Step{
			dialogue.ShowLine(dialogue.SpeakerNone, text, dialogue.ModeMonologue, dialogue.GarbleNever, false),
		},
	})
}

// ShowDoctorThenResponse plays a doctor line (garbled or clear depending on
// the hearing-aid state), then the responder's line. An empty response ends
// the sequence after the doctor line.
func (s *Sequencer) ShowDoctorThenResponse(doctorText string, responder dialogue.Speaker, responseText string, responseMode dialogue.Mode, responseDismissible bool) {
	steps := []dialogue.Step{
		dialogue.ShowLine(dialogue.SpeakerDoctor, doctorText, dialogue.ModeSpoken, dialogue.GarbleAuto, false),
	}
	if strings.TrimSpace(responseText) != "" {
		steps = append(steps,
			dialogue.ShowLine(responder, responseText, responseMode, dialogue.GarbleNever, responseDismissible))
	}
	s.Play(dialogue.Sequence{Name: "doctor_response", Steps: steps})
}

// ShowHearingAidSequence plays the fitting handshake: a forced-garbled doctor
// line (the pre-fitting moment), the animation trigger, a suspend until the
// animation system signals completion, a forced-clear doctor line, and an
// optional responder line.
func (s *Sequencer) ShowHearingAidSequence(preFitText, postFitText, responseText string, responseMode dialogue.Mode, responseDismissible bool, trigger func()) {
	s.Play(s.buildHearingAidSequence("hearing_aid", preFitText, postFitText,
		dialogue.SpeakerArthur, responseText, responseMode, responseDismissible, trigger))
}

// ShowHearingAidReplaySequence mirrors the fitting handshake for the patient
// POV: same beats, but the closing line is an auto-dismissed monologue.
func (s *Sequencer) ShowHearingAidReplaySequence(preFitText, postFitText, monologueText string, trigger func()) {
	s.Play(s.buildHearingAidSequence("hearing_aid_replay", preFitText, postFitText,
		dialogue.SpeakerNone, monologueText, dialogue.ModeMonologue, false, trigger))
}

func (s *Sequencer) buildHearingAidSequence(name, preFitText, postFitText string, responder dialogue.Speaker, responseText string, responseMode dialogue.Mode, responseDismissible bool, trigger func()) dialogue.Sequence {
	steps := []dialogue.Step{
		dialogue.ShowLine(dialogue.SpeakerDoctor, preFitText, dialogue.ModeSpoken, dialogue.GarbleAlways, false),
		dialogue.Invoke(trigger),
		dialogue.WaitSignal(),
		dialogue.Invoke(func() {
			s.appendEvent(events.SceneEvent{
				Type:     events.EventTypeHearingRestored,
				ActorID:  "Sequencer",
				TargetID: HearingAidInteraction,
			})
		}),
		dialogue.ShowLine(dialogue.SpeakerDoctor, postFitText, dialogue.ModeSpoken, dialogue.GarbleNever, false),
	}
	if strings.TrimSpace(responseText) != "" {
		steps = append(steps,
			dialogue.ShowLine(responder, responseText, responseMode, dialogue.GarbleNever, responseDismissible))
	}
	return dialogue.Sequence{Name: name, Steps: steps}
}
