// Package dialogue defines the core domain entities for scene dialogue.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package dialogue

// Speaker identifies who owns a line.
type Speaker string

const (
	SpeakerNone   Speaker = ""
	SpeakerDoctor Speaker = "Doctor"
	SpeakerArthur Speaker = "Arthur"
)

// Label returns the on-screen speaker label, empty for anonymous lines.
func (s Speaker) Label() string {
	if s == SpeakerNone {
		return ""
	}
	return string(s) + ":"
}

// Mode selects how a line is presented.
type Mode string

const (
	ModeSpoken    Mode = "Spoken"    // bottom anchor, speaker label, normal font
	ModeMonologue Mode = "Monologue" // centre anchor, no label, italic
)

// GarbleRule decides whether a line passes through the garbling codec.
type GarbleRule string

const (
	// GarbleAuto defers to the hearing-aid state at show time.
	GarbleAuto GarbleRule = "Auto"
	// GarbleAlways forces garbling regardless of state (the pre-fitting moment).
	GarbleAlways GarbleRule = "Always"
	// GarbleNever forces a clear line regardless of state.
	GarbleNever GarbleRule = "Never"
)

// Line is one dialogue line as presented. It is ephemeral: built per step,
// consumed by the presentation layer, discarded on dismissal.
type Line struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Mode    Mode    `json:"mode"`
	Garbled bool    `json:"garbled"`
}

// StepKind is the kind of a sequence step.
type StepKind string

const (
	StepShowLine   StepKind = "SHOW_LINE"
	StepWaitSignal StepKind = "WAIT_SIGNAL"
	StepCallback   StepKind = "CALLBACK"
)

// Step is one entry of a Sequence.
type Step struct {
	Kind StepKind

	// For StepShowLine.
	Speaker     Speaker
	Text        string
	Mode        Mode
	Garble      GarbleRule
	Dismissible bool // player may end display early, after the reveal completes

	// For StepCallback.
	Callback func()
}

// Sequence is an ordered, cancellable run of dialogue steps representing one
// interaction's narrative beat.
type Sequence struct {
	Name  string
	Steps []Step
}

// ShowLine builds a step presenting a line.
func ShowLine(speaker Speaker, text string, mode Mode, garble GarbleRule, dismissible bool) Step {
	return Step{
		Kind:        StepShowLine,
		Speaker:     speaker,
		Text:        text,
		Mode:        mode,
		Garble:      garble,
		Dismissible: dismissible,
	}
}

// WaitSignal builds a step suspending the sequence until an external
// completion signal arrives.
func WaitSignal() Step {
	return Step{Kind: StepWaitSignal}
}

// Invoke builds a step calling back into a collaborator, typically an
// animation trigger.
func Invoke(fn func()) Step {
	return Step{Kind: StepCallback, Callback: fn}
}
