// Package engine contains the dialogue playback machinery: the presentation
// state machine, the typewriter, the sequencer and the patient-POV replay
// director.
//
// ARCHITECTURAL RULE: the engine does not decide what the scene means. It
// plays authored sequences; scoring and scene flow belong to the ledger.
package engine
