package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Fred-qub/deliriumGame/internal/domain/dialogue"
	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/ledger"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/script"
)

const replayLibraryYAML = `
replays:
  - name: BloodPressure
    success: true
    steps:
      - kind: trigger
        cue: cuff_inflate
      - kind: line
        mode: monologue
        text: The cuff squeezes and I remember squeezing back.
  - name: Stethoscope
    success: false
    steps:
      - kind: line
        mode: monologue
        text: Cold metal. I flinched, and he noted it down.
`

func loadTestLibrary(t *testing.T) *script.Library {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "replays.yaml"), []byte(replayLibraryYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	lib := script.NewLibrary(nil)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	return lib
}

func TestBuildSequenceMapsSteps(t *testing.T) {
	var mu sync.Mutex
	var cues []string

	spec := script.SequenceSpec{
		Name: "mapped",
		Steps: []script.StepSpec{
			{Kind: "line", Speaker: "Doctor", Text: "Hello", Garble: "always", Dismissible: true},
			{Kind: "trigger", Cue: "nod"},
			{Kind: "wait"},
			{Kind: "line", Mode: "monologue", Text: "..."},
		},
	}

	seq := BuildSequence(spec, func(cue string) {
		mu.Lock()
		cues = append(cues, cue)
		mu.Unlock()
	})

	if len(seq.Steps) != 4 {
		t.Fatalf("Expected 4 steps, got %d", len(seq.Steps))
	}
	first := seq.Steps[0]
	if first.Kind != dialogue.StepShowLine || first.Speaker != dialogue.SpeakerDoctor ||
		first.Garble != dialogue.GarbleAlways || !first.Dismissible {
		t.Errorf("Line step mapped wrong: %+v", first)
	}
	if seq.Steps[2].Kind != dialogue.StepWaitSignal {
		t.Errorf("Expected wait step, got %+v", seq.Steps[2])
	}
	last := seq.Steps[3]
	if last.Mode != dialogue.ModeMonologue || last.Speaker != dialogue.SpeakerNone {
		t.Errorf("Monologue step mapped wrong: %+v", last)
	}

	seq.Steps[1].Callback()
	mu.Lock()
	defer mu.Unlock()
	if len(cues) != 1 || cues[0] != "nod" {
		t.Errorf("Trigger step must forward its cue, got %v", cues)
	}
}

func TestPlayHistorySkipsMissingSpecs(t *testing.T) {
	lib := loadTestLibrary(t)
	log := logger.NewLogger()
	el := events.NewEventLog(nil)
	pres := NewPresentation(fastOptions(), nil, log)
	seq := NewSequencer(pres, fastOptions(), fittedQuery(true), el, log)

	d := NewReplayDirector(seq, lib, nil, el, log)

	history := []ledger.InteractionRecord{
		{Name: "BloodPressure", IsSuccess: true, Order: 1},
		{Name: "Reflexes", IsSuccess: false, Order: 2}, // no replay authored
		{Name: "Stethoscope", IsSuccess: false, Order: 3},
	}

	played := d.PlayHistory(context.Background(), history)
	if played != 2 {
		t.Errorf("Expected 2 replays played, got %d", played)
	}

	missing := el.GetByType(events.EventTypeReplayMissing)
	if len(missing) != 1 || missing[0].TargetID != "Reflexes" {
		t.Errorf("Expected one replay-missing event for Reflexes, got %v", missing)
	}
	if got := len(el.GetByType(events.EventTypeSequenceCompleted)); got != 2 {
		t.Errorf("Expected 2 completed sequences, got %d", got)
	}
}

func TestPlayHistoryStopsOnCancel(t *testing.T) {
	lib := loadTestLibrary(t)
	log := logger.NewLogger()
	el := events.NewEventLog(nil)
	pres := NewPresentation(fastOptions(), nil, log)
	seq := NewSequencer(pres, fastOptions(), fittedQuery(true), el, log)

	d := NewReplayDirector(seq, lib, nil, el, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	played := d.PlayHistory(ctx, []ledger.InteractionRecord{
		{Name: "BloodPressure", IsSuccess: true, Order: 1},
	})
	if played != 0 {
		t.Errorf("Expected no replays on a cancelled context, got %d", played)
	}
}
