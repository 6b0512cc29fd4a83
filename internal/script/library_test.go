package script

import (
	"os"
	"path/filepath"
	"testing"
)

const goodLibraryYAML = `
interactions:
  - name: BloodPressure
    success: true
    steps:
      - kind: line
        speaker: Doctor
        text: Let me take your blood pressure.
      - kind: trigger
        cue: cuff_inflate
  - name: Stethoscope
    success: false
    steps:
      - kind: line
        speaker: Doctor
        text: Deep breath now.
        garble: always
replays:
  - name: BloodPressure
    success: true
    steps:
      - kind: line
        mode: monologue
        text: The cuff again.
`

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDirPopulatesLibrary(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "doctor.yaml", goodLibraryYAML)
	writeScript(t, dir, "notes.txt", "not a script, must be ignored")

	lib := NewLibrary(nil)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	spec, ok := lib.Lookup("BloodPressure")
	if !ok {
		t.Fatal("BloodPressure not loaded")
	}
	if !spec.Success || len(spec.Steps) != 2 {
		t.Errorf("BloodPressure loaded wrong: %+v", spec)
	}
	if spec.Steps[1].Kind != "trigger" || spec.Steps[1].Cue != "cuff_inflate" {
		t.Errorf("Trigger step loaded wrong: %+v", spec.Steps[1])
	}

	if _, ok := lib.LookupReplay("BloodPressure"); !ok {
		t.Error("BloodPressure replay not loaded")
	}
	if _, ok := lib.LookupReplay("Stethoscope"); ok {
		t.Error("Stethoscope has no authored replay, lookup must miss")
	}
	if got := len(lib.Names()); got != 2 {
		t.Errorf("Expected 2 interaction names, got %d", got)
	}
}

func TestFailedReloadKeepsPreviousSpecs(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "doctor.yaml", goodLibraryYAML)

	lib := NewLibrary(nil)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	writeScript(t, dir, "doctor.yaml", `
interactions:
  - name: Broken
    steps:
      - kind: teleport
`)
	if err := lib.LoadDir(dir); err == nil {
		t.Fatal("Expected reload failure on an unknown step kind")
	}

	if _, ok := lib.Lookup("BloodPressure"); !ok {
		t.Error("Failed reload must keep the previous library contents")
	}
	if _, ok := lib.Lookup("Broken"); ok {
		t.Error("Failed reload must not surface partial contents")
	}
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		label string
		spec  SequenceSpec
	}{
		{"missing name", SequenceSpec{Steps: []StepSpec{{Kind: "line"}}}},
		{"unknown kind", SequenceSpec{Name: "x", Steps: []StepSpec{{Kind: "dance"}}}},
		{"unknown mode", SequenceSpec{Name: "x", Steps: []StepSpec{{Kind: "line", Mode: "shouted"}}}},
		{"unknown garble", SequenceSpec{Name: "x", Steps: []StepSpec{{Kind: "line", Garble: "sometimes"}}}},
	}
	for _, c := range cases {
		if err := c.spec.Validate(); err == nil {
			t.Errorf("Expected validation error for %s", c.label)
		}
	}

	ok := SequenceSpec{Name: "fine", Steps: []StepSpec{
		{Kind: "line", Speaker: "Doctor", Text: "hello", Garble: "auto"},
		{Kind: "wait"},
		{Kind: "trigger", Cue: "nod"},
	}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Valid spec rejected: %v", err)
	}
}
