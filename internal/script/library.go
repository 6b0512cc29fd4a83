// Package script loads the authored dialogue library: for each interaction
// name, the doctor-scene sequence and the patient-POV replay sequence.
// Specs are plain YAML data, not programs; designers edit them without
// touching the engine.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
)

// StepSpec is one authored step of a sequence.
type StepSpec struct {
	Kind        string `yaml:"kind"`                  // "line", "trigger", "wait"
	Speaker     string `yaml:"speaker,omitempty"`     // "Doctor", "Arthur", "" for inner voice
	Text        string `yaml:"text,omitempty"`        // literal line text
	Mode        string `yaml:"mode,omitempty"`        // "spoken" (default) or "monologue"
	Garble      string `yaml:"garble,omitempty"`      // "auto" (default), "always", "never"
	Dismissible bool   `yaml:"dismissible,omitempty"` // player may dismiss after reveal
	Cue         string `yaml:"cue,omitempty"`         // animation cue for "trigger" steps
}

// SequenceSpec is an authored sequence for one interaction.
type SequenceSpec struct {
	Name    string     `yaml:"name"`
	Success bool       `yaml:"success"` // how the ledger scores this interaction
	Steps   []StepSpec `yaml:"steps"`
}

// File is the on-disk shape of a library file.
type File struct {
	Interactions []SequenceSpec `yaml:"interactions"` // doctor-scene beats
	Replays      []SequenceSpec `yaml:"replays"`      // patient-POV beats, keyed by the same names
}

// Library is the loaded, reloadable spec collection.
type Library struct {
	mu           sync.RWMutex
	interactions map[string]SequenceSpec
	replays      map[string]SequenceSpec
	logger       *logger.Logger
}

// NewLibrary creates an empty library.
func NewLibrary(log *logger.Logger) *Library {
	return &Library{
		interactions: make(map[string]SequenceSpec),
		replays:      make(map[string]SequenceSpec),
		logger:       log,
	}
}

// LoadDir parses every .yaml/.yml file in dir and replaces the library
// contents. A parse failure aborts the reload and keeps the previous specs.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read script dir: %w", err)
	}

	interactions := make(map[string]SequenceSpec)
	replays := make(map[string]SequenceSpec)

	for _, entry := range entries {
		if entry.IsDir() || !isScriptFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := loadFile(path)
		if err != nil {
			return err
		}
		for _, spec := range f.Interactions {
			interactions[spec.Name] = spec
		}
		for _, spec := range f.Replays {
			replays[spec.Name] = spec
		}
	}

	l.mu.Lock()
	l.interactions = interactions
	l.replays = replays
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Info("Script library loaded: %d interactions, %d replays", len(interactions), len(replays))
	}
	return nil
}

func loadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read script file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse script file %s: %w", path, err)
	}

	for _, spec := range append(append([]SequenceSpec{}, f.Interactions...), f.Replays...) {
		if err := spec.Validate(); err != nil {
			return File{}, fmt.Errorf("invalid spec in %s: %w", path, err)
		}
	}
	return f, nil
}

// Lookup returns the doctor-scene spec for an interaction name.
func (l *Library) Lookup(name string) (SequenceSpec, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	spec, ok := l.interactions[name]
	return spec, ok
}

// LookupReplay returns the patient-POV spec for an interaction name.
func (l *Library) LookupReplay(name string) (SequenceSpec, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	spec, ok := l.replays[name]
	return spec, ok
}

// Names returns the loaded interaction names.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.interactions))
	for name := range l.interactions {
		names = append(names, name)
	}
	return names
}

// Validate rejects specs the engine cannot play.
func (s SequenceSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("sequence spec without a name")
	}
	for i, step := range s.Steps {
		switch step.Kind {
		case "line":
			// Empty text is legal: the engine skips the step.
		case "trigger", "wait":
		default:
			return fmt.Errorf("sequence %q step %d: unknown kind %q", s.Name, i, step.Kind)
		}
		switch step.Mode {
		case "", "spoken", "monologue":
		default:
			return fmt.Errorf("sequence %q step %d: unknown mode %q", s.Name, i, step.Mode)
		}
		switch step.Garble {
		case "", "auto", "always", "never":
		default:
			return fmt.Errorf("sequence %q step %d: unknown garble rule %q", s.Name, i, step.Garble)
		}
	}
	return nil
}

func isScriptFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
