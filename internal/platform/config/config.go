// Package config holds the two configuration surfaces of the scene server:
// process environment (addresses, paths) and author-tunable playback settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Env is the process-level configuration, parsed from environment variables.
type Env struct {
	Addr       string `env:"DELIRIUM_ADDR" envDefault:":8080"`
	DBPath     string `env:"DELIRIUM_DB" envDefault:"delirium.db"`
	ScriptDir  string `env:"DELIRIUM_SCRIPTS" envDefault:"scripts"`
	TuningPath string `env:"DELIRIUM_TUNING" envDefault:""`
	WatchDir   bool   `env:"DELIRIUM_WATCH_SCRIPTS" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Tuning is the author-tunable playback configuration. It is data, not
// runtime state: designers edit it, the engine only reads it.
type Tuning struct {
	// Timing
	WordsPerMinute    float64 `yaml:"words_per_minute"`
	MinDisplaySeconds float64 `yaml:"min_display_seconds"`
	CharsPerSecond    float64 `yaml:"chars_per_second"`
	FadeInSeconds     float64 `yaml:"fade_in_seconds"`
	FadeOutSeconds    float64 `yaml:"fade_out_seconds"`

	// Garbling
	GarbleDensity float64 `yaml:"garble_density"` // (0,1]
	GarblePolicy  string  `yaml:"garble_policy"`  // "periodic" or "probabilistic"

	// Input gating
	SingleSkipDismisses bool `yaml:"single_skip_dismisses"`

	// Animation handshake. Zero means wait forever.
	HandshakeTimeoutSeconds float64 `yaml:"handshake_timeout_seconds"`

	// Presentation
	SpokenAnchor      string `yaml:"spoken_anchor"`
	MonologueAnchor   string `yaml:"monologue_anchor"`
	MonologuePortrait string `yaml:"monologue_portrait"`

	// Interaction ledger and scene flow
	MaxInteractions        int     `yaml:"max_interactions"`
	TransitionScene        string  `yaml:"transition_scene"`
	TransitionDelaySeconds float64 `yaml:"transition_delay_seconds"`

	// Transport buffers
	EventChannelBuffer int `yaml:"event_channel_buffer"`
	ClientSendBuffer   int `yaml:"client_send_buffer"`
}

// DefaultTuning returns the shipped scene settings.
func DefaultTuning() Tuning {
	return Tuning{
		WordsPerMinute:          200,
		MinDisplaySeconds:       2,
		CharsPerSecond:          40,
		FadeInSeconds:           0.25,
		FadeOutSeconds:          0.25,
		GarbleDensity:           0.25,
		GarblePolicy:            "probabilistic",
		SingleSkipDismisses:     false,
		HandshakeTimeoutSeconds: 0,
		SpokenAnchor:            "bottom",
		MonologueAnchor:         "centre",
		MonologuePortrait:       "portrait_inner_voice",
		MaxInteractions:         3,
		TransitionScene:         "PatientPOV",
		TransitionDelaySeconds:  4,
		EventChannelBuffer:      256,
		ClientSendBuffer:        64,
	}
}

// LoadTuning reads a YAML tuning file over the defaults. An empty path
// returns the defaults untouched.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate rejects settings the engine cannot run with.
func (t Tuning) Validate() error {
	if t.WordsPerMinute <= 0 {
		return fmt.Errorf("words_per_minute must be positive, got %v", t.WordsPerMinute)
	}
	if t.MinDisplaySeconds < 0 {
		return fmt.Errorf("min_display_seconds must not be negative, got %v", t.MinDisplaySeconds)
	}
	if t.GarbleDensity <= 0 || t.GarbleDensity > 1 {
		return fmt.Errorf("garble_density must be in (0,1], got %v", t.GarbleDensity)
	}
	if t.GarblePolicy != "periodic" && t.GarblePolicy != "probabilistic" {
		return fmt.Errorf("garble_policy must be periodic or probabilistic, got %q", t.GarblePolicy)
	}
	if t.MaxInteractions <= 0 {
		return fmt.Errorf("max_interactions must be positive, got %d", t.MaxInteractions)
	}
	return nil
}

// MinDisplay returns the minimum display duration as a time.Duration.
func (t Tuning) MinDisplay() time.Duration {
	return time.Duration(t.MinDisplaySeconds * float64(time.Second))
}

// FadeIn returns the fade-in duration as a time.Duration.
func (t Tuning) FadeIn() time.Duration {
	return time.Duration(t.FadeInSeconds * float64(time.Second))
}

// FadeOut returns the fade-out duration as a time.Duration.
func (t Tuning) FadeOut() time.Duration {
	return time.Duration(t.FadeOutSeconds * float64(time.Second))
}

// HandshakeTimeout returns the handshake fallback timeout, zero for none.
func (t Tuning) HandshakeTimeout() time.Duration {
	return time.Duration(t.HandshakeTimeoutSeconds * float64(time.Second))
}

// TransitionDelay returns the scene transition delay as a time.Duration.
func (t Tuning) TransitionDelay() time.Duration {
	return time.Duration(t.TransitionDelaySeconds * float64(time.Second))
}
