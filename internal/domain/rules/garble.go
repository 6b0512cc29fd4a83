// Package rules contains the pure calculation logic for dialogue mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"math"
	"math/rand"
	"unicode"
)

// garbleAlphabet is the fixed substitution alphabet heard through failing ears.
var garbleAlphabet = []rune("#%&@$?!~")

// GarblePolicy selects how letters are picked for substitution.
type GarblePolicy string

const (
	// GarblePeriodic replaces every Nth letter, counting letters only,
	// where N is derived from the density.
	GarblePeriodic GarblePolicy = "periodic"
	// GarbleProbabilistic replaces each letter independently with
	// probability equal to the density.
	GarbleProbabilistic GarblePolicy = "probabilistic"
)

// GarbleParams tunes the codec.
type GarbleParams struct {
	Density float64 // fraction of letters affected, in (0,1]
	Policy  GarblePolicy
}

// DefaultGarbleParams matches the patient's untreated hearing.
func DefaultGarbleParams() GarbleParams {
	return GarbleParams{Density: 0.25, Policy: GarbleProbabilistic}
}

// Garble simulates impaired hearing by substituting letters with noise
// symbols. The string length and the position of every non-letter rune are
// preserved exactly. A string without letters comes back unchanged.
func Garble(text string, params GarbleParams, rng *rand.Rand) string {
	if text == "" {
		return text
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	density := params.Density
	if density <= 0 || density > 1 {
		density = DefaultGarbleParams().Density
	}

	period := int(math.Round(1 / density))
	if period < 1 {
		period = 1
	}

	runes := []rune(text)
	letterIndex := 0
	changed := false

	for i, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}
		letterIndex++

		replace := false
		switch params.Policy {
		case GarblePeriodic:
			replace = letterIndex%period == 0
		default:
			replace = rng.Float64() < density
		}

		if replace {
			runes[i] = garbleAlphabet[rng.Intn(len(garbleAlphabet))]
			changed = true
		}
	}

	if !changed {
		return text
	}
	return string(runes)
}
