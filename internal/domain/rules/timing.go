package rules

import (
	"strings"
	"time"
)

// WordCount returns the number of whitespace-delimited tokens, floored at 1
// so duration math never collapses to zero for empty or blank lines.
func WordCount(text string) int {
	n := len(strings.Fields(text))
	if n < 1 {
		return 1
	}
	return n
}

// DisplayDuration computes how long a line stays on screen: reading time at
// the given words-per-minute rate, floored at the minimum display duration.
func DisplayDuration(text string, wordsPerMinute float64, minDuration time.Duration) time.Duration {
	if wordsPerMinute <= 0 {
		return minDuration
	}

	seconds := float64(WordCount(text)) / wordsPerMinute * 60
	d := time.Duration(seconds * float64(time.Second))
	if d < minDuration {
		return minDuration
	}
	return d
}

// RevealInterval is the pause between typewriter characters for a given
// characters-per-second rate. Non-positive rates disable the typewriter.
func RevealInterval(charsPerSecond float64) time.Duration {
	if charsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / charsPerSecond)
}
