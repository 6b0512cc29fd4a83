// Package engine - typewriter.go
// Character-by-character reveal of a line, one rune per tick.
package engine

import (
	"context"
	"time"

	"github.com/Fred-qub/deliriumGame/internal/domain/rules"
)

// revealText reveals text rune by rune through apply, pausing 1/rate seconds
// between characters. A value on skip short-circuits to the full string.
// Returns (completed, skipped); completed is false only on context
// cancellation. A non-positive rate applies the full string immediately.
func revealText(ctx context.Context, text string, charsPerSecond float64, skip <-chan struct{}, apply func(string)) (completed bool, skipped bool) {
	interval := rules.RevealInterval(charsPerSecond)
	if interval <= 0 || text == "" {
		apply(text)
		return true, false
	}

	runes := []rune(text)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-ctx.Done():
			return false, false
		case <-skip:
			apply(text)
			return true, true
		case <-timer.C:
			apply(string(runes[:i]))
			timer.Reset(interval)
		}
	}
	return true, false
}
