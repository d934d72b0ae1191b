package extract

import (
	"strings"

	"finca/internal/core"
)

// InferDateCue resolves relative date words in the message against a
// reference date. "hoy" wins over "ayer" when both appear. Returns nil when
// the message carries no cue, leaving date resolution to normalization.
func InferDateCue(message string, ref core.Date) *core.Date {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "hoy"):
		d := ref
		return &d
	case strings.Contains(lower, "ayer"):
		d := ref.AddDays(-1)
		return &d
	default:
		return nil
	}
}
