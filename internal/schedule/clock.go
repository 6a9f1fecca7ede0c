// Package schedule implements the conflict and staffing engine: wall-clock
// overlap math, pairwise conflict detection, connected-component clustering
// of a day's events, per-event status derivation, and staff availability.
// Everything here is a pure function of the event snapshot it is given.
package schedule

import (
	"log/slog"
	"strconv"
	"strings"
)

// ParseMinutes converts an "HH:MM" 24-hour wall-clock string to minutes
// since midnight. Malformed input degrades to 0 instead of failing so that
// every derived view stays computable; callers that care can log the flag.
func ParseMinutes(s string) int {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		if s != "" {
			slog.Debug("malformed wall-clock time", "value", s)
		}
		return 0
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		slog.Debug("malformed wall-clock time", "value", s)
		return 0
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		slog.Debug("malformed wall-clock time", "value", s)
		return 0
	}
	return hours*60 + minutes
}

// Overlaps reports whether two half-open minute intervals intersect.
// Touching intervals (end1 == start2) do not overlap; every conflict
// decision downstream depends on this strict inequality.
func Overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
