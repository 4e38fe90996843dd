package feed

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Window resolution bounds.
const (
	DefaultLimit = 2000
	MaxLimit     = 2000
	MinMinutes   = 1
	MaxMinutes   = 44640 // 31 days
)

// Sentinel errors for window validation. Handlers map both to HTTP 400.
var (
	ErrInvalidWindow = errors.New("invalid time window")
	ErrInvalidRange  = errors.New("start must not be after end")
)

// WindowParams carries the raw query parameters exactly as received.
type WindowParams struct {
	Limit       string
	LastMinutes string
	Start       string
	End         string
}

// Window is the resolved, validated query constraint. Nil bounds omit the
// corresponding clause. Raw preserves the received parameters for echoing
// back to the caller unmodified.
type Window struct {
	Start *time.Time
	End   *time.Time
	Limit int
	Raw   WindowParams
}

// ResolveWindow validates and clamps the query parameters into a Window.
//
// A non-empty last_minutes takes precedence over start/end: it must parse as
// an integer (else ErrInvalidWindow) and is clamped to [1, 44640] minutes
// looking back from now. Otherwise start and end are parsed independently;
// a non-empty bound that fails to parse is ErrInvalidWindow, and a parsed
// pair with start after end is ErrInvalidRange. The limit defaults to 2000
// on absence or garbage and is clamped to [1, 2000].
func ResolveWindow(p WindowParams, now time.Time) (Window, error) {
	w := Window{Raw: p, Limit: resolveLimit(p.Limit)}

	if p.LastMinutes != "" {
		minutes, err := strconv.Atoi(p.LastMinutes)
		if err != nil {
			return Window{}, fmt.Errorf("%w: last_minutes %q is not an integer", ErrInvalidWindow, p.LastMinutes)
		}
		minutes = clamp(minutes, MinMinutes, MaxMinutes)
		start := now.UTC().Add(-time.Duration(minutes) * time.Minute)
		w.Start = &start
		return w, nil
	}

	if p.Start != "" {
		t, ok := ParseInstant(p.Start)
		if !ok {
			return Window{}, fmt.Errorf("%w: unparseable start %q", ErrInvalidWindow, p.Start)
		}
		w.Start = &t
	}
	if p.End != "" {
		t, ok := ParseInstant(p.End)
		if !ok {
			return Window{}, fmt.Errorf("%w: unparseable end %q", ErrInvalidWindow, p.End)
		}
		w.End = &t
	}
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return Window{}, fmt.Errorf("%w: start %q after end %q", ErrInvalidRange, p.Start, p.End)
	}

	return w, nil
}

// resolveLimit parses the raw limit, falling back to the default on absence
// or garbage, then clamps.
func resolveLimit(raw string) int {
	limit := DefaultLimit
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	return clamp(limit, 1, MaxLimit)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
