package model

import "time"

// EventTypeFlags captures the positioning mode derived from an event's tag
// stream (§4.5 step 12): positioned (\pos/\move), horizontal scroll, or
// vertical scroll, else the default top/middle/subtitle placement.
type EventTypeFlags int

const (
	EventDefault EventTypeFlags = iota
	EventPositioned
	EventScrollHorizontal
	EventScrollVertical
)

// Event is an immutable script line: start time, duration, layer,
// read-order, style index, margins, and tag-laden text (§3 "Event").
type Event struct {
	// ReadOrder preserves the script's original line ordering; used as the
	// tie-breaker in frame assembly sort (Layer asc, ReadOrder asc).
	ReadOrder int

	Layer int

	Start    time.Duration
	Duration time.Duration

	StyleIndex int // index into the track's style list

	Margins Margins

	// Text is the raw, tag-laden line text. Validate (§4.5 step 1) rejects
	// a nil/empty value.
	Text string

	// Name and Effect mirror the ASS Dialogue line's
	// auxiliary fields; they are not consumed by the pipeline in §4 beyond
	// being available to external tooling.
	Name   string
	Effect string
}

// End returns the event's end time (Start + Duration).
func (e Event) End() time.Duration { return e.Start + e.Duration }

// Active reports whether the event is visible at time now (§4.8: "active
// at now").
func (e Event) Active(now time.Duration) bool {
	return now >= e.Start && now < e.End()
}

// Validate implements §4.5 step 1: style index in range, non-null text.
func (e Event) Validate(styleCount int) error {
	if e.StyleIndex < 0 || e.StyleIndex >= styleCount {
		return ErrInvalidStyleIndex
	}
	if e.Text == "" {
		return ErrEmptyText
	}
	return nil
}
