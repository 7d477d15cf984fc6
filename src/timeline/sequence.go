// Package timeline provides event sources the synth drains while rendering.
package timeline

import (
	"cmp"
	"slices"

	"github.com/jinjor/desktop-synth/src/synth"
)

// referenceUnit is the ms per tempo unit at which event times are stored.
const referenceUnit = 60000.0

// Sequence is an in-memory, rewindable list of timed note events. Event
// times are in ms at the reference unit and scale with SetTimeUnit.
type Sequence struct {
	events []synth.NoteEvent
	pos    int
	scale  float64
}

// NewSequence copies events and orders them by time. Events sharing a time
// keep their relative order.
func NewSequence(events []synth.NoteEvent) *Sequence {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b synth.NoteEvent) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return &Sequence{
		events: sorted,
		scale:  1,
	}
}

// NextEvent returns the next event due before until, NoteEmpty when the next
// event is later, or NoteEnd once every event has been returned.
func (s *Sequence) NextEvent(until float64) synth.NoteEvent {
	if s.pos >= len(s.events) {
		return synth.NoteEvent{State: synth.NoteEnd}
	}
	ev := s.events[s.pos]
	ev.Time *= s.scale
	if ev.Time >= until {
		return synth.NoteEvent{State: synth.NoteEmpty}
	}
	s.pos++
	return ev
}

// Restart rewinds to the first event.
func (s *Sequence) Restart() {
	s.pos = 0
}

// SetTimeUnit stretches event times by msPerUnit relative to 60000 ms.
func (s *Sequence) SetTimeUnit(msPerUnit float64) {
	if !(msPerUnit > 0) {
		msPerUnit = referenceUnit
	}
	s.scale = msPerUnit / referenceUnit
}

// Len ...
func (s *Sequence) Len() int {
	return len(s.events)
}

// Duration is the time of the last event at the current time unit.
func (s *Sequence) Duration() float64 {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Time * s.scale
}
