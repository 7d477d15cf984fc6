package synth

// ----- Note Event ----- //

// NoteState ...
type NoteState int

const (
	// NoteHeld is a note-on that lasts until a matching NoteOff.
	NoteHeld NoteState = iota
	NoteOff
	// NoteEnd means the source is exhausted.
	NoteEnd
	// NoteEmpty means nothing is due yet.
	NoteEmpty
)

func (s NoteState) String() string {
	switch s {
	case NoteHeld:
		return "on"
	case NoteOff:
		return "off"
	case NoteEnd:
		return "end"
	case NoteEmpty:
		return "empty"
	}
	return "unknown"
}

// NoteEvent is one timed note-on or note-off. Time is in milliseconds on the
// synth's session clock.
type NoteEvent struct {
	State    NoteState
	Track    int
	Channel  int
	Key      int
	Velocity int
	Program  int
	Tick     int64
	Time     float64
	Tempo    int
}

// EventSource is a pull-style timeline. NextEvent returns the next event due
// before until, NoteEmpty when nothing is due yet, or NoteEnd when the
// timeline is exhausted.
type EventSource interface {
	NextEvent(until float64) NoteEvent
	Restart()
	SetTimeUnit(msPerUnit float64)
}

// ----- Notification ----- //

// NotificationKind ...
type NotificationKind int

const (
	NotifyNoteOn NotificationKind = iota
	NotifyNoteOff
	NotifyLevel
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyNoteOn:
		return "on"
	case NotifyNoteOff:
		return "off"
	case NotifyLevel:
		return "level"
	}
	return "unknown"
}

// Notification is emitted from inside Render. Levels are thousandths of full
// scale.
type Notification struct {
	Kind        NotificationKind
	Track       int
	Channel     int
	Velocity    int
	Program     int
	Key         int
	Instrument  int
	SoundingKey int
	MaxLevel    int
	FrameLevel  int
}

// Notifier receives notifications on the render goroutine and must not block.
type Notifier func(n Notification)
