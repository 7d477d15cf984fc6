package synth

import (
	"fmt"
	"log/slog"
)

const (
	maxChannel = 31
	// percussion programs and sound effects resolve through the percussion table
	percussiveProgramFirst = 0x70
	percussiveProgramLast  = 0x7f
)

func isPercussionChannel(channel int) bool {
	return channel == 9 || channel == 25
}

// resolve picks the instrument, sounding key and velocity for a note-on.
func (s *Synth) resolve(ev NoteEvent) (program, key, velocity int) {
	switch {
	case ev.Channel < 0 || ev.Channel > maxChannel:
		// unknown channel: play program 0 silently
		return 0, clampi(ev.Key, 0, 127), 0
	case isPercussionChannel(ev.Channel):
		p := s.percussions[clampi(ev.Key, 0, NumPercussions-1)]
		return p.Program, p.Key, ev.Velocity
	case ev.Program >= percussiveProgramFirst && ev.Program <= percussiveProgramLast:
		p := s.percussions[ev.Program]
		return p.Program, p.Key, ev.Velocity
	}
	return clampi(ev.Program, 0, NumInstruments-1), clampi(ev.Key, 0, 127), ev.Velocity
}

// apply routes one event into the voice pool.
func (s *Synth) apply(ev NoteEvent) error {
	switch ev.State {
	case NoteHeld:
		return s.allocate(ev)
	case NoteOff:
		s.release(ev)
	}
	return nil
}

func (s *Synth) allocate(ev NoteEvent) error {
	v, ok := s.pool.acquire()
	if !ok {
		if s.logger != nil && s.control.LogLevel >= 1 {
			s.logger.Warn("note dropped", "err", ErrNoFreeVoice, "channel", ev.Channel, "key", ev.Key)
		}
		return fmt.Errorf("note %d on channel %d: %w", ev.Key, ev.Channel, ErrNoFreeVoice)
	}
	program, key, velocity := s.resolve(ev)
	ev.Velocity = velocity
	v.start(s.tables, ev, s.now, s.instruments[program], program, key, s.unitOfTime)
	s.emit(v, NotifyNoteOn)
	if s.logger != nil && s.control.LogLevel >= 2 {
		s.logger.Debug("voice on",
			slog.Int("channel", ev.Channel),
			slog.Int("program", program),
			slog.Int("key", ev.Key),
			slog.Int("velocity", velocity),
			slog.Float64("time", ev.Time),
			slog.Int("active", len(s.pool.active)),
			slog.Int("free", len(s.pool.free)),
		)
	}
	return nil
}

// release moves the matching held voice into its release segment. A note-off
// without a sounding note is ignored.
func (s *Synth) release(ev NoteEvent) {
	v := s.pool.find(ev.Channel, ev.Key)
	if v == nil {
		return
	}
	v.maintain = ev.Time - v.origin - v.wait
	v.note.State = NoteOff
	s.emit(v, NotifyNoteOff)
	if s.logger != nil && s.control.LogLevel >= 2 {
		s.logger.Debug("voice off",
			slog.Int("channel", ev.Channel),
			slog.Int("key", ev.Key),
			slog.Float64("time", ev.Time),
		)
	}
}

func (s *Synth) emit(v *voice, kind NotificationKind) {
	if s.notify == nil {
		return
	}
	s.notify(Notification{
		Kind:        kind,
		Track:       v.note.Track,
		Channel:     v.note.Channel,
		Velocity:    v.note.Velocity,
		Program:     v.note.Program,
		Key:         v.note.Key,
		Instrument:  v.program,
		SoundingKey: v.key,
	})
}
