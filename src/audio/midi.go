package audio

import (
	"context"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/rtmididrv"

	"github.com/jinjor/desktop-synth/src/synth"
)

// ListenToMidiIn forwards raw messages from the first MIDI IN port until ctx
// is done.
func ListenToMidiIn(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			slog.Error("failed to initialize MIDI driver", "err", err)
			return
		}
		defer func() {
			if err := drv.Close(); err != nil {
				slog.Error("failed to close MIDI driver", "err", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			slog.Error("failed to get MIDI IN", "err", err)
			return
		}
		if len(ins) == 0 {
			slog.Warn("MIDI IN not found")
			return
		}
		in := ins[0]
		if err := in.Open(); err != nil {
			slog.Error("failed to open MIDI IN", "err", err)
			return
		}
		slog.Info("opened MIDI IN", "port", in.String())
		defer func() {
			if err := in.Close(); err != nil {
				slog.Error("failed to close MIDI IN", "err", err)
			}
		}()
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
			}
		}); err != nil {
			slog.Error("failed to set listener", "err", err)
			return
		}
		defer func() {
			slog.Info("stop listening MIDI IN...")
			if err := in.StopListening(); err != nil {
				slog.Error("failed to stop listening", "err", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}

// AddMidiEvent plays a raw channel message. Program changes are remembered
// per channel and applied to later notes.
func (a *Audio) AddMidiEvent(data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	msg := midi.Message(data)
	var ch, key, vel, program uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		err := a.synth.NoteOn(synth.NoteEvent{
			Channel:  int(ch),
			Key:      int(key),
			Velocity: int(vel),
			Program:  a.programs[ch],
			Tempo:    a.tempo,
		})
		if err != nil {
			slog.Warn("note-on failed", "err", err)
		}
	case msg.GetNoteEnd(&ch, &key):
		if err := a.synth.NoteOff(synth.NoteEvent{Channel: int(ch), Key: int(key)}); err != nil {
			slog.Warn("note-off failed", "err", err)
		}
	case msg.GetProgramChange(&ch, &program):
		a.programs[ch] = int(program)
	default:
		slog.Debug("unhandled MIDI message", "msg", msg.String())
	}
}
