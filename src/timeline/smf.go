package timeline

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jinjor/desktop-synth/src/synth"
)

const defaultTempo = 120

type trackEvent struct {
	track   int
	ticks   int64
	micros  int64
	message midi.Message
}

// LoadSMF reads a Standard MIDI File into a Sequence. Note and program
// change messages are kept; every note carries the channel's current
// program and the tempo in effect when it starts.
func LoadSMF(r io.Reader) (*Sequence, error) {
	var raw []trackEvent
	err := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		raw = append(raw, trackEvent{
			track:   ev.TrackNo,
			ticks:   ev.AbsTicks,
			micros:  ev.AbsMicroSeconds,
			message: midi.Message(ev.Message),
		})
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	// tracks arrive one after another; merge them on the time axis
	slices.SortStableFunc(raw, func(a, b trackEvent) int {
		return cmp.Compare(a.micros, b.micros)
	})

	var programs [16]int
	tempo := defaultTempo
	events := make([]synth.NoteEvent, 0, len(raw))
	for _, ev := range raw {
		var ch, key, vel, program uint8
		var bpm float64
		switch {
		case smf.Message(ev.message).GetMetaTempo(&bpm):
			tempo = int(math.Round(bpm))
		case ev.message.GetProgramChange(&ch, &program):
			programs[ch] = int(program)
		case ev.message.GetNoteStart(&ch, &key, &vel):
			events = append(events, synth.NoteEvent{
				State:    synth.NoteHeld,
				Track:    ev.track,
				Channel:  int(ch),
				Key:      int(key),
				Velocity: int(vel),
				Program:  programs[ch],
				Tick:     ev.ticks,
				Time:     float64(ev.micros) / 1000,
				Tempo:    tempo,
			})
		case ev.message.GetNoteEnd(&ch, &key):
			events = append(events, synth.NoteEvent{
				State:   synth.NoteOff,
				Track:   ev.track,
				Channel: int(ch),
				Key:     int(key),
				Program: programs[ch],
				Tick:    ev.ticks,
				Time:    float64(ev.micros) / 1000,
				Tempo:   tempo,
			})
		}
	}
	return NewSequence(events), nil
}

// LoadSMFFile ...
func LoadSMFFile(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSMF(f)
}
