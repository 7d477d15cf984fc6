package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jinjor/desktop-synth/src/synth"
	"github.com/jinjor/desktop-synth/src/timeline"
)

var errBadCommand = errors.New("bad command")

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.update(command); err != nil {
			slog.Warn("command failed", "command", command, "err", err)
		}
	}
	slog.Info("processCommands() ended.")
}

func parseInts(args []string, n int) ([]int, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d arguments, got %d: %w", n, len(args), errBadCommand)
	}
	values := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseInt(args[i], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		values[i] = int(v)
	}
	return values, nil
}

func (a *Audio) update(command []string) error {
	if len(command) == 0 {
		return errBadCommand
	}
	args := command[1:]
	switch command[0] {
	case "note_on":
		// note_on ch key vel prog tempo
		v, err := parseInts(args, 5)
		if err != nil {
			return err
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.synth.NoteOn(synth.NoteEvent{Channel: v[0], Key: v[1], Velocity: v[2], Program: v[3], Tempo: v[4]})
	case "note_off":
		v, err := parseInts(args, 2)
		if err != nil {
			return err
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.synth.NoteOff(synth.NoteEvent{Channel: v[0], Key: v[1]})
	case "restart":
		// restart ch key ms vel tempo
		v, err := parseInts(args, 5)
		if err != nil {
			return err
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.synth.ScheduleRestart(v[0], v[1], float64(v[2]), v[3], v[4])
	case "control":
		if len(args) != 2 {
			return fmt.Errorf("control: %w", errBadCommand)
		}
		div, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return err
		}
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.synth.SetControlParams(synth.ControlParams{DivisionNum: float32(div), LogLevel: level})
		a.mu.Unlock()
		a.Changes.Add("data")
	case "preset":
		if len(args) != 1 {
			return fmt.Errorf("preset: %w", errBadCommand)
		}
		a.mu.Lock()
		err := a.presets.Apply(args[0], a.synth)
		a.mu.Unlock()
		a.Changes.Add("data")
		return err
	case "save":
		if len(args) != 1 {
			return fmt.Errorf("save: %w", errBadCommand)
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.presets.Save(args[0], a.synth)
	case "smf":
		// smf path [unit]
		if len(args) < 1 {
			return fmt.Errorf("smf: %w", errBadCommand)
		}
		return a.LoadSMF(args[0], args[1:]...)
	case "stop":
		a.mu.Lock()
		a.synth.SetEventSource(nil)
		a.synth.Reset()
		a.mu.Unlock()
	default:
		return fmt.Errorf("unknown command %q: %w", command[0], errBadCommand)
	}
	return nil
}

// LoadSMF starts looped playback of a MIDI file. An optional argument sets
// the ms per tempo unit.
func (a *Audio) LoadSMF(path string, unit ...string) error {
	seq, err := timeline.LoadSMFFile(path)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(unit) > 0 {
		ms, err := strconv.ParseFloat(unit[0], 64)
		if err != nil {
			return err
		}
		a.synth.SetTimeUnit(ms)
	}
	a.synth.Reset()
	a.synth.SetEventSource(seq)
	slog.Info("playing", "path", path, "events", seq.Len(), "duration_ms", seq.Duration())
	return nil
}

// ApplyPreset ...
func (a *Audio) ApplyPreset(name string) error {
	return a.update([]string{"preset", name})
}
