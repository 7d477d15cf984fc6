package synth

import (
	"errors"
	"math"
	"testing"
)

func renderUntilSilent(t *testing.T, s *Synth, maxBuffers int) []float64 {
	t.Helper()
	var all []float64
	buf := make([]float64, 100)
	for n := 0; n < maxBuffers; n++ {
		s.Render(buf)
		all = append(all, buf...)
		if s.ActiveVoices() == 0 {
			return all
		}
	}
	t.Fatalf("voices still active after %d buffers", maxBuffers)
	return nil
}

func TestRenderUnconfigured(t *testing.T) {
	s := New()
	buf := []float64{1, -1, 0.5}
	s.Render(buf)
	for _, x := range buf {
		expectEqual(t, x, 0.0)
	}
	if err := s.NoteOn(NoteEvent{Key: 60, Velocity: 100}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestConfigureInvalid(t *testing.T) {
	s := New()
	for _, c := range []Config{
		{SampleRate: 0, BufferSamples: 100},
		{SampleRate: 44100, BufferSamples: 0},
		{SampleRate: 44100, BufferSamples: 100, BufferDuration: -1},
		{SampleRate: 10, BufferSamples: 1},
	} {
		if err := s.Configure(c); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
	expectEqual(t, s.Configured(), false)
}

func TestRenderSilenceWithoutVoices(t *testing.T) {
	s := newTestSynth(t)
	buf := make([]float64, 150)
	for i := range buf {
		buf[i] = 0.3
	}
	for n := 0; n < 10; n++ {
		s.Render(buf)
		for i, x := range buf {
			if x != 0 {
				t.Fatalf("buffer %d sample %d: expected silence, got %v", n, i, x)
			}
		}
	}
	expectNearlyEqual(t, s.Now(), 10*100*1000/44100.0)
}

func TestRenderStaysInRange(t *testing.T) {
	s := newTestSynth(t)
	s.SetControlParams(ControlParams{DivisionNum: 0.1, LogLevel: 0})
	for i := 0; i < MaxVoices; i++ {
		err := s.NoteOn(NoteEvent{Channel: i % 16, Key: 24 + i, Velocity: 127, Program: (i * 4) % 256, Tempo: 120})
		expectNoError(t, err)
	}
	buf := make([]float64, 100)
	for n := 0; n < 300; n++ {
		s.Render(buf)
		for i, x := range buf {
			if !(x >= -1 && x <= 1) {
				t.Fatalf("buffer %d sample %d out of range: %v", n, i, x)
			}
		}
	}
	if s.MaxLevel() <= 0 {
		t.Errorf("expected some signal")
	}
}

func TestVoicePoolLimit(t *testing.T) {
	s := newTestSynth(t)
	for i := 0; i < MaxVoices; i++ {
		expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: i, Velocity: 100, Tempo: 120}))
	}
	err := s.NoteOn(NoteEvent{Channel: 1, Key: 60, Velocity: 100, Tempo: 120})
	if !errors.Is(err, ErrNoFreeVoice) {
		t.Fatalf("expected ErrNoFreeVoice, got %v", err)
	}
	expectEqual(t, s.ActiveVoices(), MaxVoices)
	expectEqual(t, s.FreeVoices(), 0)
	// the dropped note never sounds, so releasing it is a no-op
	expectNoError(t, s.NoteOff(NoteEvent{Channel: 1, Key: 60}))
	buf := make([]float64, 100)
	for n := 0; n < 20; n++ {
		s.Render(buf)
		if s.ActiveVoices()+s.FreeVoices() != MaxVoices {
			t.Fatalf("pool lost a voice: %d active, %d free", s.ActiveVoices(), s.FreeVoices())
		}
	}
}

func TestNoteOffWithoutNoteOn(t *testing.T) {
	s := newTestSynth(t)
	expectNoError(t, s.NoteOff(NoteEvent{Channel: 3, Key: 64}))
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 3, Key: 64, Velocity: 90, Tempo: 120}))
	expectNoError(t, s.NoteOff(NoteEvent{Channel: 3, Key: 64}))
	// a second off finds nothing held
	expectNoError(t, s.NoteOff(NoteEvent{Channel: 3, Key: 64}))
	expectEqual(t, s.ActiveVoices(), 1)
}

func checkContinuity(t *testing.T, samples []float64, eps float64) {
	t.Helper()
	prev := 0.0
	for i, x := range samples {
		if math.Abs(x-prev) > eps {
			t.Fatalf("jump of %v at sample %d", x-prev, i)
		}
		prev = x
	}
	if samples[len(samples)-1] != 0 {
		t.Errorf("expected silence at the end, got %v", samples[len(samples)-1])
	}
}

func TestNoteOnOffContinuity(t *testing.T) {
	t.Run("same instant", func(t *testing.T) {
		s := newTestSynth(t)
		s.SetInstrument(0, plainInstrument())
		expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 60, Velocity: 100, Tempo: 120}))
		expectNoError(t, s.NoteOff(NoteEvent{Channel: 0, Key: 60}))
		samples := renderUntilSilent(t, s, 100)
		checkContinuity(t, samples, 0.05)
	})
	t.Run("short note", func(t *testing.T) {
		s := newTestSynth(t)
		s.SetInstrument(0, plainInstrument())
		expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 60, Velocity: 100, Tempo: 120}))
		buf := make([]float64, 100)
		var samples []float64
		for n := 0; n < 3; n++ {
			s.Render(buf)
			samples = append(samples, buf...)
		}
		expectNoError(t, s.NoteOff(NoteEvent{Channel: 0, Key: 60}))
		samples = append(samples, renderUntilSilent(t, s, 100)...)
		checkContinuity(t, samples, 0.05)
	})
}

func TestEndToEnd(t *testing.T) {
	s := newTestSynth(t)
	inst := plainInstrument()
	inst.DelayTime[0] = 200
	inst.DelayRatio[0] = 0.1
	s.SetInstrument(0, inst)
	const release, tail = 100.0, 600.0

	expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 69, Velocity: 100, Program: 0, Tempo: 120}))
	delta := 1000.0 / 44100
	buf := make([]float64, 100)
	peak, peakAt := 0.0, -1.0
	for s.Now() < 500 {
		start := s.Now()
		s.Render(buf)
		for i, x := range buf {
			if math.Abs(x) > peak {
				peak = math.Abs(x)
				peakAt = start + float64(i)*delta
			}
		}
	}
	offAt := s.Now()
	expectNoError(t, s.NoteOff(NoteEvent{Channel: 0, Key: 69}))

	reclaimedAt := -1.0
	for n := 0; n < 1000; n++ {
		s.Render(buf)
		for _, x := range buf {
			if math.Abs(x) > peak {
				t.Fatalf("level after release exceeds the attack peak")
			}
		}
		if s.ActiveVoices() == 0 {
			reclaimedAt = s.Now()
			break
		}
	}
	if peak <= 0 {
		t.Fatalf("no signal")
	}
	if peakAt <= 0 || peakAt > 25 {
		t.Errorf("expected the peak at the end of the attack, got %vms", peakAt)
	}
	if reclaimedAt < 0 {
		t.Fatalf("voice was never reclaimed")
	}
	elapsed := reclaimedAt - offAt
	if elapsed < release+tail-0.01 || elapsed > release+tail+2*s.FrameTime() {
		t.Errorf("expected reclaim %vms after note-off, got %vms", release+tail, elapsed)
	}
}

func TestPercussionRouting(t *testing.T) {
	var got []Notification
	s := newTestSynth(t, WithNotifier(func(n Notification) { got = append(got, n) }))
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 9, Key: 36, Velocity: 100, Program: 3, Tempo: 120}))
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 25, Key: 38, Velocity: 100, Tempo: 120}))
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 2, Key: 60, Velocity: 100, Program: 0x71, Tempo: 120}))
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 2, Key: 61, Velocity: 100, Program: 0x30, Tempo: 120}))
	if len(got) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(got))
	}
	cases := []struct {
		instrument, key int
	}{
		{percKick, 28},
		{percSnare, 50},
		{0x71, 60},
		{0x30, 61},
	}
	for i, c := range cases {
		expectEqual(t, got[i].Kind, NotifyNoteOn)
		expectEqual(t, got[i].Instrument, c.instrument)
		expectEqual(t, got[i].SoundingKey, c.key)
	}
}

func TestInvalidChannelIsSilent(t *testing.T) {
	var got []Notification
	s := newTestSynth(t, WithNotifier(func(n Notification) { got = append(got, n) }))
	err := s.apply(NoteEvent{State: NoteHeld, Channel: 40, Key: 60, Velocity: 127, Program: 5, Time: s.Now(), Tempo: 120})
	expectNoError(t, err)
	expectEqual(t, s.ActiveVoices(), 1)
	expectEqual(t, got[0].Instrument, 0)
	expectEqual(t, got[0].Velocity, 0)
	buf := make([]float64, 100)
	for n := 0; n < 20; n++ {
		s.Render(buf)
		for _, x := range buf {
			if x != 0 {
				t.Fatalf("expected silence, got %v", x)
			}
		}
	}
}

func TestLevelNotifications(t *testing.T) {
	var levels []Notification
	s := newTestSynth(t, WithNotifier(func(n Notification) {
		if n.Kind == NotifyLevel {
			levels = append(levels, n)
		}
	}))
	s.SetInstrument(0, plainInstrument())
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 69, Velocity: 127, Tempo: 120}))
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 1, Key: 72, Velocity: 127, Tempo: 120}))
	buf := make([]float64, 100)
	for n := 0; n < 10; n++ {
		s.Render(buf)
	}
	expectEqual(t, len(levels), 20)
	last := levels[len(levels)-1]
	if last.FrameLevel <= 0 || last.MaxLevel < last.FrameLevel {
		t.Errorf("unexpected levels %+v", last)
	}
	expectEqual(t, last.Channel, 1)
}

func TestVoiceKeepsInstrumentSnapshot(t *testing.T) {
	s := newTestSynth(t)
	s.SetInstrument(0, plainInstrument())
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 60, Velocity: 100, Tempo: 120}))
	changed := plainInstrument()
	changed.TotalGain = 0.1
	changed.BaseWave[0] = WaveSquare
	s.SetInstrument(0, changed)
	v := s.pool.at(0)
	expectEqual(t, v.inst, plainInstrument().Clamped())
}

func TestScheduleRestart(t *testing.T) {
	s := newTestSynth(t)
	s.SetInstrument(0, plainInstrument())
	buf := make([]float64, 100)
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 60, Velocity: 100, Tempo: 120}))
	for n := 0; n < 10; n++ {
		s.Render(buf)
	}
	expectNoError(t, s.NoteOff(NoteEvent{Channel: 0, Key: 60}))
	for n := 0; n < 5; n++ {
		s.Render(buf)
	}
	expectNoError(t, s.ScheduleRestart(0, 60, 10, 127, 140))
	v := s.pool.at(0)
	expectEqual(t, v.restartPending(), true)
	for n := 0; n < 10; n++ {
		s.Render(buf)
	}
	expectEqual(t, v.note.State, NoteHeld)
	expectEqual(t, v.restartPending(), false)
	expectNearlyEqual(t, float64(v.tempo), 140000)
	expectEqual(t, v.unitOfTime, float32(defaultTimeUnit))
	for n := 0; n < 500; n++ {
		s.Render(buf)
	}
	expectEqual(t, s.ActiveVoices(), 1)

	if err := s.ScheduleRestart(0, 61, 10, 100, 120); !errors.Is(err, ErrVoiceNotFound) {
		t.Errorf("expected ErrVoiceNotFound, got %v", err)
	}
}

type fakeSource struct {
	events   []NoteEvent
	pos      int
	restarts int
	unit     float64
}

func (f *fakeSource) NextEvent(until float64) NoteEvent {
	if f.pos >= len(f.events) {
		return NoteEvent{State: NoteEnd}
	}
	if f.events[f.pos].Time >= until {
		return NoteEvent{State: NoteEmpty}
	}
	ev := f.events[f.pos]
	f.pos++
	return ev
}

func (f *fakeSource) Restart() { f.pos = 0; f.restarts++ }

func (f *fakeSource) SetTimeUnit(msPerUnit float64) { f.unit = msPerUnit }

func TestEventSourceLoops(t *testing.T) {
	src := &fakeSource{events: []NoteEvent{
		{State: NoteHeld, Channel: 0, Key: 60, Velocity: 100, Time: 10, Tempo: 120},
		{State: NoteOff, Channel: 0, Key: 60, Time: 30, Tempo: 120},
	}}
	var got []Notification
	s := newTestSynth(t, WithNotifier(func(n Notification) {
		if n.Kind != NotifyLevel {
			got = append(got, n)
		}
	}))
	s.SetInstrument(0, plainInstrument())
	s.SetEventSource(src)
	expectNearlyEqual(t, src.unit, defaultTimeUnit)

	buf := make([]float64, 100)
	for n := 0; n < 1000 && src.restarts == 0; n++ {
		s.Render(buf)
		if n == 0 {
			expectEqual(t, s.ActiveVoices(), 0)
		}
	}
	expectEqual(t, src.restarts, 1)
	expectEqual(t, s.Now(), 0.0)
	expectEqual(t, len(got), 2)
	expectEqual(t, got[0].Kind, NotifyNoteOn)
	expectEqual(t, got[1].Kind, NotifyNoteOff)
}

func TestControlParams(t *testing.T) {
	s := newTestSynth(t)
	expectEqual(t, s.ControlParams(), ControlParams{DivisionNum: 4, LogLevel: 1})
	s.SetControlParams(ControlParams{DivisionNum: 0, LogLevel: -3})
	expectEqual(t, s.ControlParams(), ControlParams{DivisionNum: 0.1, LogLevel: 0})
	s.SetControlParams(ControlParams{DivisionNum: 100, LogLevel: 50})
	expectEqual(t, s.ControlParams(), ControlParams{DivisionNum: 64, LogLevel: 10})

	expectNoError(t, s.NoteOn(NoteEvent{Key: 69, Velocity: 127, Tempo: 120}))
	buf := make([]float64, 100)
	for n := 0; n < 20; n++ {
		s.Render(buf)
	}
	if s.MaxLevel() <= 0 {
		t.Fatalf("expected a session peak")
	}
	s.SetControlParams(ControlParams{DivisionNum: 4})
	expectEqual(t, s.MaxLevel(), 0.0)
}

func TestReset(t *testing.T) {
	src := &fakeSource{}
	s := newTestSynth(t, WithEventSource(src))
	expectNoError(t, s.NoteOn(NoteEvent{Key: 60, Velocity: 100, Tempo: 120}))
	s.Render(make([]float64, 100))
	s.Reset()
	expectEqual(t, s.ActiveVoices(), 0)
	expectEqual(t, s.FreeVoices(), MaxVoices)
	expectEqual(t, s.Now(), 0.0)
	if src.restarts == 0 {
		t.Errorf("expected the source to be rewound")
	}
}

func TestScheduleRestartRetunesSyncedModulator(t *testing.T) {
	s := newTestSynth(t)
	inst := plainInstrument()
	inst.FM = Modulation{Depth: 50, Freq: 1, Sync: true}
	inst.AM = Modulation{Depth: 0.5, Freq: 1, Sync: true}
	s.SetInstrument(0, inst)
	buf := make([]float64, 100)
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 60, Velocity: 100, Tempo: 60}))
	for n := 0; n < 10; n++ {
		s.Render(buf)
	}
	v := s.pool.at(0)
	fmInc, amInc := v.fm.inc, v.am.inc
	expectNoError(t, s.ScheduleRestart(0, 60, 1, 100, 240))
	for n := 0; n < 5; n++ {
		s.Render(buf)
	}
	expectEqual(t, v.restartPending(), false)
	expectNearlyEqual(t, float64(v.fm.inc), float64(fmInc*4))
	expectNearlyEqual(t, float64(v.am.inc), float64(amInc*4))
}

func TestZeroAttackIsAudible(t *testing.T) {
	s := newTestSynth(t)
	inst := plainInstrument()
	inst.AttackSlopeTime = 0
	s.SetInstrument(0, inst)
	buf := make([]float64, 100)
	expectNoError(t, s.NoteOn(NoteEvent{Channel: 0, Key: 69, Velocity: 127, Tempo: 120}))
	peak := 0.0
	for n := 0; n < 50; n++ {
		s.Render(buf)
		peak = math.Max(peak, s.MaxLevel())
	}
	if peak <= 0.01 {
		t.Errorf("expected an audible note with zero attack, peak was %v", peak)
	}
}
