package synth

import "testing"

func startTestVoice(t *testing.T, tb *Tables, inst Instrument) *voice {
	t.Helper()
	v := &voice{delay: newDelayLine(tb.sampleRate)}
	v.start(tb, NoteEvent{State: NoteHeld, Key: 69, Velocity: 127, Tempo: 120}, 0, inst, 0, 69, defaultTimeUnit)
	return v
}

func TestEnvelopeSegments(t *testing.T) {
	tb := mustTables(t, 44100, 100, 0)
	v := startTestVoice(t, tb, plainInstrument())
	delta := 1000.0 / 44100

	expectEqual(t, v.envelope(tb, 0, delta), segWaiting)
	expectEqual(t, v.strength, float32(0))

	expectEqual(t, v.envelope(tb, 10, delta), segAttack)
	expectNearlyEqual(t, float64(v.strength), 0.5)

	expectEqual(t, v.envelope(tb, 19.99, delta), segAttack)
	expectEqual(t, v.envelope(tb, 20.5, delta), segDecay)
	if v.strength < 0.9 || v.strength > 1 {
		t.Errorf("expected strength just under 1 after attack, got %v", v.strength)
	}

	expectEqual(t, v.envelope(tb, 5000, delta), segDecay)
	expectNearlyEqual(t, float64(v.strength), 0.2)

	// released at 5000ms: 50ms into a 100ms release is the table midpoint
	v.maintain = 5000
	v.note.State = NoteOff
	expectEqual(t, v.envelope(tb, 5050, delta), segRelease)
	expectNearlyEqual(t, float64(v.strength), 0.1)

	expectEqual(t, v.envelope(tb, 5100.1, delta), segEnd)
}

func TestEnvelopeRestart(t *testing.T) {
	tb := mustTables(t, 44100, 100, 0)
	v := startTestVoice(t, tb, plainInstrument())
	delta := 1000.0 / 44100

	v.envelope(tb, 19.99, delta)
	v.envelope(tb, 5000, delta)
	v.maintain = 5000
	v.note.State = NoteOff
	v.envelope(tb, 5050, delta)
	expectNearlyEqual(t, float64(v.strength), 0.1)

	v.restartWait = 5060
	expectEqual(t, v.envelope(tb, 5061, delta), segWaiting)
	expectEqual(t, v.note.State, NoteHeld)
	expectEqual(t, v.restartPending(), false)
	expectNearlyEqual(t, float64(v.floor), 0.1)

	// attack resumes from the floor instead of zero
	expectEqual(t, v.envelope(tb, 5071, delta), segAttack)
	expectNearlyEqual(t, float64(v.strength), 0.55)
}

func TestEnvelopeZeroTimes(t *testing.T) {
	tb := mustTables(t, 44100, 100, 0)
	inst := plainInstrument()
	inst.AttackSlopeTime = 0
	inst.DecayHalfLifeTime = 0
	inst.ReleaseSlopeTime = 0
	v := startTestVoice(t, tb, inst)
	delta := 1000.0 / 44100
	for _, current := range []float64{0, delta, 1, 2, 50} {
		v.envelope(tb, current, delta)
		if !(v.strength >= 0 && v.strength <= 1) {
			t.Fatalf("strength %v out of range at %v", v.strength, current)
		}
	}
	expectEqual(t, v.anomalies, 0)

	v = startTestVoice(t, tb, inst)
	v.envelope(tb, 0, delta)
	expectEqual(t, v.envelope(tb, delta, delta), segDecay)
	expectNearlyEqual(t, float64(v.strength), 0.2)
}

func TestEnvelopeRestartTempo(t *testing.T) {
	tb := mustTables(t, 44100, 100, 0)
	inst := plainInstrument()
	inst.FM = Modulation{Depth: 100, Freq: 1, Sync: true}
	inst.AM = Modulation{Depth: 0.5, Freq: 2}
	v := startTestVoice(t, tb, inst)
	delta := 1000.0 / 44100

	fmInc, amInc := v.fm.inc, v.am.inc
	v.envelope(tb, 10, delta)
	v.fm.phase = 1.25

	v.restartTempo = 240000
	v.restartWait = 20
	v.envelope(tb, 21, delta)
	expectEqual(t, v.tempo, float32(240000))
	expectNearlyEqual(t, float64(v.fm.inc), float64(fmInc*2))
	expectEqual(t, v.am.inc, amInc)
	expectEqual(t, v.fm.phase, float32(1.25))
}
