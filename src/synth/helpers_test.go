package synth

import (
	"math"
	"testing"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func mustTables(t *testing.T, sampleRate float32, bufferSamples int, seed int64) *Tables {
	t.Helper()
	tb, err := NewTables(sampleRate, bufferSamples, seed)
	if err != nil {
		t.Fatalf("NewTables: %v", err)
	}
	return tb
}

func newTestSynth(t *testing.T, opts ...Option) *Synth {
	t.Helper()
	s := New(opts...)
	if err := s.Configure(Config{SampleRate: 44100, BufferDuration: 100.0 / 44100, BufferSamples: 100, Seed: 1}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return s
}

// plainInstrument is a clean sine with a simple envelope and no noise.
func plainInstrument() Instrument {
	return Instrument{
		TotalGain:         1,
		AttackSlopeTime:   20,
		DecayHalfLifeTime: 50,
		SustainRate:       0.2,
		ReleaseSlopeTime:  100,
		BaseVsOthersRatio: 1,
	}
}
