package synth

import "github.com/chewxy/math32"

// ----- Oscillator ----- //

// morphKey is the key at which every oscillator has become a pure sine.
const morphKey = 120

// modulator is the FM or AM source of a voice.
type modulator struct {
	phase  float32
	inc    float32
	wave   int
	invert float32
}

func (m *modulator) init(p Modulation, tempo, unitOfTime, sampleRate float32) {
	m.phase = math32.Pi * p.PhaseOffset
	m.inc = modIncrement(p, tempo, unitOfTime, sampleRate)
	m.wave = p.Wave.index()
	m.invert = 1
	if p.Wave == WaveSinSaw2 {
		m.wave = int(WaveSaw)
		m.invert = -1
	}
}

// retune follows a tempo change. Free-running modulators and the phase are
// left alone.
func (m *modulator) retune(p Modulation, tempo, unitOfTime, sampleRate float32) {
	if p.Sync {
		m.inc = modIncrement(p, tempo, unitOfTime, sampleRate)
	}
}

func modIncrement(p Modulation, tempo, unitOfTime, sampleRate float32) float32 {
	if p.Freq == 0 {
		return 0
	}
	rate := p.Freq
	if p.Sync && unitOfTime > 0 {
		rate = rate * tempo / unitOfTime
	}
	return twoPi * rate / sampleRate
}

// next advances the modulator and returns its output remapped to 0..1.
func (m *modulator) next(tb *Tables) float32 {
	m.phase += m.inc
	if m.phase > twoPi {
		m.phase -= twoPi
		if m.phase > twoPi {
			m.phase = math32.Mod(m.phase, twoPi)
		}
	}
	return (tb.wave(m.wave, m.phase)*m.invert + 1) * 0.5
}

func (v *voice) jitter(tb *Tables, n int) float32 {
	switch v.inst.FreqNoiseType {
	case DistTriangular:
		return v.jitterHalfRange * tb.triangular[n]
	case DistCos4:
		return v.jitterHalfRange * tb.cos4[n]
	}
	return v.jitterHalfRange * tb.white[n]
}

// oscillate produces the mixed base oscillators for noise index n and the AM
// gain to apply to them. Modulators only run once the note has started.
func (v *voice) oscillate(tb *Tables, n int, started bool) (signal, level float32) {
	cent := v.jitter(tb, n)
	if started {
		cent += v.inst.FM.Depth * v.fm.next(tb)
	}
	for k := range v.phase {
		v.phase[k] += tb.centIncrement(v.baseInc[k], cent)
		if v.phase[k] > twoPi {
			v.phase[k] -= twoPi
		}
		g := tb.wave(v.waves[k], v.phase[k])
		f := tb.wave(int(WaveSine), v.phase[k])
		signal += (g + (f-g)*v.morph[k]) * v.mix[k]
	}
	switch v.inst.NoiseColor {
	case NoisePink:
		signal = signal*(1-v.inst.NoiseRatio) + tb.pink[n]*v.inst.NoiseRatio
	default:
		signal = signal*(1-v.inst.NoiseRatio) + tb.white[n]*v.inst.NoiseRatio
	}
	level = 1
	if started {
		level = v.inst.AM.Depth*v.am.next(tb) + 1 - v.inst.AM.Depth
	}
	return signal, level
}
