package synth

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"
)

const (
	// WaveTableSize is the length of every waveform table. Power of two.
	WaveTableSize = 32768

	centTableSize   = 7200 // +-3600 cents
	linearCentRange = 120

	attackSlopeHz  = 25
	releaseSlopeHz = 25
	decaySlopeHz   = 1
	decayHalfLife  = 50 // ms

	// pitchCeiling caps every frequency at this fraction of the sample rate.
	pitchCeiling = 0.47

	pinkTaps = 16
)

const twoPi = 2 * math32.Pi

// Tables holds everything the render path looks up. It is immutable after
// NewTables returns and may be shared by any number of voices.
type Tables struct {
	sampleRate    float32
	bufferSamples int
	noiseFrames   int

	waves [numWaves][]float32

	attack  []float32
	release []float32
	decay   []float32
	// milliseconds covered by each envelope table
	attackTime  float32
	releaseTime float32
	decayTime   float32

	white      []float32
	triangular []float32
	cos4       []float32
	pink       []float32

	cents    []float32
	velocity [128]float32

	centHigh float32
	centLow  float32
}

// NewTables builds all lookup tables for the given rate and buffer size. The
// noise tables are reproducible for a given seed.
func NewTables(sampleRate float32, bufferSamples int, seed int64) (*Tables, error) {
	if !(sampleRate >= 2*attackSlopeHz) || bufferSamples <= 0 || float32(bufferSamples) > sampleRate {
		return nil, fmt.Errorf("tables for %v Hz / %d samples: %w", sampleRate, bufferSamples, ErrInvalidConfig)
	}
	t := &Tables{
		sampleRate:    sampleRate,
		bufferSamples: bufferSamples,
		noiseFrames:   int(sampleRate / float32(bufferSamples)),
	}
	var g errgroup.Group
	g.Go(func() error {
		for w := WaveSine; w < numWaves; w++ {
			t.waves[w] = BuildWave(w)
		}
		return nil
	})
	g.Go(func() error {
		t.makeEnvelopes()
		return nil
	})
	g.Go(func() error {
		t.makeNoise(seed)
		return nil
	})
	g.Go(func() error {
		t.makeCents()
		for i := 1; i < len(t.velocity); i++ {
			t.velocity[i] = math32.Pow(float32(i+1)/128, 2.2)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// ----- Waves ----- //

// BuildWave returns a fresh WaveTableSize table. Triangle and sawtooth are
// shifted by 3/4 cycle so every wave rises through zero at phase 0.
func BuildWave(w Wave) []float32 {
	const s = WaveTableSize
	out := make([]float32, s)
	switch w {
	case WaveSquare:
		for i := 0; i < s; i++ {
			if i < s/2 {
				out[i] = 1
			} else {
				out[i] = -1
			}
		}
	case WaveTriangle:
		for i := 0; i < s; i++ {
			if i < s/2 {
				out[(i+3*s/4)%s] = float32(i)*4/s - 1
			} else {
				out[(i+3*s/4)%s] = 3 - float32(i)*4/s
			}
		}
	case WaveSaw:
		for i := 0; i < s; i++ {
			out[(i+3*s/4)%s] = float32(i)*2/s - 1
		}
	case WaveSinSaw2:
		sine := BuildWave(WaveSine)
		saw := BuildWave(WaveSaw)
		for i := 0; i < s; i++ {
			out[i] = ((sine[i]+1)+(saw[(i*2)%s]+1))/2 - 1
		}
	default:
		for i := 0; i < s; i++ {
			out[i] = math32.Sin(twoPi * float32(i) / s)
		}
	}
	return out
}

const phaseToIndex = WaveTableSize / twoPi

func (t *Tables) wave(w int, phase float32) float32 {
	return t.waves[w][int(phase*phaseToIndex)&(WaveTableSize-1)]
}

// ----- Envelopes ----- //

func (t *Tables) makeEnvelopes() {
	n := int(t.sampleRate / attackSlopeHz / 2)
	t.attackTime = 1000.0 / attackSlopeHz / 2
	t.attack = make([]float32, n)
	for i := range t.attack {
		t.attack[i] = (1 - math32.Cos(math32.Pi*float32(i)/float32(n))) / 2
	}

	n = int(t.sampleRate / releaseSlopeHz / 2)
	t.releaseTime = 1000.0 / releaseSlopeHz / 2
	t.release = make([]float32, n)
	for i := range t.release {
		t.release[i] = (1 + math32.Cos(math32.Pi*float32(i)/float32(n))) / 2
	}

	n = int(t.sampleRate / decaySlopeHz / 2)
	t.decayTime = 1000.0 / decaySlopeHz / 2
	t.decay = make([]float32, n)
	t.decay[0] = 1
	for i := 1; i < n; i++ {
		x := decayHalfLife / (t.decayTime * float32(i) / float32(n))
		t.decay[i] = 0.5 + math32.Tanh(math32.Log10(x))/2
	}
	// stretch so the head is exactly 1 and the tail exactly 0
	offset := t.decay[n-1]
	span := 1 - offset
	for i := range t.decay {
		t.decay[i] = (t.decay[i] - offset) / span
	}
}

// ----- Noise ----- //

type pinkFilter struct {
	z [pinkTaps]float32
	k [pinkTaps]float32
	t float32
}

func newPinkFilter() *pinkFilter {
	f := &pinkFilter{}
	f.k[pinkTaps-1] = 0.5
	for i := pinkTaps - 1; i > 0; i-- {
		f.k[i-1] = f.k[i] * 0.25
	}
	return f
}

func (f *pinkFilter) next(in float32) float32 {
	q := in
	for i := range f.z {
		f.z[i] = q*f.k[i] + f.z[i]*(1-f.k[i])
		q = (q + f.z[i]) * 0.5
	}
	f.t = 0.75*q + 0.25*f.t
	return f.t
}

func (t *Tables) makeNoise(seed int64) {
	n := t.bufferSamples * t.noiseFrames
	rng := rand.New(rand.NewSource(seed))
	t.white = make([]float32, n)
	t.triangular = make([]float32, n)
	t.cos4 = make([]float32, n)
	for i := 0; i < n; i++ {
		w := rng.Float32()*2 - 1
		r := math32.Abs(w)
		c := math32.Abs(1 - math32.Pow(math32.Cos(math32.Pi*(r*0.5-0.5)), 4))
		t.white[i] = w
		t.triangular[i] = (rng.Float32()*2 - 1) * r
		t.cos4[i] = (rng.Float32()*2 - 1) * c
	}

	t.pink = make([]float32, n)
	f := newPinkFilter()
	for i, w := range t.white {
		t.pink[i] = f.next(w)
	}
	// remove the drift so the table loops without a step
	head := t.pink[0]
	tail := f.next(t.white[0])
	drift := (tail - head) / float32(n)
	lo, hi := float32(1), float32(-1)
	for i := range t.pink {
		t.pink[i] -= drift * float32(i)
		lo = math32.Min(lo, t.pink[i])
		hi = math32.Max(hi, t.pink[i])
	}
	if hi <= lo {
		return
	}
	for i := range t.pink {
		t.pink[i] = (t.pink[i]-lo)/(hi-lo)*2 - 1
	}
}

// ----- Cents ----- //

func (t *Tables) makeCents() {
	t.cents = make([]float32, centTableSize)
	for i := range t.cents {
		t.cents[i] = math32.Pow(2, float32(i-centTableSize/2)/1200)
	}
	t.centHigh = (math32.Pow(2, linearCentRange/1200.0) - 1) / linearCentRange
	t.centLow = (math32.Pow(2, -linearCentRange/1200.0) - 1) / linearCentRange
}

func (t *Tables) centRatio(cent float32) float32 {
	const half = centTableSize / 2
	switch {
	case cent != cent:
		return 1
	case cent <= -half:
		return t.cents[0]
	case cent < -linearCentRange:
		return t.cents[half+int(cent)]
	case cent < 0:
		return 1 - cent*t.centLow
	case cent <= linearCentRange:
		return 1 + cent*t.centHigh
	case cent < half:
		return t.cents[half+int(cent)]
	}
	return t.cents[centTableSize-1]
}

// CentFrequency shifts freq by cent, never exceeding 0.47 of the sample rate.
func (t *Tables) CentFrequency(freq, cent float32) float32 {
	return math32.Min(freq*t.centRatio(cent), t.sampleRate*pitchCeiling)
}

// centIncrement is CentFrequency for phase increments in radians per sample.
func (t *Tables) centIncrement(inc, cent float32) float32 {
	return math32.Min(inc*t.centRatio(cent), twoPi*pitchCeiling)
}

// NoteFrequency is equal temperament at A4 = 440 Hz.
func NoteFrequency(key int) float32 {
	return math32.Pow(2, (float32(key)-69)/12) * 440
}

// VelocityPower maps a velocity through the 2.2 power curve. Velocity 0 is
// silent.
func (t *Tables) VelocityPower(velocity int) float32 {
	return t.velocity[clampi(velocity, 0, 127)]
}

// SampleRate ...
func (t *Tables) SampleRate() float32 { return t.sampleRate }

// BufferSamples ...
func (t *Tables) BufferSamples() int { return t.bufferSamples }
