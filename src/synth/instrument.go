package synth

// ----- Wave Kind ----- //

// Wave selects one of the precomputed waveform tables.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
	WaveSaw
	// WaveSinSaw2 is a sine riding on a double-speed sawtooth. As a modulator
	// it is played as an inverted sawtooth instead.
	WaveSinSaw2
	numWaves
)

func (w Wave) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveSinSaw2:
		return "sin-saw2"
	}
	return "unknown"
}

func (w Wave) index() int {
	if w < 0 || w >= numWaves {
		return int(WaveSine)
	}
	return int(w)
}

// NoiseColor ...
type NoiseColor int

const (
	NoiseWhite NoiseColor = iota
	NoisePink
	numNoiseColors
)

// NoiseDistribution shapes the per-sample pitch jitter.
type NoiseDistribution int

const (
	DistFlat NoiseDistribution = iota
	DistTriangular
	DistCos4
	numNoiseDistributions
)

// ----- Instrument ----- //

const (
	NumInstruments = 256
	NumPercussions = 128

	maxSlopeTime  = 5000 // ms
	maxCent       = 8400
	maxModFreq    = 7040 // Hz
	maxDelayRatio = 0.99
)

// Instrument is one timbre. Times are in milliseconds, offsets in cents.
type Instrument struct {
	TotalGain float32

	AttackSlopeTime   float32
	DecayHalfLifeTime float32
	SustainRate       float32
	ReleaseSlopeTime  float32

	BaseVsOthersRatio float32
	Side1VsSide2Ratio float32
	BaseOffsetCent    [3]float32
	BaseWave          [3]Wave

	NoiseRatio float32
	NoiseColor NoiseColor

	DelayTime  [3]float32
	DelayRatio [3]float32

	FreqNoiseCentRange float32
	FreqNoiseType      NoiseDistribution

	FM Modulation
	AM Modulation
}

// Modulation describes the FM or AM modulator. Depth is in cents for FM and
// a 0..1 level for AM. PhaseOffset is in half cycles.
type Modulation struct {
	Depth       float32
	Freq        float32
	PhaseOffset float32
	Sync        bool
	Wave        Wave
}

// Percussion maps a percussion key to an instrument and the key it sounds.
type Percussion struct {
	Program int
	Key     int
}

func clampf(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampPhaseOffset(v float32) float32 {
	v = clampf(v, 0, 2)
	if v == 2 {
		return 0
	}
	return v
}

// Clamped returns a copy with every field forced into its documented range.
func (inst Instrument) Clamped() Instrument {
	c := inst
	c.TotalGain = clampf(c.TotalGain, 0, 1)
	c.AttackSlopeTime = clampf(c.AttackSlopeTime, 0, maxSlopeTime)
	c.DecayHalfLifeTime = clampf(c.DecayHalfLifeTime, 0, maxSlopeTime)
	c.SustainRate = clampf(c.SustainRate, 0, 1)
	c.ReleaseSlopeTime = clampf(c.ReleaseSlopeTime, 0, maxSlopeTime)
	c.BaseVsOthersRatio = clampf(c.BaseVsOthersRatio, 0, 1)
	c.Side1VsSide2Ratio = clampf(c.Side1VsSide2Ratio, 0, 1)
	for i := range c.BaseOffsetCent {
		c.BaseOffsetCent[i] = clampf(c.BaseOffsetCent[i], -maxCent, maxCent)
		c.BaseWave[i] = Wave(clampi(int(c.BaseWave[i]), 0, int(numWaves)-1))
	}
	c.NoiseRatio = clampf(c.NoiseRatio, 0, 1)
	c.NoiseColor = NoiseColor(clampi(int(c.NoiseColor), 0, int(numNoiseColors)-1))
	for i := range c.DelayTime {
		c.DelayTime[i] = clampf(c.DelayTime[i], 0, delayDuration)
		c.DelayRatio[i] = clampf(c.DelayRatio[i], 0, maxDelayRatio)
	}
	c.FreqNoiseCentRange = clampf(c.FreqNoiseCentRange, -maxCent, maxCent)
	c.FreqNoiseType = NoiseDistribution(clampi(int(c.FreqNoiseType), 0, int(numNoiseDistributions)-1))

	c.FM.Depth = clampf(c.FM.Depth, -maxCent, maxCent)
	c.FM.Freq = clampf(c.FM.Freq, 0, maxModFreq)
	c.FM.PhaseOffset = clampPhaseOffset(c.FM.PhaseOffset)
	c.FM.Wave = Wave(clampi(int(c.FM.Wave), 0, int(numWaves)-1))

	c.AM.Depth = clampf(c.AM.Depth, 0, 1)
	c.AM.Freq = clampf(c.AM.Freq, 0, maxModFreq)
	c.AM.PhaseOffset = clampPhaseOffset(c.AM.PhaseOffset)
	c.AM.Wave = Wave(clampi(int(c.AM.Wave), 0, int(numWaves)-1))
	return c
}

// Clamped ...
func (p Percussion) Clamped() Percussion {
	return Percussion{
		Program: clampi(p.Program, 0, NumInstruments-1),
		Key:     clampi(p.Key, 0, 127),
	}
}
