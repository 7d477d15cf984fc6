package synth

import "math"

// ----- Voice ----- //

// voice is one pooled unit of polyphony. Its delay buffer is allocated once
// with the pool and only zeroed on reuse.
type voice struct {
	note    NoteEvent
	program int // resolved instrument
	key     int // sounding key
	realKey [3]int
	inst    Instrument

	velocity        float32
	restartVelocity float32
	tempo           float32 // tempo * 1000
	restartTempo    float32
	unitOfTime      float32

	strength     float32
	attacked     float32
	decayed      float32
	floor        float32
	attackRatio  float64
	decayRatio   float64
	releaseRatio float64

	phase           [3]float32
	baseInc         [3]float32
	waves           [3]int
	morph           [3]float32
	mix             [3]float32
	jitterHalfRange float32
	fm              modulator
	am              modulator

	// session time at allocation (ms)
	origin float64
	// ms since allocation, and the schedule measured on the same clock
	passed      float64
	wait        float64
	maintain    float64
	restartWait float64

	delay     delayLine
	anomalies int
}

// start re-initializes v for a note. now is the session time at which the
// next rendered buffer begins.
func (v *voice) start(tb *Tables, ev NoteEvent, now float64, inst Instrument, program, key int, unitOfTime float32) {
	v.note = ev
	v.program = program
	v.key = key
	v.inst = inst

	v.origin = now
	v.passed = 0
	v.wait = ev.Time - now
	v.maintain = longTime
	v.restartWait = longTime

	v.tempo = float32(ev.Tempo) * 1000
	v.restartTempo = v.tempo
	v.unitOfTime = unitOfTime
	v.velocity = tb.VelocityPower(ev.Velocity)
	v.restartVelocity = v.velocity

	v.strength = 0
	v.attacked = 0
	v.decayed = 0
	v.floor = 0
	v.anomalies = 0
	v.attackRatio = slopeRatio(tb.attackTime, inst.AttackSlopeTime)
	v.decayRatio = slopeRatio(decayHalfLife, inst.DecayHalfLifeTime)
	v.releaseRatio = slopeRatio(tb.releaseTime, inst.ReleaseSlopeTime)

	v.mix[0] = inst.BaseVsOthersRatio
	v.mix[1] = (1 - inst.BaseVsOthersRatio) * inst.Side1VsSide2Ratio
	v.mix[2] = (1 - inst.BaseVsOthersRatio) * (1 - inst.Side1VsSide2Ratio)

	// increments start half a jitter range low so the jitter centers on pitch
	v.jitterHalfRange = inst.FreqNoiseCentRange * 0.5
	freq := NoteFrequency(key)
	for k := range v.phase {
		v.phase[k] = 0
		v.realKey[k] = key + int(inst.BaseOffsetCent[k]/100)
		v.morph[k] = clampf(float32(v.realKey[k])/morphKey, 0, 1)
		v.waves[k] = inst.BaseWave[k].index()
		c := tb.CentFrequency(freq, inst.BaseOffsetCent[k])
		l := tb.CentFrequency(c, -v.jitterHalfRange)
		v.baseInc[k] = twoPi * l / tb.sampleRate
	}

	v.fm.init(inst.FM, v.tempo, unitOfTime, tb.sampleRate)
	v.am.init(inst.AM, v.tempo, unitOfTime, tb.sampleRate)
	v.delay.reset(&inst)
}

// silence clears the sounding state before the voice goes back to the pool.
func (v *voice) silence() {
	v.phase = [3]float32{}
	v.strength = 0
	v.attacked = 0
	v.decayed = 0
}

func (v *voice) restartPending() bool {
	return v.restartWait < longTime
}

// render adds bufferSamples samples of this voice into frame and returns the
// peak of the running mix. end reports that the voice and its delay tail have
// fully decayed.
func (v *voice) render(tb *Tables, frame []float64, noiseBase int, div float32) (peak float64, end bool) {
	delta := 1000 / float64(tb.sampleRate)
	current := v.passed
	for i := range frame {
		seg := v.envelope(tb, current, delta)
		if seg == segEnd {
			return peak, true
		}
		if seg != segWaiting {
			n := noiseBase + i
			x, level := v.oscillate(tb, n, current > v.wait)
			if !(x >= -1 && x <= 1) {
				v.anomalies++
				x = clampf(x, -1, 1)
			}
			x = clampf(x*v.velocity*v.strength*div*level*v.inst.TotalGain, -1, 1)
			x = v.delay.process(x)

			frame[i] += float64(x)
			if a := math.Abs(frame[i]); a > peak {
				peak = a
			}
			if frame[i] > 1 {
				frame[i] = 1
			} else if frame[i] < -1 {
				frame[i] = -1
			}
		}
		current += delta
	}
	return peak, false
}
