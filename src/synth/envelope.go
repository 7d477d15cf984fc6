package synth

// ----- Envelope ----- //

// longTime stands for "until further notice" in voice durations (ms).
const longTime = 36000000.0

// minSlopeTime keeps slope ratios finite for zero-length segments (ms).
const minSlopeTime = 0.001

type segment int

const (
	segWaiting segment = iota
	segAttack
	segDecay
	segRelease
	segEnd
)

func slopeRatio(tableTime, instrumentTime float32) float64 {
	if instrumentTime < minSlopeTime {
		instrumentTime = minSlopeTime
	}
	return float64(tableTime) / float64(instrumentTime)
}

// tableIndex converts a scaled elapsed time into an index into a table of
// length n, saturating at the last entry.
func tableIndex(x float64, n int) int {
	if !(x >= 0) {
		return 0
	}
	if x >= float64(n-1) {
		return n - 1
	}
	return int(x)
}

// envelope updates v.strength for a voice that has been alive for current ms.
// Segments are checked in priority order: restart, end, release, decay and
// sustain, attack.
func (v *voice) envelope(tb *Tables, current, delta float64) segment {
	if current > v.restartWait {
		v.note.State = NoteHeld
		v.maintain = longTime
		v.restartWait = longTime
		v.floor = v.strength
		v.wait = current
		v.velocity = v.restartVelocity
		if v.tempo != v.restartTempo {
			v.tempo = v.restartTempo
			v.fm.retune(v.inst.FM, v.tempo, v.unitOfTime, tb.sampleRate)
			v.am.retune(v.inst.AM, v.tempo, v.unitOfTime, tb.sampleRate)
		}
	}
	held := v.wait + v.maintain
	seg := segWaiting
	switch {
	case current > held+float64(v.inst.ReleaseSlopeTime)+v.delay.tail:
		return segEnd
	case current > held:
		d := tableIndex((current-held)*v.releaseRatio/delta, len(tb.release))
		v.setStrength(v.decayed * tb.release[d])
		v.floor = v.strength
		seg = segRelease
	case current > v.wait+float64(v.inst.AttackSlopeTime):
		if float64(v.inst.AttackSlopeTime) < delta {
			// the whole attack fell between two samples
			v.attacked = 1
		}
		d := tableIndex((current-(v.wait+float64(v.inst.AttackSlopeTime)))*v.decayRatio/delta, len(tb.decay))
		sustain := v.inst.SustainRate
		v.setStrength(v.attacked * (tb.decay[d]*(1-sustain) + sustain))
		v.decayed = v.strength
		v.floor = v.strength
		seg = segDecay
	case current > v.wait:
		d := tableIndex((current-v.wait)*v.attackRatio/delta, len(tb.attack))
		v.setStrength(tb.attack[d]*(1-v.floor) + v.floor)
		v.attacked = v.strength
		v.decayed = v.strength
		seg = segAttack
	}
	return seg
}

func (v *voice) setStrength(s float32) {
	if !(s >= 0 && s <= 1) {
		v.anomalies++
		s = clampf(s, 0, 1)
	}
	v.strength = s
}
