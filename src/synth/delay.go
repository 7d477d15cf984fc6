package synth

// ----- Delay ----- //

// delayDuration is the ring buffer length in ms. Tap times must stay below it.
const delayDuration = 500

// tailFactor scales the longest tap time into the audible tail of a voice.
const tailFactor = 3

// delayLine is a per-voice feedback ring buffer with three taps. Each tap
// index runs ahead of the cursor by its delay time; taps advance in lockstep.
type delayLine struct {
	buf    []float32
	cursor int
	taps   [3]int
	ratios [3]float32
	main   float32
	tail   float64 // ms
}

func newDelayLine(sampleRate float32) delayLine {
	return delayLine{
		buf: make([]float32, int(sampleRate*delayDuration/1000)),
	}
}

func (d *delayLine) reset(inst *Instrument) {
	clear(d.buf)
	d.cursor = 0
	d.tail = 0
	d.main = 1
	size := float32(len(d.buf))
	for i := range d.taps {
		d.taps[i] = 0
		d.ratios[i] = 0
		t, r := inst.DelayTime[i], inst.DelayRatio[i]
		if t <= 0 || t >= delayDuration || r <= 0 || r >= 1 {
			continue
		}
		d.taps[i] = int(size / delayDuration * t)
		d.ratios[i] = r
		d.main -= r
		if float64(t) > d.tail {
			d.tail = float64(t)
		}
	}
	d.tail *= tailFactor
}

func (d *delayLine) process(in float32) float32 {
	if len(d.buf) == 0 {
		return in
	}
	out := clampf(in*d.main+d.buf[d.cursor], -1, 1)
	for i, idx := range d.taps {
		d.buf[idx] = clampf(d.buf[idx]+out*d.ratios[i], -1, 1)
		idx++
		if idx == len(d.buf) {
			idx = 0
		}
		d.taps[i] = idx
	}
	d.buf[d.cursor] = 0
	d.cursor++
	if d.cursor == len(d.buf) {
		d.cursor = 0
	}
	return out
}
