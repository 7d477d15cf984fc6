package synth

// MaxVoices is the fixed polyphony.
const MaxVoices = 64

// pool owns every voice. free + active = MaxVoices at all times; both slices
// are preallocated and only resliced.
type pool struct {
	voices []voice
	free   []int
	active []int
}

func newPool(sampleRate float32) *pool {
	p := &pool{
		voices: make([]voice, MaxVoices),
		free:   make([]int, 0, MaxVoices),
		active: make([]int, 0, MaxVoices),
	}
	for i := range p.voices {
		p.voices[i].delay = newDelayLine(sampleRate)
		p.free = append(p.free, i)
	}
	return p
}

// acquire moves the oldest free voice to the end of the active list.
func (p *pool) acquire() (*voice, bool) {
	if len(p.free) == 0 {
		return nil, false
	}
	id := p.free[0]
	copy(p.free, p.free[1:])
	p.free = p.free[:len(p.free)-1]
	p.active = append(p.active, id)
	return &p.voices[id], true
}

// reclaim returns the voice at position pos of the active list to the pool.
func (p *pool) reclaim(pos int) {
	id := p.active[pos]
	p.voices[id].silence()
	p.active = append(p.active[:pos], p.active[pos+1:]...)
	p.free = append(p.free, id)
}

func (p *pool) at(pos int) *voice {
	return &p.voices[p.active[pos]]
}

// find returns the first active voice playing (channel, key) that has not
// been released yet.
func (p *pool) find(channel, key int) *voice {
	for _, id := range p.active {
		v := &p.voices[id]
		if v.note.Channel == channel && v.note.Key == key && v.note.State != NoteOff {
			return v
		}
	}
	return nil
}

// findAny is like find but also matches released voices, newest first.
func (p *pool) findAny(channel, key int) *voice {
	if v := p.find(channel, key); v != nil {
		return v
	}
	for i := len(p.active) - 1; i >= 0; i-- {
		v := &p.voices[p.active[i]]
		if v.note.Channel == channel && v.note.Key == key {
			return v
		}
	}
	return nil
}

func (p *pool) reset() {
	for len(p.active) > 0 {
		p.reclaim(len(p.active) - 1)
	}
}
