package synth

import (
	"fmt"
	"log/slog"
	"math"
)

const (
	defaultDivisionNum = 4
	defaultLogLevel    = 1
	// defaultTimeUnit makes tempo-synced rates count per beat at tempo in BPM.
	defaultTimeUnit = 60000

	minDivisionNum = 0.1
	maxDivisionNum = 64
	maxLogLevel    = 10
	maxTempo       = 999
)

// Config ...
type Config struct {
	SampleRate float64
	// BufferDuration is the host's nominal buffer length in seconds.
	BufferDuration float64
	BufferSamples  int
	// Seed drives the noise tables.
	Seed int64
}

// ControlParams are the live mixer settings.
type ControlParams struct {
	// DivisionNum is the assumed number of concurrent voices. Each voice is
	// scaled by 1/DivisionNum before mixing.
	DivisionNum float32
	LogLevel    int
}

func (c ControlParams) clamped() ControlParams {
	return ControlParams{
		DivisionNum: clampf(c.DivisionNum, minDivisionNum, maxDivisionNum),
		LogLevel:    clampi(c.LogLevel, 0, maxLogLevel),
	}
}

// Option ...
type Option func(*Synth)

// WithLogger enables diagnostics. Nothing is logged without it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synth) { s.logger = l }
}

// WithNotifier installs the callback for voice and level notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Synth) { s.notify = n }
}

// WithEventSource sets the timeline drained at the start of every buffer.
func WithEventSource(src EventSource) Option {
	return func(s *Synth) { s.source = src }
}

// Synth is the polyphonic engine. It is not safe for concurrent use; hosts
// that feed it from several goroutines must serialize calls themselves.
type Synth struct {
	logger *slog.Logger
	notify Notifier
	source EventSource

	config      Config
	tables      *Tables
	pool        *pool
	instruments [NumInstruments]Instrument
	percussions [NumPercussions]Percussion
	control     ControlParams

	now        float64 // ms
	frameTime  float64 // ms
	frameCount int
	unitOfTime float32
	maxValue   float64
	anomalies  int
}

// New returns an unconfigured synth loaded with the default banks.
func New(opts ...Option) *Synth {
	s := &Synth{
		instruments: DefaultInstruments(),
		percussions: DefaultPercussions(),
		control:     ControlParams{DivisionNum: defaultDivisionNum, LogLevel: defaultLogLevel},
		unitOfTime:  defaultTimeUnit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure builds the lookup tables and the voice pool. Any sounding voice
// is discarded and the session clock restarts at 0.
func (s *Synth) Configure(c Config) error {
	if !(c.SampleRate > 0) || c.BufferSamples <= 0 || c.BufferDuration < 0 {
		return fmt.Errorf("configure %+v: %w", c, ErrInvalidConfig)
	}
	tables, err := NewTables(float32(c.SampleRate), c.BufferSamples, c.Seed)
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	s.config = c
	s.tables = tables
	s.pool = newPool(tables.sampleRate)
	s.frameTime = float64(c.BufferSamples) * 1000 / c.SampleRate
	s.now = 0
	s.frameCount = 0
	s.maxValue = 0
	if s.logger != nil && c.BufferDuration > 0 && math.Abs(c.BufferDuration*1000-s.frameTime) >= 1 {
		s.logger.Warn("buffer duration does not match buffer samples",
			"duration_ms", c.BufferDuration*1000, "frame_ms", s.frameTime)
	}
	return nil
}

// Configured ...
func (s *Synth) Configured() bool {
	return s.tables != nil
}

// Tables returns the lookup tables, or nil before Configure.
func (s *Synth) Tables() *Tables {
	return s.tables
}

// Config ...
func (s *Synth) Config() Config {
	return s.config
}

// Now is the session clock in ms.
func (s *Synth) Now() float64 {
	return s.now
}

// FrameTime is the duration of one buffer in ms.
func (s *Synth) FrameTime() float64 {
	return s.frameTime
}

// ----- Mixer ----- //

// Render writes one buffer. Samples beyond the configured buffer size are
// left silent, and an unconfigured synth renders silence.
func (s *Synth) Render(out []float64) {
	clear(out)
	if s.tables == nil {
		return
	}
	frame := out
	if len(frame) > s.tables.bufferSamples {
		frame = frame[:s.tables.bufferSamples]
	}
	ended := s.drain()
	s.now += s.frameTime

	noiseBase := s.frameCount * s.tables.bufferSamples
	div := 1 / s.control.DivisionNum
	for pos := 0; pos < len(s.pool.active); {
		v := s.pool.at(pos)
		peak, end := v.render(s.tables, frame, noiseBase, div)
		s.anomalies += v.anomalies
		v.anomalies = 0
		if peak > s.maxValue {
			s.maxValue = peak
		}
		s.emitLevel(v, peak)
		if end && !v.restartPending() {
			s.pool.reclaim(pos)
			continue
		}
		v.passed += s.frameTime
		pos++
	}
	s.frameCount = (s.frameCount + 1) % s.tables.noiseFrames

	if ended && len(s.pool.active) == 0 {
		s.source.Restart()
		s.now = 0
	}
	if s.anomalies > 0 {
		if s.logger != nil && s.control.LogLevel >= 2 {
			s.logger.Warn("numeric anomalies clamped", "count", s.anomalies, "time", s.now)
		}
		s.anomalies = 0
	}
}

// drain applies every event due before the end of the coming buffer and
// reports whether the source is exhausted.
func (s *Synth) drain() bool {
	if s.source == nil {
		return false
	}
	until := s.now + s.frameTime
	for {
		ev := s.source.NextEvent(until)
		switch ev.State {
		case NoteEnd:
			return true
		case NoteEmpty:
			return false
		}
		// a dropped note is already logged; keep draining
		_ = s.apply(ev)
	}
}

func (s *Synth) emitLevel(v *voice, peak float64) {
	if s.notify == nil {
		return
	}
	s.notify(Notification{
		Kind:        NotifyLevel,
		Track:       v.note.Track,
		Channel:     v.note.Channel,
		Velocity:    v.note.Velocity,
		Program:     v.note.Program,
		Key:         v.note.Key,
		Instrument:  v.program,
		SoundingKey: v.key,
		MaxLevel:    int(s.maxValue * 1000),
		FrameLevel:  int(peak * 1000),
	})
}

// MaxLevel is the session peak since the last control change.
func (s *Synth) MaxLevel() float64 {
	return s.maxValue
}

// ActiveVoices ...
func (s *Synth) ActiveVoices() int {
	if s.pool == nil {
		return 0
	}
	return len(s.pool.active)
}

// FreeVoices ...
func (s *Synth) FreeVoices() int {
	if s.pool == nil {
		return 0
	}
	return len(s.pool.free)
}

// ----- Host API ----- //

func (s *Synth) hostEvent(state NoteState, ev NoteEvent) NoteEvent {
	return NoteEvent{
		State:    state,
		Track:    0,
		Channel:  clampi(ev.Channel, 0, maxChannel),
		Key:      clampi(ev.Key, 0, 127),
		Velocity: clampi(ev.Velocity, 0, 127),
		Program:  clampi(ev.Program, 0, NumInstruments-1),
		Time:     s.now,
		Tempo:    clampi(ev.Tempo, 1, maxTempo),
	}
}

// NoteOn starts a note at the current session time. Out-of-range fields are
// clamped. It returns ErrNoFreeVoice when the note had to be dropped.
func (s *Synth) NoteOn(ev NoteEvent) error {
	if s.tables == nil {
		return ErrNotConfigured
	}
	return s.allocate(s.hostEvent(NoteHeld, ev))
}

// NoteOff releases the held note on (channel, key), if any.
func (s *Synth) NoteOff(ev NoteEvent) error {
	if s.tables == nil {
		return ErrNotConfigured
	}
	s.release(s.hostEvent(NoteOff, ev))
	return nil
}

// ScheduleRestart retriggers the voice on (channel, key) after ms from now,
// without reallocating it. The attack resumes from the strength the voice has
// when the restart fires. A pending restart keeps the voice out of the pool.
func (s *Synth) ScheduleRestart(channel, key int, after float64, velocity, tempo int) error {
	if s.tables == nil {
		return ErrNotConfigured
	}
	v := s.pool.findAny(clampi(channel, 0, maxChannel), clampi(key, 0, 127))
	if v == nil {
		return fmt.Errorf("restart channel %d key %d: %w", channel, key, ErrVoiceNotFound)
	}
	if after < 0 {
		after = 0
	}
	v.restartWait = s.now - v.origin + after
	v.restartVelocity = s.tables.VelocityPower(velocity)
	v.restartTempo = float32(clampi(tempo, 1, maxTempo)) * 1000
	return nil
}

// Reset silences every voice and rewinds the clock and the event source.
func (s *Synth) Reset() {
	if s.pool != nil {
		s.pool.reset()
	}
	s.now = 0
	if s.source != nil {
		s.source.Restart()
	}
}

// SetEventSource replaces the timeline; nil detaches it.
func (s *Synth) SetEventSource(src EventSource) {
	s.source = src
	if src != nil {
		src.SetTimeUnit(float64(s.unitOfTime))
	}
}

// SetTimeUnit sets the milliseconds per tempo unit used by tempo-synced
// modulators and forwards it to the event source.
func (s *Synth) SetTimeUnit(msPerUnit float64) {
	if !(msPerUnit > 0) {
		msPerUnit = defaultTimeUnit
	}
	s.unitOfTime = float32(msPerUnit)
	if s.source != nil {
		s.source.SetTimeUnit(msPerUnit)
	}
}

// TimeUnit ...
func (s *Synth) TimeUnit() float64 {
	return float64(s.unitOfTime)
}

// ControlParams ...
func (s *Synth) ControlParams() ControlParams {
	return s.control
}

// SetControlParams clamps and applies p and resets the session peak.
func (s *Synth) SetControlParams(p ControlParams) {
	s.control = p.clamped()
	s.maxValue = 0
}

// ----- Banks ----- //

// Instruments returns a copy of the instrument bank.
func (s *Synth) Instruments() []Instrument {
	out := make([]Instrument, NumInstruments)
	copy(out, s.instruments[:])
	return out
}

// SetInstruments clamps and stores insts. Sounding voices keep the snapshot
// they started with. A bank of the wrong size is applied as far as it goes
// and reported with ErrBankSize.
func (s *Synth) SetInstruments(insts []Instrument) error {
	for i := 0; i < len(insts) && i < NumInstruments; i++ {
		s.instruments[i] = insts[i].Clamped()
	}
	if len(insts) != NumInstruments {
		s.bankSizeWarning("instruments", len(insts))
		return fmt.Errorf("%d instruments: %w", len(insts), ErrBankSize)
	}
	return nil
}

// Instrument ...
func (s *Synth) Instrument(program int) Instrument {
	return s.instruments[clampi(program, 0, NumInstruments-1)]
}

// SetInstrument ...
func (s *Synth) SetInstrument(program int, inst Instrument) {
	s.instruments[clampi(program, 0, NumInstruments-1)] = inst.Clamped()
}

// Percussions returns a copy of the percussion map.
func (s *Synth) Percussions() []Percussion {
	out := make([]Percussion, NumPercussions)
	copy(out, s.percussions[:])
	return out
}

// SetPercussions is SetInstruments for the percussion map.
func (s *Synth) SetPercussions(ps []Percussion) error {
	for i := 0; i < len(ps) && i < NumPercussions; i++ {
		s.percussions[i] = ps[i].Clamped()
	}
	if len(ps) != NumPercussions {
		s.bankSizeWarning("percussions", len(ps))
		return fmt.Errorf("%d percussions: %w", len(ps), ErrBankSize)
	}
	return nil
}

func (s *Synth) bankSizeWarning(bank string, n int) {
	if s.logger != nil && s.control.LogLevel >= 1 {
		s.logger.Warn("bank size mismatch", "bank", bank, "got", n)
	}
}
