package audio

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/hajimehoshi/oto"

	"github.com/jinjor/desktop-synth/src/synth"
)

const (
	defaultSampleRate    = 48000
	defaultBufferSamples = 1024
	channelNum           = 2
	bitDepthInBytes      = 2
)
const (
	bytesPerSample = bitDepthInBytes * channelNum
	pcmMax         = 1<<(bitDepthInBytes*8-1) - 1
)

// ----- Changes ----- //

// Changes names the pieces of state the UI has to fetch again. The zero
// value is ready to use.
type Changes struct {
	mu      sync.Mutex
	pending map[string]bool
}

// Add marks name as changed.
func (c *Changes) Add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = make(map[string]bool)
	}
	c.pending[name] = true
}

// Has ...
func (c *Changes) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[name]
}

// Take reports whether name was marked and clears the mark, so concurrent
// readers see each change once.
func (c *Changes) Take(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending[name] {
		return false
	}
	delete(c.pending, name)
	return true
}

// ----- Levels ----- //

// Levels is the meter snapshot sent to the UI.
type Levels struct {
	Max    float64
	Frame  float64
	Active int
}

// ----- Audio ----- //

// Audio streams the synth to the sound device. Every access to the synth
// goes through mu.
type Audio struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	Changes    *Changes
	// VoiceCh receives note on/off notifications. Notifications are dropped
	// while nobody reads.
	VoiceCh chan synth.Notification

	sampleRate    int
	bufferSamples int

	mu       sync.Mutex
	synth    *synth.Synth
	presets  *synth.PresetManager
	programs [16]int
	tempo    int
	out      []float64
	block    *goaudio.FloatBuffer
	pcm      *goaudio.IntBuffer
	cursor   int
	frame    float64
}

var _ io.Reader = (*Audio)(nil)

// Options ...
type Options struct {
	SampleRate int
	// BufferSamples is the synth block size. The device buffer is at least
	// 1024 frames regardless.
	BufferSamples int
	PresetDir     string
	Logger        *slog.Logger
}

func newAudio(opts Options) (*Audio, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = defaultSampleRate
	}
	if opts.BufferSamples <= 0 {
		opts.BufferSamples = defaultBufferSamples
	}
	a := &Audio{
		sampleRate:    opts.SampleRate,
		bufferSamples: opts.BufferSamples,
		ctx:           context.Background(),
		CommandCh:     make(chan []string, 256),
		Changes:       &Changes{},
		VoiceCh:       make(chan synth.Notification, 256),
		presets:       synth.NewPresetManager(opts.PresetDir),
		tempo:         120,
		out:           make([]float64, opts.BufferSamples),
		block: &goaudio.FloatBuffer{
			Format: &goaudio.Format{NumChannels: channelNum, SampleRate: opts.SampleRate},
			Data:   make([]float64, opts.BufferSamples*channelNum),
		},
	}
	a.pcm = quantize(a.out, a.block)
	a.cursor = a.pcm.NumFrames()
	a.synth = synth.New(synth.WithLogger(logger), synth.WithNotifier(a.notify))
	err := a.synth.Configure(synth.Config{
		SampleRate:     float64(opts.SampleRate),
		BufferDuration: float64(opts.BufferSamples) / float64(opts.SampleRate),
		BufferSamples:  opts.BufferSamples,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewAudio ...
func NewAudio(opts Options) (*Audio, error) {
	a, err := newAudio(opts)
	if err != nil {
		return nil, err
	}
	otoContext, err := oto.NewContext(a.sampleRate, channelNum, bitDepthInBytes, a.bufferSizeInBytes())
	if err != nil {
		return nil, err
	}
	a.otoContext = otoContext
	go processCommands(a, a.CommandCh)
	return a, nil
}

// bufferSizeInBytes should be >= 4096
func (a *Audio) bufferSizeInBytes() int {
	return max(a.bufferSamples, 1024) * bytesPerSample
}

// notify runs inside Render, with mu held.
func (a *Audio) notify(n synth.Notification) {
	if n.Kind == synth.NotifyLevel {
		if l := float64(n.FrameLevel) / 1000; l > a.frame {
			a.frame = l
		}
		return
	}
	select {
	case a.VoiceCh <- n:
	default:
	}
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		slog.Info("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	frames := len(buf) / bytesPerSample
	for i := 0; i < frames; {
		if a.cursor >= a.pcm.NumFrames() {
			a.renderBlock()
		}
		n := min(frames-i, a.pcm.NumFrames()-a.cursor)
		from := a.cursor * channelNum
		writeBuffer(a.pcm.Data[from:from+n*channelNum], buf[i*bytesPerSample:(i+n)*bytesPerSample])
		a.cursor += n
		i += n
	}
	return frames * bytesPerSample, nil
}

// renderBlock renders one synth buffer and converts it to device PCM.
func (a *Audio) renderBlock() {
	a.frame = 0
	a.synth.Render(a.out)
	a.pcm = quantize(a.out, a.block)
	a.cursor = 0
}

// quantize spreads a mono block over every channel of block, scaled to the
// 16-bit range, and lets go-audio convert it to integer samples.
func quantize(out []float64, block *goaudio.FloatBuffer) *goaudio.IntBuffer {
	ch := block.Format.NumChannels
	for i, value := range out {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		for c := 0; c < ch; c++ {
			block.Data[i*ch+c] = value * pcmMax
		}
	}
	pcm := block.AsIntBuffer()
	pcm.SourceBitDepth = bitDepthInBytes * 8
	return pcm
}

// writeBuffer encodes interleaved samples as signed 16-bit little endian.
func writeBuffer(data []int, buf []byte) {
	for i, value := range data {
		binary.LittleEndian.PutUint16(buf[bitDepthInBytes*i:], uint16(int16(value)))
	}
}

// Voices ...
func (a *Audio) Voices() <-chan synth.Notification {
	return a.VoiceCh
}

// TakeChange reports whether name changed since the last call.
func (a *Audio) TakeChange(name string) bool {
	return a.Changes.Take(name)
}

// Levels ...
func (a *Audio) Levels() Levels {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Levels{
		Max:    a.synth.MaxLevel(),
		Frame:  a.frame,
		Active: a.synth.ActiveVoices(),
	}
}

// ----- JSON ----- //

type audioJSON struct {
	State json.RawMessage `json:"state"`
}

// ApplyJSON ...
func (a *Audio) ApplyJSON(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var j audioJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	err := a.synth.ApplyPresetJSON(j.State)
	a.Changes.Add("data")
	return err
}

// ToJSON ...
func (a *Audio) ToJSON() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	bytes, err := json.Marshal(&audioJSON{State: a.synth.PresetJSON()})
	if err != nil {
		panic(err)
	}
	return bytes
}

// ----- Lifecycle ----- //

// Close ...
func (a *Audio) Close() error {
	slog.Info("Closing Audio...")
	close(a.CommandCh)
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start ...
func (a *Audio) Start(ctx context.Context) error {
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			slog.Error("failed to close player", "err", err)
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, a.bufferSizeInBytes())); err != nil {
		return err
	}
	slog.Info("Start() ended.")
	return nil
}
