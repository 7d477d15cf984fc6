package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jinjor/desktop-synth/src/audio"
	"github.com/jinjor/desktop-synth/src/synth"
)

var (
	rate       = flag.Int("rate", 48000, "sample rate in Hz")
	buffer     = flag.Int("buffer", 1024, "samples per synth buffer")
	sock       = flag.String("sock", "/tmp/desktop-synth.sock", "unix socket for the UI; empty disables it")
	presetDir  = flag.String("presets", "presets", "preset directory")
	presetName = flag.String("preset", "", "preset applied at startup")
	smfPath    = flag.String("smf", "", "MIDI file played in a loop")
	unit       = flag.Float64("unit", 60000, "ms per tempo unit")
	midiIn     = flag.Bool("midi", false, "listen to the first MIDI IN port")
	keys       = flag.Bool("keys", false, "play notes from the computer keyboard")
	debug      = flag.Bool("debug", false, "enable debug logging")
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	flag.Parse()
	initLogger(*debug)
	logger.Info("starting", "NumCPU", runtime.NumCPU(), "rate", *rate, "buffer", *buffer)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := audio.NewAudio(audio.Options{
		SampleRate:    *rate,
		BufferSamples: *buffer,
		PresetDir:     *presetDir,
		Logger:        logger,
	})
	if err != nil {
		fatal(err)
	}
	defer a.Close()
	if *presetName != "" {
		if err := a.ApplyPreset(*presetName); err != nil {
			fatal(err)
		}
	}
	if *smfPath != "" {
		if err := a.LoadSMF(*smfPath, strconv.FormatFloat(*unit, 'f', -1, 64)); err != nil {
			fatal(err)
		}
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		logger.Info("Caught signal: shutting down...", "signal", sig)
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Start(ctx)
	})
	if *midiIn {
		g.Go(func() error {
			for data := range audio.ListenToMidiIn(ctx) {
				a.AddMidiEvent(data)
			}
			return nil
		})
	}
	if *keys {
		g.Go(func() error {
			err := playKeys(ctx, a.CommandCh)
			cancel()
			return err
		})
	}
	if *sock != "" {
		listener, err := listenIPC(ctx, *sock)
		if err != nil {
			fatal(err)
		}
		g.Go(func() error {
			return serveIPC(ctx, listener, a.CommandCh, a)
		})
	}
	if err := g.Wait(); err != nil {
		fatal(err)
	}
	logger.Info("main() ended.")
}

func fatal(err error) {
	logger.Error("fatal", "err", err)
	os.Exit(1)
}

// ----- IPC ----- //

// reportSource is what the UI connection reports on.
type reportSource interface {
	Levels() audio.Levels
	Voices() <-chan synth.Notification
	TakeChange(name string) bool
	ToJSON() []byte
}

func listenIPC(ctx context.Context, sockFileName string) (net.Listener, error) {
	if err := os.Remove(sockFileName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return nil, err
	}
	logger.Info("start listening...", "sock", sockFileName)
	return listener, nil
}

// serveIPC serves one UI connection at a time until ctx is done. A broken
// connection is logged and the next one is accepted.
func serveIPC(ctx context.Context, listener net.Listener, commandCh chan<- []string, src reportSource) error {
	stop := context.AfterFunc(ctx, func() {
		logger.Info("Closing IPC...")
		if err := listener.Close(); err != nil {
			logger.Error("error while closing listener", "err", err)
		}
	})
	defer func() {
		if stop() {
			listener.Close()
		}
	}()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Info("UI connected")
		if err := serveConn(ctx, conn, commandCh, src); err != nil {
			logger.Warn("UI connection ended", "err", err)
		}
	}
}

func serveConn(ctx context.Context, conn net.Conn, commandCh chan<- []string, src reportSource) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	context.AfterFunc(ctx, func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("error while closing connection", "err", err)
		}
	})

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		return receiveCommands(ctx, conn, commandCh)
	})
	g.Go(func() error {
		defer cancel()
		return sendReports(ctx, conn, src)
	})
	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// maxCommandBytes bounds a single command line. Preset data is the longest.
const maxCommandBytes = 1 << 20

func receiveCommands(ctx context.Context, r io.Reader, commandCh chan<- []string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxCommandBytes)
	for scanner.Scan() {
		command, err := parseCommand(scanner.Text())
		if err != nil {
			return fmt.Errorf("command %q: %w", scanner.Text(), err)
		}
		if len(command) == 0 {
			continue
		}
		logger.Debug("received", "command", command)
		select {
		case commandCh <- command:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("receiveCommands() ended.")
	return nil
}

// parseCommand splits a line into URL-escaped words. Blank lines yield no
// command.
func parseCommand(line string) ([]string, error) {
	words := strings.Fields(line)
	for i, word := range words {
		unescaped, err := url.QueryUnescape(word)
		if err != nil {
			return nil, err
		}
		words[i] = unescaped
	}
	return words, nil
}

func formatLevels(l audio.Levels) string {
	return fmt.Sprintf("level %d %d %d", int(l.Max*1000), int(l.Frame*1000), l.Active)
}

func formatVoice(n synth.Notification) string {
	kind := "on"
	if n.Kind == synth.NotifyNoteOff {
		kind = "off"
	}
	return fmt.Sprintf("voice %s %d %d %d %d", kind, n.Channel, n.Key, n.Instrument, n.SoundingKey)
}

// sendReports writes voice lines as they happen and a level line, plus the
// preset data after a change, at 60 Hz. Every line is flushed before the
// next wait, and the first failed write ends the loop.
func sendReports(ctx context.Context, w io.Writer, src reportSource) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	bw := bufio.NewWriter(w)
	var lines []string
	for {
		lines = lines[:0]
		select {
		case <-ctx.Done():
			logger.Info("sendReports() ended.")
			return nil
		case n := <-src.Voices():
			lines = append(lines, formatVoice(n))
		case <-t.C:
			lines = append(lines, formatLevels(src.Levels()))
			if src.TakeChange("data") {
				lines = append(lines, "data "+url.QueryEscape(string(src.ToJSON())))
			}
		}
		if err := writeLines(bw, lines); err != nil {
			return fmt.Errorf("send report: %w", err)
		}
	}
}

func writeLines(w *bufio.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
