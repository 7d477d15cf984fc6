package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/jinjor/desktop-synth/src/preview"
	"github.com/jinjor/desktop-synth/src/synth"
)

var (
	width  = flag.Int("width", 128, "picture width in px")
	height = flag.Int("height", 64, "picture height in px")
	phase  = flag.Int("phase", 0, "start phase in degrees")
)

func main() {
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: wavepic [flags] <dir>")
		os.Exit(2)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	g, _ := errgroup.WithContext(context.Background())
	for wave := 0; wave <= preview.InvertedSaw; wave++ {
		wave := wave
		name := "inverted-saw"
		if wave < preview.InvertedSaw {
			name = synth.Wave(wave).String()
		}
		g.Go(func() error {
			path := filepath.Join(dir, name+".png")
			if err := writePNG(path, wave); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			slog.Info("saved", "wave", name, "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("failed to write pictures", "err", err)
		os.Exit(1)
	}
	slog.Info("Successfully generated pictures.")
}

func writePNG(path string, wave int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, preview.MiniWave(*width, *height, wave, *phase)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
