// Package preview draws small waveform thumbnails for instrument editors.
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/jinjor/desktop-synth/src/synth"
)

const (
	minSize = 16
	maxSize = 400
	// InvertedSaw selects the sawtooth drawn upside down.
	InvertedSaw = 5
)

var (
	background = color.RGBA{R: 51, G: 51, B: 51, A: 255}
	trace      = color.RGBA{R: 255, G: 128, B: 0, A: 255}
)

var (
	wavesOnce sync.Once
	waves     [][]float32
)

func loadWaves() [][]float32 {
	wavesOnce.Do(func() {
		waves = make([][]float32, InvertedSaw)
		for w := range waves {
			waves[w] = synth.BuildWave(synth.Wave(w))
		}
	})
	return waves
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MiniWave draws one cycle of wave starting at phase degrees. Sizes are
// clamped to 16..400 px, phase to 0..359 (360 wraps to 0). Wave kinds are
// synth.Wave values plus InvertedSaw; anything else draws a sine.
func MiniWave(sizeX, sizeY, wave, phase int) *image.RGBA {
	sizeX = clamp(sizeX, minSize, maxSize)
	sizeY = clamp(sizeY, minSize, maxSize)
	invert := float32(1)
	if wave == InvertedSaw {
		wave = int(synth.WaveSaw)
		invert = -1
	}
	if wave < 0 || wave >= InvertedSaw {
		wave = int(synth.WaveSine)
	}
	phase = clamp(phase, 0, 360) % 360
	shift := int(float64(phase) / 360 * float64(sizeX))

	img := image.NewRGBA(image.Rect(0, 0, sizeX, sizeY))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	table := loadWaves()[wave]
	preY := 0
	for i := 0; i < sizeX; i++ {
		x := int(float64((i+shift)%sizeX) / float64(sizeX) * float64(len(table)))
		fy := (1 - table[x]*invert) / 2
		if fy >= 1 {
			fy = 0.99
		}
		if fy <= 0 {
			fy = 0.01
		}
		y := int(fy * float32(sizeY))
		if i == 0 {
			preY = y
		}
		// join to the previous column so steep edges stay connected
		from, to := min(y, preY), max(y, preY)
		for j := from; j <= to; j++ {
			img.SetRGBA(i, j, trace)
		}
		preY = y
	}
	return img
}
