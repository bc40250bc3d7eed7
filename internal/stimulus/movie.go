package stimulus

import (
	"fmt"
	"image"
	"math"
)

// PhaseMovie is the per-pixel phase in radians, frame-major then row-major.
type PhaseMovie struct {
	Frames int
	Height int
	Width  int
	Data   []float64
}

func newPhaseMovie(frames, height, width int) *PhaseMovie {
	return &PhaseMovie{
		Frames: frames,
		Height: height,
		Width:  width,
		Data:   make([]float64, frames*height*width),
	}
}

// At returns the phase of pixel (x, y) in frame t.
func (m *PhaseMovie) At(t, y, x int) float64 {
	return m.Data[(t*m.Height+y)*m.Width+x]
}

// Frame returns the phase values of frame t. The slice aliases m.Data.
func (m *PhaseMovie) Frame(t int) []float64 {
	n := m.Height * m.Width
	return m.Data[t*n : (t+1)*n]
}

// Movie is an 8-bit grayscale frame sequence of shape (Frames, Height, Width)
// with the frame rate it was displayed at.
type Movie struct {
	Frames int
	Height int
	Width  int
	FPS    float64
	Pix    []uint8
}

// NewMovie allocates a black movie.
func NewMovie(frames, height, width int, fps float64) *Movie {
	return &Movie{
		Frames: frames,
		Height: height,
		Width:  width,
		FPS:    fps,
		Pix:    make([]uint8, frames*height*width),
	}
}

// intensity maps a phase to the displayed gray level.
func intensity(phase float64) uint8 {
	v := math.Round(math.Cos(phase)*127.5 + 128)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Render converts a phase movie into gray levels.
func Render(phase *PhaseMovie, fps float64) *Movie {
	m := NewMovie(phase.Frames, phase.Height, phase.Width, fps)
	for i, p := range phase.Data {
		m.Pix[i] = intensity(p)
	}
	return m
}

// At returns the gray level of pixel (x, y) in frame t.
func (m *Movie) At(t, y, x int) uint8 {
	return m.Pix[(t*m.Height+y)*m.Width+x]
}

// Frame returns frame t as an image sharing the movie's pixels.
func (m *Movie) Frame(t int) *image.Gray {
	n := m.Height * m.Width
	return &image.Gray{
		Pix:    m.Pix[t*n : (t+1)*n : (t+1)*n],
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// Checksum is the sum of the gray levels of frame t.
func (m *Movie) Checksum(t int) uint64 {
	var sum uint64
	n := m.Height * m.Width
	for _, v := range m.Pix[t*n : (t+1)*n] {
		sum += uint64(v)
	}
	return sum
}

// SameShape reports whether a and b have identical dimensions.
func (m *Movie) SameShape(o *Movie) bool {
	return m.Frames == o.Frames && m.Height == o.Height && m.Width == o.Width
}

// MaxAbsDiff returns max |a-b| over all pixels. Movies of different shape
// cannot be compared.
func MaxAbsDiff(a, b *Movie) (int, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("movie shapes differ: (%d, %d, %d) vs (%d, %d, %d)",
			a.Frames, a.Height, a.Width, b.Frames, b.Height, b.Width)
	}
	worst := 0
	for i, v := range a.Pix {
		d := int(v) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst, nil
}
