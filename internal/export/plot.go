package export

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotFrameMeans saves a PNG (or any format gonum/plot infers from the
// extension) of the per-frame mean luminance with a +/- one standard
// deviation band. The x axis is in seconds.
func PlotFrameMeans(path, title string, stats *mat.Dense, fps float64) error {
	if fps <= 0 {
		return errors.New("frame rate must be positive")
	}
	n, _ := stats.Dims()

	mean := make(plotter.XYs, n)
	upper := make(plotter.XYs, n)
	lower := make(plotter.XYs, n)
	for t := 0; t < n; t++ {
		x := float64(t) / fps
		m, s := stats.At(t, StatMean), stats.At(t, StatStd)
		mean[t] = plotter.XY{X: x, Y: m}
		upper[t] = plotter.XY{X: x, Y: m + s}
		lower[t] = plotter.XY{X: x, Y: m - s}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Gray level"
	p.Y.Min = 0
	p.Y.Max = 255

	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return err
	}
	meanLine.Width = vg.Points(1)
	meanLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(meanLine)
	p.Legend.Add("mean", meanLine)

	grey := color.RGBA{R: 150, G: 150, B: 150, A: 255}
	for _, band := range []plotter.XYs{upper, lower} {
		l, err := plotter.NewLine(band)
		if err != nil {
			return err
		}
		l.Width = vg.Points(0.5)
		l.Color = grey
		l.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(l)
	}

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
