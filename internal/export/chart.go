package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"
)

// LuminanceChart builds an interactive line chart of per-frame mean and
// standard deviation.
func LuminanceChart(title string, stats *mat.Dense, fps float64) *charts.Line {
	n, _ := stats.Dims()
	xs := make([]string, n)
	means := make([]opts.LineData, n)
	stds := make([]opts.LineData, n)
	for t := 0; t < n; t++ {
		xs[t] = strconv.FormatFloat(float64(t)/fps, 'f', 3, 64)
		means[t] = opts.LineData{Value: stats.At(t, StatMean)}
		stds[t] = opts.LineData{Value: stats.At(t, StatStd)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frames=%d fps=%g", n, fps)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gray level", Min: 0, Max: 255}),
	)
	line.SetXAxis(xs).
		AddSeries("mean", means).
		AddSeries("std", stds)
	return line
}

// WriteLuminanceHTML renders LuminanceChart as a standalone HTML page.
func WriteLuminanceHTML(w io.Writer, title string, stats *mat.Dense, fps float64) error {
	return LuminanceChart(title, stats, fps).Render(w)
}
