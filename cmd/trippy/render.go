package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/cache"
	"github.com/banshee-data/monet-trippy/internal/export"
	"github.com/banshee-data/monet-trippy/internal/monitoring"
	"github.com/banshee-data/monet-trippy/internal/security"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

type renderOptions struct {
	seed       int64
	condition  string
	configPath string
	name       string
	quality    int
	report     bool
	force      bool
}

func newRenderCmd(a *app) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Reconstruct a movie and export it as an MJPEG AVI",
		Long: `Reconstructs a Trippy movie from a seed (with parameters from --config or
the defaults) or from an archived condition, and writes it to the output
directory. With --report a luminance plot and chart are written alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(o)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&o.seed, "seed", -1, "random seed of the condition")
	f.StringVar(&o.condition, "condition", "", "hash of an archived condition")
	f.StringVar(&o.configPath, "config", "", "JSON reconstruction config (default $TRIPPY_CONFIG)")
	f.StringVar(&o.name, "name", "", "output file name (default <Type>_seed<N>.avi)")
	f.IntVar(&o.quality, "quality", export.DefaultQuality, "JPEG quality of each frame")
	f.BoolVar(&o.report, "report", false, "also write luminance PNG and HTML reports")
	f.BoolVar(&o.force, "force", false, "overwrite an existing output file")
	cmd.MarkFlagsMutuallyExclusive("seed", "condition")
	return cmd
}

func (a *app) loadTrippy(o *renderOptions) (*stimulus.Trippy, string, error) {
	if o.condition != "" {
		d, err := a.openDB()
		if err != nil {
			return nil, "", err
		}
		defer d.Close()
		cond, err := d.GetCondition(o.condition)
		if err != nil {
			return nil, "", err
		}
		tr, err := stimulus.TrippyFromCondition(cond)
		return tr, "_" + o.condition, err
	}

	if o.seed < 0 {
		return nil, "", errors.New("one of --seed or --condition is required")
	}
	if o.seed > int64(^uint32(0)) {
		return nil, "", fmt.Errorf("seed %d does not fit in 32 bits", o.seed)
	}
	cfg, err := a.reconstructionConfig(o.configPath)
	if err != nil {
		return nil, "", err
	}
	tr, err := stimulus.NewTrippy(cfg.Params(uint32(o.seed)))
	return tr, fmt.Sprintf("_seed%d", o.seed), err
}

func (a *app) render(o *renderOptions) error {
	tr, suffix, err := a.loadTrippy(o)
	if err != nil {
		return err
	}
	movie, err := tr.Movie()
	if err != nil {
		return err
	}

	if err := a.fs.MkdirAll(a.env.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	name := o.name
	if name == "" {
		name = export.DefaultFilename(tr, suffix)
	}
	path, err := security.OutputPath(a.env.OutputDir, name)
	if err != nil {
		return err
	}
	if a.fs.Exists(path) && !o.force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := export.WriteAVI(path, movie, o.quality); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d frames, %dx%d @ %g fps)\n", path, movie.Frames, movie.Width, movie.Height, movie.FPS)

	if !o.report {
		return nil
	}
	stats, err := a.frameStats(tr)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(path, ".avi")
	title := strings.TrimSuffix(name, ".avi")
	if err := export.PlotFrameMeans(base+"_luminance.png", title, stats, movie.FPS); err != nil {
		return err
	}
	f, err := a.fs.Create(base + "_luminance.html")
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	if err := export.WriteLuminanceHTML(f, title, stats, movie.FPS); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	fmt.Fprintf(a.out, "wrote %s_luminance.{png,html}\n", base)
	return nil
}

// frameStats returns the per-frame luminance summary of v from the array
// cache, computing it on a miss.
func (a *app) frameStats(v stimulus.Visual) (*mat.Dense, error) {
	c, err := a.cache()
	if err != nil {
		return nil, err
	}
	return statsFromCache(c)(v)
}

func statsFromCache(c *cache.Cache) func(stimulus.Visual) (*mat.Dense, error) {
	return func(v stimulus.Visual) (*mat.Dense, error) {
		return c.GetOrCompute(export.StatsCacheKey(v), func() (*mat.Dense, error) {
			defer monitoring.Timed("frame stats")()
			m, err := v.Movie()
			if err != nil {
				return nil, err
			}
			stats := export.FrameStats(m)
			if stats == nil {
				return nil, errors.New("movie has no frames")
			}
			return stats, nil
		})
	}
}
