// Command trippy reconstructs Trippy stimulus movies, archives stimulus
// conditions and trials, and verifies reconstructions against reference
// movies.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/cache"
	"github.com/banshee-data/monet-trippy/internal/config"
	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/fsutil"
	"github.com/banshee-data/monet-trippy/internal/version"
)

// app carries the settings shared by every subcommand.
type app struct {
	env config.Env
	out io.Writer
	fs  fsutil.FileSystem
}

func (a *app) openDB() (*db.DB, error) {
	d, err := db.Open(a.env.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", a.env.DBPath, err)
	}
	return d, nil
}

func (a *app) cache() (*cache.Cache, error) {
	return cache.New(a.fs, a.env.CacheDir)
}

// reconstructionConfig loads path, falling back to TRIPPY_CONFIG and then to
// the built-in defaults.
func (a *app) reconstructionConfig(path string) (*config.ReconstructionConfig, error) {
	if path == "" {
		path = a.env.Config
	}
	if path == "" {
		return config.DefaultReconstructionConfig(), nil
	}
	return config.LoadReconstructionConfig(path)
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, fs: fsutil.OSFileSystem{}}
	root := &cobra.Command{
		Use:           "trippy",
		Short:         "Reconstruct and verify Trippy stimulus movies",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := config.LoadEnv()
			if err != nil {
				return err
			}
			a.env = e
			return nil
		},
	}
	root.SetOut(out)
	root.AddCommand(
		newRenderCmd(a),
		newImportCmd(a),
		newVerifyCmd(a),
		newDiscrepancyCmd(a),
		newSessionCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
		newCacheCmd(a),
		newVersionCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Fatalf("trippy: %v", err)
	}
}
