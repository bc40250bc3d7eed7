package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// maxImportSize bounds a single import file.
const maxImportSize = 512 << 20

// referenceFile is the JSON form of a reference movie. Pixels are base64
// encoded, frame-major then row-major.
type referenceFile struct {
	ConditionHash string  `json:"condition_hash"`
	Frames        int     `json:"frames"`
	Height        int     `json:"height"`
	Width         int     `json:"width"`
	FPS           float64 `json:"fps"`
	Pixels        []byte  `json:"pixels"`
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load conditions, trials or reference movies into the archive",
	}
	cmd.AddCommand(
		importSubcommand(a, "conditions", "condition records (a JSON object or array of objects)", importConditions),
		importSubcommand(a, "trials", "trials with flip times (a JSON array)", importTrials),
		importSubcommand(a, "references", "reference movies (a JSON array)", importReferences),
	)
	return cmd
}

func importSubcommand(a *app, name, what string, load func(a *app, d *db.DB, data []byte) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " FILE...",
		Short: "Import " + what,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()
			for _, path := range args {
				data, err := readImportFile(path)
				if err != nil {
					return err
				}
				n, err := load(a, d, data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(a.out, "%s: imported %d %s\n", filepath.Base(path), n, name)
			}
			return nil
		},
	}
}

func readImportFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat import file: %w", err)
	}
	if info.Size() > maxImportSize {
		return nil, fmt.Errorf("import file too large: %d bytes (max %d)", info.Size(), maxImportSize)
	}
	return os.ReadFile(path)
}

func importConditions(a *app, d *db.DB, data []byte) (int, error) {
	var records []stimulus.Condition
	if err := json.Unmarshal(data, &records); err != nil {
		var one stimulus.Condition
		if err := json.Unmarshal(data, &one); err != nil {
			return 0, fmt.Errorf("failed to parse conditions: %w", err)
		}
		records = []stimulus.Condition{one}
	}
	for i, cond := range records {
		hash, _ := cond[stimulus.FieldConditionHash].(string)
		if hash == "" {
			return i, fmt.Errorf("condition %d: missing %s", i, stimulus.FieldConditionHash)
		}
		p, err := cond.TrippyParams()
		if err != nil {
			return i, fmt.Errorf("condition %s: %w", hash, err)
		}
		if err := p.Validate(); err != nil {
			return i, fmt.Errorf("condition %s: %w", hash, err)
		}
		if err := d.PutCondition(hash, p); err != nil {
			return i, err
		}
	}
	return len(records), nil
}

func importTrials(a *app, d *db.DB, data []byte) (int, error) {
	var trials []db.Trial
	if err := json.Unmarshal(data, &trials); err != nil {
		return 0, fmt.Errorf("failed to parse trials: %w", err)
	}
	for i, t := range trials {
		if err := d.PutTrial(t); err != nil {
			return i, err
		}
	}
	return len(trials), nil
}

func importReferences(a *app, d *db.DB, data []byte) (int, error) {
	var refs []referenceFile
	if err := json.Unmarshal(data, &refs); err != nil {
		return 0, fmt.Errorf("failed to parse reference movies: %w", err)
	}
	for i, r := range refs {
		if want := r.Frames * r.Height * r.Width; len(r.Pixels) != want {
			return i, fmt.Errorf("reference %s: %d pixels, want %d", r.ConditionHash, len(r.Pixels), want)
		}
		m := &stimulus.Movie{Frames: r.Frames, Height: r.Height, Width: r.Width, FPS: r.FPS, Pix: r.Pixels}
		if err := d.PutReferenceMovie(r.ConditionHash, m); err != nil {
			return i, err
		}
	}
	return len(refs), nil
}
