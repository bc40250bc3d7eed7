package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/session"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

func newSessionCmd(a *app) *cobra.Command {
	var (
		depths   int
		delaysMs []float64
	)
	cmd := &cobra.Command{
		Use:   "session HASH",
		Short: "Pair the archived trials of a condition with its reconstructed stimulus",
		Long: `Builds the condition once and pairs every archived trial whose flip count
matches its frame count. With --depths the stored flip times are treated as
one sync time per imaging depth and decimated to one per frame first. The
per-unit sample times are the paired frame times shifted by --delays-ms.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := args[0]
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			cond, err := d.GetCondition(hash)
			if err != nil {
				return err
			}
			tr, err := stimulus.TrippyFromCondition(cond)
			if err != nil {
				return err
			}
			trials, err := d.TrialsForCondition(hash)
			if err != nil {
				return err
			}

			skipped := 0
			if depths > 1 {
				kept := trials[:0]
				for _, t := range trials {
					times, err := session.DecimateFrameTimes(t.FlipTimes, tr.FrameCount(), depths)
					if err != nil {
						fmt.Fprintf(a.out, "%s: %v\n", t.TrialKey, err)
						skipped++
						continue
					}
					t.FlipTimes = times
					kept = append(kept, t)
				}
				trials = kept
			}

			s := &session.VisualSession{}
			skipped += s.AddArchivedTrials(trials, func(string) (stimulus.Visual, error) { return tr, nil })
			fmt.Fprintf(a.out, "condition %s: %d trials paired, %d skipped\n", hash, len(s.Trials), skipped)
			if len(s.Trials) == 0 {
				return nil
			}

			var frameTimes []float64
			for _, t := range s.Trials {
				frameTimes = append(frameTimes, t.FrameTimes...)
			}
			times, err := session.ApplyDelays(delaysMs, frameTimes)
			if err != nil {
				return err
			}
			r, c := times.Dims()
			fmt.Fprintf(a.out, "unit sample times: %dx%d\n", r, c)
			return nil
		},
	}
	cmd.Flags().IntVar(&depths, "depths", 1, "imaging depths per recorded volume")
	cmd.Flags().Float64SliceVar(&delaysMs, "delays-ms", []float64{0}, "per-unit scan delays in milliseconds")
	return cmd
}
