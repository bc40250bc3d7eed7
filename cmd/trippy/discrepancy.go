package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/session"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

func newDiscrepancyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discrepancy",
		Short: "Compare each trial's recorded flips to the frames its condition should show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			trials, err := d.Trials()
			if err != nil {
				return err
			}
			params := map[string]stimulus.Params{}
			for _, t := range trials {
				p, ok := params[t.ConditionHash]
				if !ok {
					cond, err := d.GetCondition(t.ConditionHash)
					if err != nil {
						return fmt.Errorf("trial %s: %w", t.TrialKey, err)
					}
					if p, err = cond.TrippyParams(); err != nil {
						return fmt.Errorf("trial %s: %w", t.TrialKey, err)
					}
					params[t.ConditionHash] = p
				}
				rec := db.Discrepancy{
					TrialKey:       t.TrialKey,
					ConditionHash:  t.ConditionHash,
					ExpectedFrames: p.Duration * p.FrameRate,
					Flips:          len(t.FlipTimes),
					Value:          session.Discrepancy(p.Duration, p.FrameRate, len(t.FlipTimes)),
				}
				if err := d.RecordDiscrepancy(rec); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s  expected=%g flips=%d discrepancy=%g\n", t.TrialKey, rec.ExpectedFrames, rec.Flips, rec.Value)
			}
			return nil
		},
	}
}
