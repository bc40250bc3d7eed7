package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/verify"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		configPath string
		tolerance  int
	)
	cmd := &cobra.Command{
		Use:   "verify [HASH...]",
		Short: "Reconstruct archived conditions and compare them to their reference movies",
		Long: `Reconstructs each named condition, or every archived condition when none is
named, and compares it pixel by pixel against its stored reference movie.
Every outcome is recorded in the archive under one run id.

Gray levels are rounded to the nearest integer. References rendered by
tools that truncate instead differ by one level on about half of the
pixels; verify those with --tolerance 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.reconstructionConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tolerance") {
				tolerance = cfg.GetTolerance()
			}
			if tolerance < 0 || tolerance > 255 {
				return fmt.Errorf("tolerance must be between 0 and 255, got %d", tolerance)
			}

			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			hashes := args
			if len(hashes) == 0 {
				if hashes, err = d.ListConditionHashes(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.GetVerifyTimeout())
			defer cancel()

			runner := &verify.Runner{Store: d, Workers: a.env.Workers, Tolerance: tolerance}
			report, err := runner.VerifyAll(ctx, hashes)
			if err != nil {
				return err
			}
			for _, res := range report.Results {
				status := "ok"
				if !res.Passed() {
					status = "FAIL: " + res.Err.Error()
				}
				fmt.Fprintf(a.out, "%s  max|diff|=%d  %s\n", res.ConditionHash, res.MaxAbsDiff, status)
			}
			fmt.Fprintf(a.out, "run %s: %d/%d passed\n", report.RunID, len(report.Results)-report.Failures(), len(report.Results))
			if n := report.Failures(); n > 0 {
				return fmt.Errorf("%d of %d conditions failed verification", n, len(report.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "JSON config with tolerance and verify_timeout (default $TRIPPY_CONFIG)")
	cmd.Flags().IntVar(&tolerance, "tolerance", 0, "largest accepted per-pixel difference in gray levels")
	return cmd
}
