package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the archive schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				// Open migrates up before returning.
				d, err := a.openDB()
				if err != nil {
					return err
				}
				defer d.Close()
				v, _, err := d.MigrateVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s at schema version %d\n", d.Path(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current and latest schema versions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := a.openDB()
				if err != nil {
					return err
				}
				defer d.Close()
				v, dirty, err := d.MigrateVersion()
				if err != nil {
					return err
				}
				latest, err := db.LatestMigrationVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "current: %d\nlatest:  %d\ndirty:   %t\n", v, latest, dirty)
				return nil
			},
		},
	)
	return cmd
}
