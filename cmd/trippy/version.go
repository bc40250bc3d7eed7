package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.out, version.String())
			return err
		},
	}
}
