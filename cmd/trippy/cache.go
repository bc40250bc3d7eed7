package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the array cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove every cached array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cache()
			if err != nil {
				return err
			}
			freed, err := c.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "freed %s from %s\n", humanize.Bytes(freed), a.env.CacheDir)
			return nil
		},
	})
	return cmd
}
