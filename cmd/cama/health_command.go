package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database integrity and report entity counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				health, err := a.store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				integrity := "ok"
				if !health.IntegrityCheck {
					integrity = "FAILED"
				}
				rows := [][]string{
					{"Database", health.DBPath},
					{"Integrity", integrity},
					{"Stations", fmt.Sprintf("%d", health.Stations)},
					{"Checkpoints", fmt.Sprintf("%d", health.Checkpoints)},
					{"Sessions", fmt.Sprintf("%d", health.Sessions)},
					{"Queued items", fmt.Sprintf("%d", health.PendingQueue)},
				}
				out := renderTable([]column{col("Check"), col("Value")}, rows)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}
