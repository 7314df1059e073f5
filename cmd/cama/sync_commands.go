package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cama/internal/logging"
	"cama/internal/outbox"
	"cama/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Drain the offline queue to the sync sink",
	}

	syncCmd.AddCommand(newSyncFlushCommand(ctx))
	syncCmd.AddCommand(newSyncWatchCommand(ctx))

	return syncCmd
}

func newSyncFlushCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Flush queued items once, in batches, until the queue is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				total := 0
				for {
					flushed, err := a.flusher.Flush(cmd.Context())
					if err != nil {
						return err
					}
					total += flushed
					if flushed == 0 {
						break
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flushed %d items to %s\n", total, a.sink.Path())
				return nil
			})
		},
	}
}

func newSyncWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the background flusher until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				flusher := outbox.NewFlusher(a.queue, a.sink, logger, cfg.Sync.BatchSize)
				runner := syncer.NewRunner(cfg, flusher, logger)
				if err := runner.Start(cmd.Context()); err != nil {
					return err
				}
				defer runner.Stop()

				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(sigCh)

				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case sig := <-sigCh:
					fmt.Fprintf(cmd.OutOrStdout(), "Received %s, stopping\n", sig)
					return nil
				}
			})
		},
	}
}
