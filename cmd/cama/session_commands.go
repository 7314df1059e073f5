package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cama/internal/survey"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Record gas sampling sessions",
	}

	sessionCmd.AddCommand(newSessionRecordCommand(ctx))
	sessionCmd.AddCommand(newSessionShowCommand(ctx))

	return sessionCmd
}

func newSessionRecordCommand(ctx *commandContext) *cobra.Command {
	var (
		stationID    string
		checkpointID string
		count        int
		interval     time.Duration
		enqueue      bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture meter readings into a new sampling session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}
			return ctx.withApp(func(a *app) error {
				sess := survey.NewSession(stationID)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s started\n", sess.ID)

				for i := 0; i < count; i++ {
					if i > 0 && interval > 0 {
						select {
						case <-cmd.Context().Done():
							return cmd.Context().Err()
						case <-time.After(interval):
						}
					}
					reading := a.meter.Read()
					reading.CheckpointID = checkpointID
					sess.AddReading(reading)
					fmt.Fprintf(out, "  O2 %.2f%%  CO %.1f ppm  H2S %.1f ppm  LEL %.1f%%\n",
						reading.O2Pct, reading.COPpm, reading.H2SPpm, reading.LELPct)
				}
				sess.End()

				if err := a.recorder.Save(cmd.Context(), sess); err != nil {
					return err
				}
				fmt.Fprintf(out, "Session %s saved with %d readings\n", sess.ID, len(sess.Readings))

				if enqueue {
					if err := a.recorder.EnqueueUpload(cmd.Context(), sess); err != nil {
						return err
					}
					fmt.Fprintln(out, "Session queued for upload")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stationID, "station", "", "Anchoring survey station id")
	cmd.Flags().StringVar(&checkpointID, "checkpoint", "", "Checkpoint id to tag readings with")
	cmd.Flags().IntVar(&count, "count", 3, "Number of readings to capture")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Pause between readings")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Queue the finished session for sync")
	return cmd
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved sampling session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				sess, err := a.recorder.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if sess == nil {
					fmt.Fprintf(out, "No session with id %s\n", id)
					return nil
				}

				status := "open"
				if sess.Ended() {
					status = "ended " + sess.EndedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "Session %s (station %s, started %s, %s)\n",
					sess.ID, orDash(sess.AnchorStationID), sess.StartedAt.Format(time.RFC3339), status)

				rows := make([][]string, 0, len(sess.Readings))
				for _, r := range sess.Readings {
					rows = append(rows, []string{
						r.CapturedAt.Format(time.RFC3339),
						fmt.Sprintf("%.2f", r.O2Pct),
						fmt.Sprintf("%.1f", r.COPpm),
						fmt.Sprintf("%.1f", r.H2SPpm),
						fmt.Sprintf("%.1f", r.LELPct),
						orDash(r.CheckpointID),
					})
				}
				table := renderTable(
					[]column{col("Captured"), numCol("O2 %"), numCol("CO ppm"), numCol("H2S ppm"), numCol("LEL %"), col("Checkpoint")},
					rows,
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func parseUUID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse session id: %w", err)
	}
	return id, nil
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
