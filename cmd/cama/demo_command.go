package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cama/internal/survey"
)

// defaultStations mirrors the seed set a fresh field tablet ships with.
var defaultStations = []survey.SurveyStation{
	{StationID: "A1", Name: "A1", X: 0, Y: 0, Z: 0},
	{StationID: "B5", Name: "B5", X: 10, Y: 2, Z: 0},
	{StationID: "C12", Name: "C12", X: 25, Y: -3, Z: -1},
	{StationID: "Z78", Name: "Z78", X: 100, Y: 0, Z: -5},
}

func newDemoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run an end-to-end capture and sync walkthrough",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				out := cmd.OutOrStdout()
				reqCtx := cmd.Context()

				stations, err := a.store.ListStations(reqCtx)
				if err != nil {
					return err
				}
				if len(stations) == 0 {
					for _, st := range defaultStations {
						if err := a.store.UpsertStation(reqCtx, st); err != nil {
							return err
						}
					}
					fmt.Fprintf(out, "Seeded %d default stations\n", len(defaultStations))
				}

				cpID, err := a.registry.Create(reqCtx, "Sump entrance", survey.PassageCanyon, "B5", 12.5, 3.2)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created checkpoint %s\n", cpID)

				if err := a.registry.Update(reqCtx, cpID, map[string]any{"depth_from_entrance": 13.0}); err != nil {
					return err
				}
				fmt.Fprintf(out, "Updated checkpoint %s depth\n", cpID)

				scratchID, err := a.registry.Create(reqCtx, "Scratch mark", survey.PassageCrawl, "C12", 2.0, 0.4)
				if err != nil {
					return err
				}
				if err := a.registry.Delete(reqCtx, scratchID); err != nil {
					return err
				}
				fmt.Fprintf(out, "Created and deleted checkpoint %s\n", scratchID)

				sess := survey.NewSession("B5")
				for i := 0; i < 3; i++ {
					reading := a.meter.Read()
					reading.CheckpointID = cpID.String()
					sess.AddReading(reading)
				}
				sess.End()
				if err := a.recorder.Save(reqCtx, sess); err != nil {
					return err
				}
				if err := a.recorder.EnqueueUpload(reqCtx, sess); err != nil {
					return err
				}
				fmt.Fprintf(out, "Recorded session %s with %d readings\n", sess.ID, len(sess.Readings))

				depth, err := a.queue.Depth(reqCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Queue holds %d items; flushing\n", depth)

				total := 0
				for {
					flushed, err := a.flusher.Flush(reqCtx)
					if err != nil {
						return err
					}
					total += flushed
					if flushed == 0 {
						break
					}
				}
				fmt.Fprintf(out, "Flushed %d items to %s\n", total, a.sink.Path())

				printSinkSummary(out, a, cmd)
				return nil
			})
		},
	}
}

func printSinkSummary(out io.Writer, a *app, cmd *cobra.Command) {
	entries, err := a.sink.Load(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "sink unreadable: %v\n", err)
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Kind, fmt.Sprintf("%d", len(e.Payload))})
	}
	fmt.Fprintln(out, renderTable(
		[]column{col("ID"), col("Kind"), numCol("Bytes")},
		rows,
	))
}
