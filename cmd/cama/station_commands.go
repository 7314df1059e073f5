package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cama/internal/mapview"
	"cama/internal/survey"
)

func newStationCommand(ctx *commandContext) *cobra.Command {
	stationCmd := &cobra.Command{
		Use:   "station",
		Short: "Manage survey stations",
	}

	stationCmd.AddCommand(newStationAddCommand(ctx))
	stationCmd.AddCommand(newStationListCommand(ctx))
	stationCmd.AddCommand(newStationNearestCommand(ctx))

	return stationCmd
}

func newStationAddCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <station-id> <x> <y> <z>",
		Short: "Add or replace a survey station",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			st := survey.SurveyStation{
				StationID: args[0],
				Name:      name,
				X:         coords[0],
				Y:         coords[1],
				Z:         coords[2],
			}
			if st.Name == "" {
				st.Name = st.StationID
			}
			return ctx.withApp(func(a *app) error {
				if err := a.store.UpsertStation(cmd.Context(), st); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Station %s saved at (%g, %g, %g)\n", st.StationID, st.X, st.Y, st.Z)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Human-readable station name")
	return cmd
}

func newStationListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known survey stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				stations, err := a.store.ListStations(cmd.Context())
				if err != nil {
					return err
				}
				if len(stations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stations recorded")
					return nil
				}
				rows := make([][]string, 0, len(stations))
				for _, st := range stations {
					rows = append(rows, []string{
						st.StationID,
						st.Name,
						formatFloat(st.X),
						formatFloat(st.Y),
						formatFloat(st.Z),
					})
				}
				out := renderTable(
					[]column{col("Station"), col("Name"), numCol("X"), numCol("Y"), numCol("Z")},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newStationNearestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "nearest <x> <y> [z]",
		Short: "Resolve a map position to the closest station",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseFloats(args)
			if err != nil {
				return err
			}
			point := mapview.Point{X: coords[0], Y: coords[1]}
			if len(coords) == 3 {
				point.Z = coords[2]
			}
			return ctx.withApp(func(a *app) error {
				result, err := a.resolver.NearestStation(cmd.Context(), point)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Nearest station: %s (%s) at %.3f m\n",
					result.Station.StationID, result.Station.Name, result.Distance)
				return nil
			})
		},
	}
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("parse coordinate %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
