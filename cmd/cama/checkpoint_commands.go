package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cama/internal/registry"
	"cama/internal/survey"
)

func newCheckpointCommand(ctx *commandContext) *cobra.Command {
	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage survey checkpoints",
	}

	checkpointCmd.AddCommand(newCheckpointAddCommand(ctx))
	checkpointCmd.AddCommand(newCheckpointEditCommand(ctx))
	checkpointCmd.AddCommand(newCheckpointDeleteCommand(ctx))
	checkpointCmd.AddCommand(newCheckpointListCommand(ctx))

	return checkpointCmd
}

func newCheckpointAddCommand(ctx *commandContext) *cobra.Command {
	var (
		passageType string
		stationID   string
		depth       float64
		distance    float64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Record a new checkpoint and queue it for sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, ok := survey.ParsePassageType(passageType)
			if !ok {
				return fmt.Errorf("unknown passage type %q (expected one of %s)",
					passageType, strings.Join(passageTypeNames(), ", "))
			}
			return ctx.withApp(func(a *app) error {
				id, err := a.registry.Create(cmd.Context(), args[0], pt, stationID, depth, distance)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint %s created\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&passageType, "type", string(survey.PassageRoom), "Passage type")
	cmd.Flags().StringVar(&stationID, "station", "", "Anchoring survey station id")
	cmd.Flags().Float64Var(&depth, "depth", 0, "Depth from entrance in meters")
	cmd.Flags().Float64Var(&distance, "distance", 0, "Distance from the station in meters")
	return cmd
}

func newCheckpointEditCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id> <field=value> [field=value...]",
		Short: "Update checkpoint fields and queue the new snapshot",
		Long: "Accepted fields: name, passage_type, survey_station_id, " +
			"depth_from_entrance, distance_from_station. Unknown fields are ignored.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse checkpoint id: %w", err)
			}
			patch, err := parsePatch(args[1:])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if err := a.registry.Update(cmd.Context(), id, patch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint %s updated\n", id)
				return nil
			})
		},
	}
	return cmd
}

func newCheckpointDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a checkpoint and queue the removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse checkpoint id: %w", err)
			}
			return ctx.withApp(func(a *app) error {
				if err := a.registry.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint %s deleted\n", id)
				return nil
			})
		},
	}
}

func newCheckpointListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				checkpoints, err := a.registry.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(checkpoints) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints recorded")
					return nil
				}
				rows := make([][]string, 0, len(checkpoints))
				for _, cp := range checkpoints {
					rows = append(rows, []string{
						cp.ID.String(),
						cp.Name,
						string(cp.PassageType),
						cp.SurveyStationID,
						fmt.Sprintf("%.3f", cp.DepthFromEntrance),
						fmt.Sprintf("%.3f", cp.DistanceFromStation),
					})
				}
				out := renderTable(
					[]column{col("ID"), col("Name"), col("Type"), col("Station"), numCol("Depth (m)"), numCol("Distance (m)")},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

var numericCheckpointFields = map[string]bool{
	"depth_from_entrance":   true,
	"distance_from_station": true,
}

func parsePatch(pairs []string) (registry.FieldPatch, error) {
	patch := make(registry.FieldPatch, len(pairs))
	for _, pair := range pairs {
		field, value, found := strings.Cut(pair, "=")
		if !found || field == "" {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}
		if numericCheckpointFields[field] {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", field, err)
			}
			patch[field] = v
		} else {
			patch[field] = value
		}
	}
	return patch, nil
}

func passageTypeNames() []string {
	names := make([]string, 0, len(survey.AllPassageTypes()))
	for _, pt := range survey.AllPassageTypes() {
		names = append(names, string(pt))
	}
	return names
}
