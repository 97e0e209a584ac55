package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recite/internal/coordinator"
	"recite/internal/metastore"
)

func newApproveCommand(ctx *commandContext) *cobra.Command {
	return newModerationCommand(ctx, "approve", "Approve a recording",
		func(coord *coordinator.Coordinator, cmd *cobra.Command, recordingID, admin string) (metastore.Recording, error) {
			return coord.Approve(cmd.Context(), recordingID, admin)
		})
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	return newModerationCommand(ctx, "reject", "Reject a recording and queue the verse for re-recording",
		func(coord *coordinator.Coordinator, cmd *cobra.Command, recordingID, admin string) (metastore.Recording, error) {
			return coord.Reject(cmd.Context(), recordingID, admin)
		})
}

func newModerationCommand(ctx *commandContext, verb, short string, apply func(*coordinator.Coordinator, *cobra.Command, string, string) (metastore.Recording, error)) *cobra.Command {
	var admin string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   verb + " <recording-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				rec, err := apply(coord, cmd, args[0], admin)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recording %s is now %s (by %s)\n", rec.ID, rec.Status, rec.ModeratedBy)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle performing the action")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.MarkFlagRequired("admin")
	return cmd
}
