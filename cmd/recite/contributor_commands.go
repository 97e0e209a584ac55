package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"recite/internal/catalog"
	"recite/internal/coordinator"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var gender string
	var displayName string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "register <handle>",
		Short: "Register a contributor and receive the first verse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				result, err := coord.Register(cmd.Context(), args[0], displayName, gender)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"contributor":        result.Contributor,
						"already_registered": result.AlreadyRegistered,
						"next_verse":         result.NextVerse,
					})
				}
				out := cmd.OutOrStdout()
				if result.AlreadyRegistered {
					fmt.Fprintf(out, "Welcome back, %s\n", result.Contributor.DisplayName)
				} else {
					fmt.Fprintf(out, "Registered %s (%s)\n", result.Contributor.Handle, result.Contributor.Gender)
				}
				printAssignment(out, result.NextVerse)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&gender, "gender", "g", "", "Contributor gender (male or female)")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the handle)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newNextCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "next <handle>",
		Short: "Show the verse assigned to a contributor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				verse, err := coord.NextVerse(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), verse)
				}
				printAssignment(cmd.OutOrStdout(), &verse)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "submit <handle> <verse-id> <audio-file>",
		Short: "Submit a WAV recording for a verse",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				result, err := coord.Submit(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"recording":   result.Recording,
						"rerecording": result.Rerecording,
						"next_verse":  result.NextVerse,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Stored recording %s (%s)\n", result.Recording.ID, result.Recording.Status)
				if result.Rerecording {
					fmt.Fprintln(out, "Re-recording accepted; the verse leaves your redo list")
				}
				printAssignment(out, result.NextVerse)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func printAssignment(out io.Writer, verse *catalog.Verse) {
	if verse == nil {
		fmt.Fprintln(out, "No verse is currently available; all verses are recorded or capped")
		return
	}
	fmt.Fprintf(out, "Next verse: %s (book %d, unit %d)\n", verse.ID, verse.Book, verse.Unit)
	fmt.Fprintf(out, "  %s\n", verse.Text)
}
