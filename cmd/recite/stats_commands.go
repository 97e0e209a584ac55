package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recite/internal/coordinator"
	"recite/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var admin string
	var global bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats [handle]",
		Short: "Show contributor statistics, or project totals with --global",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if global {
				return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
					totals, err := coord.GlobalStats(cmd.Context(), admin)
					if err != nil {
						return err
					}
					if jsonOutput {
						return writeJSON(cmd.OutOrStdout(), totals)
					}
					printGlobalStats(cmd, totals)
					return nil
				})
			}
			if len(args) == 0 {
				return errors.New("a contributor handle is required unless --global is set")
			}
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				contributor, err := coord.ContributorStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), contributor)
				}
				printContributorStats(cmd, contributor)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Show project-wide totals (administrator only)")
	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle (required with --global)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func printContributorStats(cmd *cobra.Command, s stats.ContributorStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Contributor %s (%s), tier %s\n", s.Handle, s.Gender, s.Tier)
	fmt.Fprintf(out, "  approved: %d  pending: %d  rejected: %d  total: %d\n", s.Approved, s.Pending, s.Rejected, s.Total)
	if !s.LastContribution.IsZero() {
		fmt.Fprintf(out, "  last contribution: %s\n", s.LastContribution.Format("2006-01-02 15:04:05 MST"))
	}
	if len(s.Rerecord) > 0 {
		fmt.Fprintf(out, "  verses awaiting re-recording:\n")
		for _, entry := range s.Rerecord {
			fmt.Fprintf(out, "    %s (book %d, unit %d)\n", entry.VerseID, entry.Book, entry.Unit)
		}
	}
}

func printGlobalStats(cmd *cobra.Command, totals stats.GlobalStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recordings: %d (approved %d, pending %d, rejected %d)\n",
		totals.TotalRecordings, totals.Approved, totals.Pending, totals.Rejected)
	fmt.Fprintf(out, "Contributors: %d\n", totals.TotalContributors)
	for gender, count := range totals.PerGender {
		fmt.Fprintf(out, "  %s: %d\n", gender, count)
	}
}

func newContributorsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "contributors",
		Short: "List contributors ranked by approved recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				board, err := coord.Leaderboard(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), board)
				}
				if len(board) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No contributors registered yet")
					return nil
				}
				rows := make([][]string, 0, len(board))
				for i, s := range board {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						s.Handle,
						string(s.Tier),
						strconv.Itoa(s.Approved),
						strconv.Itoa(s.Pending),
						strconv.Itoa(s.Rejected),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					cmd.OutOrStdout(),
					[]string{"#", "Handle", "Tier", "Approved", "Pending", "Rejected"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
