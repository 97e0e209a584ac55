package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"recite/internal/coordinator"
)

func newCorpusCommand(ctx *commandContext) *cobra.Command {
	var admin string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "List the publishable corpus rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				rows, err := coord.Corpus(cmd.Context(), admin)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Corpus is empty")
					return nil
				}
				tableRows := make([][]string, 0, len(rows))
				for _, row := range rows {
					tableRows = append(tableRows, []string{
						row.VerseID,
						strconv.Itoa(row.Book),
						strconv.Itoa(row.Unit),
						row.Contributor,
						string(row.Status),
						filepath.Base(row.AudioRef),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					cmd.OutOrStdout(),
					[]string{"Verse", "Book", "Unit", "Contributor", "Status", "Audio"},
					tableRows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.MarkFlagRequired("admin")
	return cmd
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var admin string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the corpus to the publication endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				result, err := coord.SyncPublication(cmd.Context(), admin)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %d corpus rows\n", result.Rows)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.MarkFlagRequired("admin")

	cmd.AddCommand(newSyncHistoryCommand(ctx))
	return cmd
}

func newSyncHistoryCommand(ctx *commandContext) *cobra.Command {
	var admin string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent publication attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				records, err := coord.SyncHistory(cmd.Context(), admin, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No publication attempts recorded")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.StartedAt.Format("2006-01-02 15:04:05"),
						rec.Cause,
						strconv.Itoa(rec.Rows),
						yesNo(rec.Success),
						rec.Message,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					cmd.OutOrStdout(),
					[]string{"Started", "Cause", "Rows", "Success", "Message"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of attempts to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.MarkFlagRequired("admin")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var admin string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Cross-check metadata against stored audio files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				issues, err := coord.VerifyIntegrity(cmd.Context(), admin)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), issues)
				}
				out := cmd.OutOrStdout()
				if len(issues) == 0 {
					fmt.Fprintln(out, "No integrity issues found")
					return nil
				}
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: %s\n", issue.RecordingID, issue.Problem)
				}
				return fmt.Errorf("%d integrity issue(s) found", len(issues))
			})
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.MarkFlagRequired("admin")
	return cmd
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var admin string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full snapshot of metadata, config, and audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCoordinator(func(coord *coordinator.Coordinator) error {
				dir, err := coord.Backup(admin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", dir)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Administrator handle")
	cmd.MarkFlagRequired("admin")
	return cmd
}
