// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotandev/hbclabel/internal/config"
	"github.com/dotandev/hbclabel/internal/errors"
	"github.com/dotandev/hbclabel/internal/journal"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "List recorded annotation runs",
		Long: `List runs recorded in the run journal, newest first.

The journal is only written when journal_path is set in .hbclabel.toml or
HBCLABEL_JOURNAL_PATH. Without a file argument every recorded run is shown.`,
		Example: `  # Runs for one listing
  hbclabel history out/instruction.hasm

  # The last five runs of any listing
  hbclabel history --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JournalPath == "" {
				return errors.WrapValidationError("journal_path is not set, no runs are recorded")
			}

			store, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return errors.WrapValidationError(fmt.Sprintf("failed to open run journal: %v", err))
			}
			defer store.Close()

			path := ""
			if len(args) == 1 {
				if path, err = filepath.Abs(args[0]); err != nil {
					return errors.WrapIO("resolve", args[0], err)
				}
			}

			entries, err := store.List(cmd.Context(), path, limit)
			if err != nil {
				return errors.WrapValidationError(fmt.Sprintf("failed to list runs: %v", err))
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No recorded runs found.")
				return nil
			}

			fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(entries))
			fmt.Fprintf(out, "%-6s %-17s %-18s %-7s %-12s %s\n", "ID", "When", "Outcome", "Labels", "Output", "Path")
			fmt.Fprintln(out, "--------------------------------------------------------------------------------")
			for _, e := range entries {
				fmt.Fprintf(out, "%-6d %-17s %-18s %-7d %-12s %s\n",
					e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Outcome, e.Labels, short(e.OutputSHA), e.Path)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func short(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	if sha == "" {
		return "-"
	}
	return sha
}
