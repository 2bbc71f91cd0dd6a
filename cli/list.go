package cli

// This file contains the list command for displaying previous publish
// sessions.

import (
	"fmt"
	"strings"
	"time"

	"github.com/adoreport/adoreport/history"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	filterPath := ctx.String("path")
	limit := ctx.Int("limit")

	base, err := historyBase(ctx)
	if err != nil {
		return err
	}

	// Entries come back newest first
	historyEntries, err := history.LoadEntries(a.logger, history.Root(base))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	// Apply path filter if specified
	var filteredEntries []history.Entry
	for _, entry := range historyEntries {
		input := ""
		if entry.History.Input != nil {
			input = entry.History.Input.Path
		}
		if filterPath == "" || strings.Contains(input, filterPath) {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	if len(filteredEntries) == 0 {
		if filterPath != "" {
			fmt.Fprintf(a.out, "No history entries found matching path: %s\n", filterPath)
		} else {
			fmt.Fprintln(a.out, "No history entries found")
		}
		return nil
	}

	// Apply limit
	displayRuns := filteredEntries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("History (%d total)", len(filteredEntries))
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ID"),
		text.FgHiCyan.Sprint("TIME"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("RUN"),
		text.FgHiCyan.Sprint("STATE"),
		text.FgHiCyan.Sprint("PUBLISHED"),
		text.FgHiCyan.Sprint("SKIPPED"),
		text.FgHiCyan.Sprint("FAILED"),
		text.FgHiCyan.Sprint("INPUT"),
		text.FgHiCyan.Sprint("COMMIT"),
	})

	for _, entry := range displayRuns {
		h := entry.History

		// Show short ID (first 8 chars)
		shortID := h.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		run, state := "-", "-"
		var published, skipped, failed int64
		if p := h.Publish; p != nil {
			if p.RunID != 0 {
				run = fmt.Sprint(p.RunID)
			}
			state = p.State
			published, skipped, failed = p.Published, p.Skipped, p.Failed
		}

		input := ""
		if h.Input != nil {
			input = fmt.Sprintf("%s (%s)", h.Input.Path, h.Input.Format)
		}

		commit := ""
		if h.Git != nil && h.Git.Commit != "" {
			commit = h.Git.Commit
			if len(commit) > 8 {
				commit = commit[:8]
			}
			if h.Git.Branch != "" {
				commit += " (" + h.Git.Branch + ")"
			}
		}

		t.AppendRow(table.Row{
			shortID,
			h.Timestamp.Format("2006-01-02 15:04:05"),
			h.Duration.Round(time.Millisecond),
			run,
			state,
			published,
			skipped,
			failed,
			input,
			commit,
		})
	}

	t.Render()
	return nil
}
