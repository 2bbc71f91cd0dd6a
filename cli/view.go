package cli

// This file contains the view command for displaying a single publish
// session from history.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adoreport/adoreport/history"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"
)

// findEntry resolves arg against entries sorted newest first. arg is either
// an index counting back from the newest session (0, -1, -2, ...) or a
// prefix of a session id.
func findEntry(entries []history.Entry, arg string) (*history.Entry, error) {
	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			return nil, fmt.Errorf("invalid index: %s (use 0 for last, -1 for second-to-last, -2 for third-to-last, etc.)", arg)
		}
		index := int(-parsed)
		if index >= len(entries) {
			return nil, fmt.Errorf("index %s out of range (only %d history entries)", arg, len(entries))
		}
		return &entries[index], nil
	}

	prefix := strings.ToLower(arg)
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].History.ID), prefix) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no history entry found matching ID: %s", arg)
}

func (a *App) view(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return fmt.Errorf("expected at most one session id or index")
	}
	arg := "0"
	if ctx.NArg() == 1 {
		arg = ctx.Args().First()
	}

	base, err := historyBase(ctx)
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, history.Root(base))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no history entries found")
	}

	entry, err := findEntry(entries, arg)
	if err != nil {
		return err
	}
	a.displayHistoryEntry(entry)
	return nil
}

func (a *App) displayHistoryEntry(entry *history.Entry) {
	h := entry.History

	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Publish session %s", h.ID)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("FIELD"), text.FgHiCyan.Sprint("VALUE")})

	t.AppendRow(table.Row{"time", h.Timestamp.Format("2006-01-02 15:04:05")})
	t.AppendRow(table.Row{"duration", h.Duration.Round(time.Millisecond)})
	if h.WorkDir != "" {
		t.AppendRow(table.Row{"workdir", h.WorkDir})
	}
	if h.Git != nil && h.Git.Commit != "" {
		commit := h.Git.Commit
		if h.Git.Branch != "" {
			commit += " (" + h.Git.Branch + ")"
		}
		t.AppendRow(table.Row{"commit", commit})
	}

	if tg := h.Target; tg != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"orgUrl", tg.OrgURL})
		t.AppendRow(table.Row{"projectName", tg.ProjectName})
		t.AppendRow(table.Row{"planId", tg.PlanID})
		t.AppendRow(table.Row{"testRunTitle", tg.RunTitle})
	}

	if in := h.Input; in != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"input", in.Path})
		t.AppendRow(table.Row{"format", in.Format})
		t.AppendRow(table.Row{"tests", in.Tests})
		if in.SynthesizedBegin || in.SynthesizedEnd {
			var missing []string
			if in.SynthesizedBegin {
				missing = append(missing, "begin")
			}
			if in.SynthesizedEnd {
				missing = append(missing, "end")
			}
			t.AppendRow(table.Row{"missing events", strings.Join(missing, ", ")})
		}
	}

	if p := h.Publish; p != nil {
		t.AppendSeparator()
		run := "-"
		if p.RunID != 0 {
			run = strconv.Itoa(p.RunID)
		}
		t.AppendRow(table.Row{"run", run})
		t.AppendRow(table.Row{"state", p.State})
		t.AppendRow(table.Row{"published", p.Published})
		t.AppendRow(table.Row{"skipped", p.Skipped})
		t.AppendRow(table.Row{"failed", p.Failed})
		if p.DisabledReason != "" {
			t.AppendRow(table.Row{"disabled", p.DisabledReason})
		}
	}

	t.Render()
	fmt.Fprintf(a.out, "History directory: %s\n", entry.FullPath)
}
