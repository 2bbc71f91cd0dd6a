package cli

// This file contains publish session recording for saving session
// metadata to the history directory.

import (
	"os"
	"path/filepath"

	"github.com/adoreport/adoreport/history"
	"github.com/adoreport/adoreport/model"
	"github.com/urfave/cli/v2"
)

func historyDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "history-dir",
		Usage:   "Directory the .adoreport history lives in (default: git root or current directory)",
		EnvVars: []string{"ADOREPORT_HISTORY_DIR"},
	}
}

// historyBase returns the directory holding .adoreport.
func historyBase(ctx *cli.Context) (string, error) {
	if dir := ctx.String("history-dir"); dir != "" {
		return dir, nil
	}
	return history.BaseDir()
}

func (a *App) recordHistory(ctx *cli.Context, h *model.History) error {
	base, err := historyBase(ctx)
	if err != nil {
		return err
	}

	// Store the working directory relative to the base
	if cwd, err := os.Getwd(); err == nil {
		h.WorkDir = cwd
		if rel, err := filepath.Rel(base, cwd); err == nil {
			h.WorkDir = rel
		}
	}

	dir, err := history.Record(history.Root(base), h)
	if err != nil {
		return err
	}

	a.logger.Debug().Str("dir", dir).Str("id", h.ID).Msg("Recorded publish session")
	return nil
}
