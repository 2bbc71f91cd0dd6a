package history

// This file contains shared history utilities for recording and loading
// publish sessions.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adoreport/adoreport/model"
	"github.com/rs/zerolog"
)

const (
	dirName  = ".adoreport"
	fileName = "history.json"
)

type Entry struct {
	History  model.History
	FullPath string
}

// BaseDir returns the directory history is kept under: the git repository
// root when inside one, the current directory otherwise.
func BaseDir() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	if output, err := cmd.Output(); err == nil {
		return strings.TrimSpace(string(output)), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	return cwd, nil
}

// Root returns the .adoreport directory below base.
func Root(base string) string {
	return filepath.Join(base, dirName)
}

// Record writes h into its own directory below root and returns that directory.
func Record(root string, h *model.History) (string, error) {
	shortID := h.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	run := "norun"
	if h.Publish != nil && h.Publish.RunID != 0 {
		run = fmt.Sprintf("run%d", h.Publish.RunID)
	}

	name := fmt.Sprintf("%s-%s-%s", h.Timestamp.Format("20060102-150405"), run, shortID)
	dir := filepath.Join(root, "history", name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write history: %w", err)
	}
	return dir, nil
}

// LoadEntries loads all history entries below root, newest first.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			historyPath := filepath.Join(path, fileName)
			if _, err := os.Stat(historyPath); err == nil {
				history, err := parseHistoryJSON(historyPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", historyPath).Msg("Failed to parse history.json")
					return nil
				}

				entries = append(entries, Entry{
					History:  history,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk %s directory: %w", dirName, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].History.Timestamp.After(entries[j].History.Timestamp)
	})

	return entries, nil
}

// parseHistoryJSON parses a history.json file.
func parseHistoryJSON(historyPath string) (model.History, error) {
	data, err := os.ReadFile(historyPath)
	if err != nil {
		return model.History{}, err
	}

	var history model.History
	if err := json.Unmarshal(data, &history); err != nil {
		return model.History{}, err
	}

	return history, nil
}
