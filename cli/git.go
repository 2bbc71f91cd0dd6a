package cli

// This file contains Git integration utilities for retrieving
// repository information.

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adoreport/adoreport/model"
)

func (a *App) getGitInfo() (*model.Git, error) {
	// Get current commit hash
	cmd := exec.Command("git", "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to get git commit: %w", err)
	}
	commit := strings.TrimSpace(string(output))

	// Get current branch
	cmd = exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	output, err = cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to get git branch: %w", err)
	}
	branch := strings.TrimSpace(string(output))

	git := &model.Git{Commit: commit, Branch: branch}
	cmd = exec.Command("git", "rev-parse", "--show-toplevel")
	if output, err = cmd.Output(); err == nil {
		git.Repo = filepath.Base(strings.TrimSpace(string(output)))
	}
	return git, nil
}
