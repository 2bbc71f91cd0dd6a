package model

import "time"

// History represents a single adoreport publish session.
type History struct {
	// Unique ID for this session (uuid)
	ID string `json:"id"`
	// Timestamp when the session started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where command was run (relative to repo root)
	WorkDir string `json:"workdir"`
	// Duration of the session
	Duration time.Duration `json:"duration"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Remote service the results were published to
	Target *Target `json:"target,omitempty"`
	// Source of the replayed events
	Input *Input `json:"input,omitempty"`
	// Outcome of the publish session
	Publish *Publish `json:"publish,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
	// Repository name
	Repo string `json:"repo,omitempty"`
}

// Target contains information about the test-management service
type Target struct {
	OrgURL      string `json:"org_url,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	PlanID      int    `json:"plan_id,omitempty"`
	RunTitle    string `json:"run_title,omitempty"`
}

// Input describes where the events came from
type Input struct {
	// Path of the events file, "-" for stdin
	Path string `json:"path"`
	// Format of the input (events or report)
	Format string `json:"format"`
	// Number of test-end events replayed
	Tests int `json:"tests"`
	// Set when the stream had no begin or no end event
	SynthesizedBegin bool `json:"synthesized_begin,omitempty"`
	SynthesizedEnd   bool `json:"synthesized_end,omitempty"`
}

// Publish contains the outcome of the publishing pipeline
type Publish struct {
	// Remote run id, zero if no run was created
	RunID int `json:"run_id,omitempty"`
	// Final state of the pipeline (completed, disabled, ...)
	State string `json:"state"`
	// Results submitted successfully
	Published int64 `json:"published"`
	// Tests without a case id tag
	Skipped int64 `json:"skipped"`
	// Publications that failed
	Failed int64 `json:"failed"`
	// Why publishing was switched off, if it was
	DisabledReason string `json:"disabled_reason,omitempty"`
}
