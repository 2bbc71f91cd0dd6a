// Package config resolves reporter options from files, environment and
// flags into an immutable Configuration.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DefaultRunTitle     = "Playwright Test Run"
	DefaultRunIDTimeout = 10 * time.Second
)

// AttachmentType is the kind of artifact a test result can carry.
type AttachmentType string

const (
	AttachmentScreenshot AttachmentType = "screenshot"
	AttachmentVideo      AttachmentType = "video"
	AttachmentTrace      AttachmentType = "trace"
)

func knownAttachmentType(name string) bool {
	switch AttachmentType(name) {
	case AttachmentScreenshot, AttachmentVideo, AttachmentTrace:
		return true
	}
	return false
}

// AttachmentTypes is the set of artifact kinds selected for upload.
type AttachmentTypes map[AttachmentType]struct{}

func NewAttachmentTypes(types ...AttachmentType) AttachmentTypes {
	s := make(AttachmentTypes, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether the artifact kind name is selected.
func (s AttachmentTypes) Has(name string) bool {
	_, ok := s[AttachmentType(name)]
	return ok
}

// List returns the selected kinds in sorted order.
func (s AttachmentTypes) List() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// Options are the raw, user supplied reporter options. Zero values mean unset.
type Options struct {
	Token             string   `yaml:"token" toml:"token"`
	PlanID            int      `yaml:"planId" toml:"planId"`
	OrgURL            string   `yaml:"orgUrl" toml:"orgUrl"`
	ProjectName       string   `yaml:"projectName" toml:"projectName"`
	Logging           bool     `yaml:"logging" toml:"logging"`
	IsDisabled        bool     `yaml:"isDisabled" toml:"isDisabled"`
	Environment       string   `yaml:"environment" toml:"environment"`
	TestRunTitle      string   `yaml:"testRunTitle" toml:"testRunTitle"`
	UploadAttachments bool     `yaml:"uploadAttachments" toml:"uploadAttachments"`
	AttachmentsType   []string `yaml:"attachmentsType" toml:"attachmentsType"`

	// Durations in time.ParseDuration syntax
	RunIDTimeout   string `yaml:"runIdTimeout" toml:"runIdTimeout"`
	DrainTimeout   string `yaml:"drainTimeout" toml:"drainTimeout"`
	RequestTimeout string `yaml:"requestTimeout" toml:"requestTimeout"`
}

// Configuration is the validated form of Options. It is never modified after Resolve.
type Configuration struct {
	Token       string
	PlanID      int
	OrgURL      string
	ProjectName string
	Logging     bool

	// Disabled is set when reporting was opted out of or the options are incomplete
	Disabled       bool
	DisabledReason string

	Environment       string
	RunTitle          string
	UploadAttachments bool
	AttachmentTypes   AttachmentTypes

	// RunIDTimeout bounds how long a test-end event waits for the remote run
	RunIDTimeout time.Duration
	// DrainTimeout bounds the end-of-run drain; zero waits indefinitely
	DrainTimeout time.Duration
	// RequestTimeout bounds each remote call; zero means no deadline
	RequestTimeout time.Duration
}

// Resolve validates o and returns the resulting Configuration together with
// warnings that should be shown to the user. Missing required options do not
// produce an error: the configuration comes back disabled instead.
func (o Options) Resolve() (Configuration, []string) {
	var warnings []string

	c := Configuration{
		Token:        strings.TrimSpace(o.Token),
		PlanID:       o.PlanID,
		OrgURL:       strings.TrimRight(strings.TrimSpace(o.OrgURL), "/"),
		ProjectName:  strings.TrimSpace(o.ProjectName),
		Logging:      o.Logging,
		Environment:  strings.TrimSpace(o.Environment),
		RunIDTimeout: DefaultRunIDTimeout,
	}

	title := strings.TrimSpace(o.TestRunTitle)
	if title == "" {
		title = DefaultRunTitle
	}
	if c.Environment != "" {
		title = fmt.Sprintf("[%s]: %s", c.Environment, title)
	}
	c.RunTitle = title

	var ok bool
	if c.RunIDTimeout, ok = parseDuration("runIdTimeout", o.RunIDTimeout, DefaultRunIDTimeout, &warnings); ok && c.RunIDTimeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("'runIdTimeout' must be positive. Using %s.", DefaultRunIDTimeout))
		c.RunIDTimeout = DefaultRunIDTimeout
	}
	c.DrainTimeout, _ = parseDuration("drainTimeout", o.DrainTimeout, 0, &warnings)
	c.RequestTimeout, _ = parseDuration("requestTimeout", o.RequestTimeout, 0, &warnings)

	if o.IsDisabled {
		c.Disabled = true
		c.DisabledReason = "disabled by configuration"
		return c, warnings
	}

	required := []struct {
		name  string
		unset bool
	}{
		{"orgUrl", c.OrgURL == ""},
		{"projectName", c.ProjectName == ""},
		{"planId", c.PlanID <= 0},
		{"token", c.Token == ""},
	}
	for _, r := range required {
		if r.unset {
			c.Disabled = true
			c.DisabledReason = fmt.Sprintf("'%s' is not set", r.name)
			warnings = append(warnings, fmt.Sprintf("'%s' is not set. Reporting is disabled.", r.name))
			return c, warnings
		}
	}

	if o.UploadAttachments {
		c.UploadAttachments = true
		c.AttachmentTypes = NewAttachmentTypes()
		for _, name := range o.AttachmentsType {
			name = strings.TrimSpace(name)
			if !knownAttachmentType(name) {
				warnings = append(warnings, fmt.Sprintf("Unknown attachment type '%s' is ignored.", name))
				continue
			}
			c.AttachmentTypes[AttachmentType(name)] = struct{}{}
		}
		if len(c.AttachmentTypes) == 0 {
			warnings = append(warnings, "'attachmentsType' is not set. Attachments Type will be set to 'screenshot' by default.")
			c.AttachmentTypes = NewAttachmentTypes(AttachmentScreenshot)
		}
	}

	return c, warnings
}

func parseDuration(name, raw string, def time.Duration, warnings *[]string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		*warnings = append(*warnings, fmt.Sprintf("'%s' value %q is invalid. Using %s.", name, raw, def))
		return def, false
	}
	return d, true
}

// Redacted returns a copy safe for printing.
func (c Configuration) Redacted() Configuration {
	switch {
	case c.Token == "":
	case len(c.Token) <= 4:
		c.Token = "****"
	default:
		c.Token = "****" + c.Token[len(c.Token)-4:]
	}
	return c
}
