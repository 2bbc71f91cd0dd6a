package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"
)

// validate prints the resolved configuration. It fails when reporting
// would be disabled.
func (a *App) validate(ctx *cli.Context) error {
	cfg, err := a.resolveConfig(ctx)
	if err != nil {
		return err
	}
	c := cfg.Redacted()

	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("OPTION"), text.FgHiCyan.Sprint("VALUE")})
	t.AppendRows([]table.Row{
		{"orgUrl", c.OrgURL},
		{"projectName", c.ProjectName},
		{"planId", c.PlanID},
		{"token", c.Token},
		{"testRunTitle", c.RunTitle},
		{"uploadAttachments", c.UploadAttachments},
		{"attachmentsType", strings.Join(c.AttachmentTypes.List(), ", ")},
		{"logging", c.Logging},
		{"runIdTimeout", c.RunIDTimeout},
		{"drainTimeout", c.DrainTimeout},
		{"requestTimeout", c.RequestTimeout},
	})
	t.Render()

	if cfg.Disabled {
		return fmt.Errorf("reporting is disabled: %s", cfg.DisabledReason)
	}
	fmt.Fprintln(a.out, "Reporting is enabled")
	return nil
}
