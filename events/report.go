package events

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/adoreport/adoreport/model"
)

// Playwright JSON reporter output, reduced to what is published.
type reportJSON struct {
	Suites []suiteJSON `json:"suites"`
}

type suiteJSON struct {
	Title  string      `json:"title"`
	File   string      `json:"file"`
	Specs  []specJSON  `json:"specs"`
	Suites []suiteJSON `json:"suites"`
}

type specJSON struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	File  string     `json:"file"`
	Line  int        `json:"line"`
	Tests []testJSON `json:"tests"`
}

type testJSON struct {
	ProjectName string       `json:"projectName"`
	Results     []resultJSON `json:"results"`
}

// ParseReport converts a Playwright JSON report into a begin event, one
// test end per test and an end event. Only the last result of a test (its
// final retry) is kept. Relative attachment paths are resolved against
// baseDir.
func ParseReport(r io.Reader, baseDir string) ([]Event, error) {
	var report reportJSON
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	events := []Event{{Type: TypeBegin}}
	var walk func(suites []suiteJSON)
	walk = func(suites []suiteJSON) {
		for _, s := range suites {
			for _, sp := range s.Specs {
				for _, t := range sp.Tests {
					if len(t.Results) == 0 {
						continue
					}
					test := model.TestCase{
						ID:          sp.ID,
						Title:       sp.Title,
						File:        sp.File,
						Line:        sp.Line,
						ProjectName: t.ProjectName,
					}
					if test.File == "" {
						test.File = s.File
					}
					if t.ProjectName != "" && sp.ID != "" {
						test.ID = sp.ID + "-" + t.ProjectName
					}
					last := t.Results[len(t.Results)-1]
					events = append(events, Event{
						Type:   TypeTestEnd,
						Test:   test,
						Result: last.toModel(baseDir),
					})
				}
			}
			walk(s.Suites)
		}
	}
	walk(report.Suites)

	return append(events, Event{Type: TypeEnd}), nil
}
