// Package events reads test-runner lifecycle events and replays them
// against a reporter.
package events

import (
	"io"
	"path/filepath"
	"time"

	"github.com/adoreport/adoreport/model"
)

// Type is the kind of a lifecycle event.
type Type string

const (
	TypeBegin   Type = "begin"
	TypeTestEnd Type = "testEnd"
	TypeEnd     Type = "end"
)

// Event is one lifecycle event. Test and Result are only set for TypeTestEnd.
type Event struct {
	Type   Type
	Test   model.TestCase
	Result model.TestResult
}

// Source yields events in order. Next returns io.EOF once exhausted.
type Source interface {
	Next() (Event, error)
}

// SliceSource is a Source over an in-memory list of events.
type SliceSource struct {
	events []Event
	pos    int
}

func NewSliceSource(events []Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	e := s.events[s.pos]
	s.pos++
	return e, nil
}

// resultJSON is the wire form of a result shared by the event stream and
// the JSON report. Durations are milliseconds.
type resultJSON struct {
	Status      model.TestStatus   `json:"status"`
	Duration    float64            `json:"duration"`
	Retry       int                `json:"retry"`
	Error       *model.TestError   `json:"error"`
	Attachments []model.Attachment `json:"attachments"`
}

func (r resultJSON) toModel(baseDir string) model.TestResult {
	res := model.TestResult{
		Status:   r.Status,
		Duration: time.Duration(r.Duration * float64(time.Millisecond)),
		Retry:    r.Retry,
		Error:    r.Error,
	}
	for _, a := range r.Attachments {
		if a.Path != "" && baseDir != "" && !filepath.IsAbs(a.Path) {
			a.Path = filepath.Join(baseDir, a.Path)
		}
		res.Attachments = append(res.Attachments, a)
	}
	return res
}
