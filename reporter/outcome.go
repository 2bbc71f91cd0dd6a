package reporter

import (
	"regexp"
	"strconv"

	"github.com/adoreport/adoreport/azure"
	"github.com/adoreport/adoreport/model"
)

var ansiPattern = regexp.MustCompile("\x1b\\[.*?m")

// remoteOutcome maps a local status to the outcome recorded remotely.
// Statuses without a mapping are not published.
func remoteOutcome(status model.TestStatus) (string, bool) {
	switch status {
	case model.TestStatusPassed:
		return azure.OutcomePassed, true
	case model.TestStatusFailed, model.TestStatusTimedOut:
		return azure.OutcomeFailed, true
	case model.TestStatusSkipped:
		return azure.OutcomePaused, true
	default:
		return "", false
	}
}

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// newCaseResult builds the remote result record for one test attempt.
func newCaseResult(test model.TestCase, result model.TestResult, caseID, pointID int, outcome string) azure.TestCaseResult {
	r := azure.TestCaseResult{
		TestCase:      &azure.ShallowReference{ID: strconv.Itoa(caseID)},
		TestPoint:     &azure.ShallowReference{ID: strconv.Itoa(pointID)},
		TestCaseTitle: test.Title,
		Outcome:       outcome,
		State:         azure.ResultStateCompleted,
		DurationInMs:  float64(result.Duration.Milliseconds()),
	}
	if result.Error != nil {
		r.ErrorMessage = test.Title + ": " + stripANSI(result.Error.Message)
		r.StackTrace = stripANSI(result.Error.Stack)
	}
	return r
}
