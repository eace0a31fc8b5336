package ui_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/replay"
	"github.com/temirov/noteport/internal/ui"
)

const testSubtestNameTemplateConstant = "%d_%s"

func TestColorsEnabled(testInstance *testing.T) {
	testCases := []struct {
		name        string
		environment map[string]string
		expected    bool
	}{
		{name: "default", environment: map[string]string{}, expected: true},
		{name: "no_color", environment: map[string]string{"NO_COLOR": ""}, expected: false},
		{name: "dumb_terminal", environment: map[string]string{"TERM": "dumb"}, expected: false},
		{name: "regular_terminal", environment: map[string]string{"TERM": "xterm-256color"}, expected: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			lookup := func(name string) (string, bool) {
				value, exists := testCase.environment[name]
				return value, exists
			}
			require.Equal(subtest, testCase.expected, ui.ColorsEnabled(lookup))
		})
	}
}

func TestRenderProgressBar(testInstance *testing.T) {
	testCases := []struct {
		name      string
		processed int
		total     int
		expected  string
	}{
		{name: "start", processed: 0, total: 4, expected: "Progress: [----------] 0% (0/4)"},
		{name: "half", processed: 2, total: 4, expected: "Progress: [#####-----] 50% (2/4)"},
		{name: "partial", processed: 21, total: 50, expected: "Progress: [####------] 42% (21/50)"},
		{name: "done", processed: 4, total: 4, expected: "Progress: [##########] 100% (4/4)"},
		{name: "empty_run", processed: 0, total: 0, expected: "Progress: [##########] 100% (0/0)"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			require.Equal(subtest, testCase.expected, ui.RenderProgressBar(testCase.processed, testCase.total, 10))
		})
	}
}

func TestConsoleReporterWritesBannerAndSummary(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := ui.NewConsoleReporter(outputBuffer, false)

	reporter.Observe(replay.Event{Kind: replay.EventRunPlanned, Plan: &replay.RunPlan{
		ToolName:        "noteport",
		ToolVersion:     "1.2.0",
		RunIdentifier:   "run-1",
		Mode:            "staging",
		StartedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		TicketCount:     1200,
		NoteCount:       5400,
		EstimatedLength: 5400 * time.Second,
		DryRun:          true,
	}})
	reporter.Observe(replay.Event{Kind: replay.EventProgress, Processed: 1, Total: 2})
	reporter.Observe(replay.Event{Kind: replay.EventTicketSkipped, ExternalID: "9", DestinationID: 90, Outcome: replay.OutcomeSkippedTooManyComments})
	reporter.Observe(replay.Event{Kind: replay.EventProgress, Processed: 2, Total: 2})
	reporter.Observe(replay.Event{Kind: replay.EventRunSummarized, Summary: &replay.RunSummary{TicketsProcessed: 2, SuccessCount: 1, SkipCount: 1}})

	output := outputBuffer.String()
	require.Contains(testInstance, output, "noteport 1.2.0\n")
	require.Contains(testInstance, output, "Mode: staging\n")
	require.Contains(testInstance, output, "Tickets to Process: 1,200\n")
	require.Contains(testInstance, output, "Notes to Replay: 5,400\n")
	require.Contains(testInstance, output, "Estimated Running Time: 1h 30m 0s\n")
	require.Contains(testInstance, output, "Dry run")
	require.Contains(testInstance, output, "\rProgress: [###############---------------] 50% (1/2)\nFDID 9 (FSID 90) skipped: 50 or more notes")
	require.Contains(testInstance, output, "\rProgress: [##############################] 100% (2/2)\nRun Completed\n")
	require.Contains(testInstance, output, "Total Successful Tickets: 1\n")
}

func TestConsoleReporterPrintsRemediationOnHalt(testInstance *testing.T) {
	testCases := []struct {
		name             string
		haltError        error
		expectedFragment string
	}{
		{
			name:             "authentication",
			haltError:        freshservice.FatalAuthError{Method: "GET", URL: "https://example.test"},
			expectedFragment: "update the API_KEY value",
		},
		{
			name:             "rate_limit",
			haltError:        fmt.Errorf("unable to resolve FDID 1: %w", freshservice.FatalRateLimitError{Method: "GET", URL: "https://example.test"}),
			expectedFragment: "exceeded the API rate limit",
		},
		{
			name:             "unknown",
			haltError:        errors.New("pacing wait interrupted"),
			expectedFragment: "Run halted: pacing wait interrupted\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			outputBuffer := &bytes.Buffer{}
			ui.NewConsoleReporter(outputBuffer, false).Observe(replay.Event{Kind: replay.EventRunHalted, Err: testCase.haltError})
			require.Contains(subtest, outputBuffer.String(), testCase.expectedFragment)
		})
	}
}
