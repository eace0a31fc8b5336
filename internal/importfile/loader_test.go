package importfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/noteport/internal/importfile"
)

const (
	testSubtestNameTemplateConstant = "%d_%s"
	testInputFileNameConstant       = "tickets.json"
	testExportContentsConstant      = `[
  {"helpdesk_ticket": {"display_id": 101, "notes": [
    {"created_at": "2023-05-01T10:00:00Z", "support_email": "agent@example.com", "body_html": "<p>first</p>", "private": true},
    {"created_at": "2023-05-02T10:00:00Z", "support_email": null, "body_html": "<p>second</p>"}
  ]}},
  {"helpdesk_ticket": {"display_id": "102", "notes": []}}
]`
)

func TestLoaderLoadsExport(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	inputPath := filepath.Join(temporaryDirectory, testInputFileNameConstant)
	require.NoError(testInstance, os.WriteFile(inputPath, []byte(testExportContentsConstant), 0o600))

	tickets, loadError := importfile.NewLoader().Load(inputPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, tickets, 2)

	require.Equal(testInstance, importfile.ExternalIdentifier("101"), tickets[0].ExternalID)
	require.Len(testInstance, tickets[0].Notes, 2)
	require.True(testInstance, tickets[0].Notes[0].Private)
	require.Equal(testInstance, "agent@example.com", tickets[0].Notes[0].SupportEmail)
	require.Equal(testInstance, "<p>second</p>", tickets[0].Notes[1].BodyHTML)
	require.Empty(testInstance, tickets[0].Notes[1].SupportEmail)
	require.False(testInstance, tickets[0].Notes[1].Private)

	require.Equal(testInstance, importfile.ExternalIdentifier("102"), tickets[1].ExternalID)
	require.Empty(testInstance, tickets[1].Notes)
}

func TestLoaderReportsMissingFile(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), "absent.json")

	_, loadError := importfile.NewLoader().Load(missingPath)
	var missingFileError importfile.MissingInputFileError
	require.ErrorAs(testInstance, loadError, &missingFileError)
	require.Equal(testInstance, missingPath, missingFileError.Path)
	require.Contains(testInstance, loadError.Error(), "does not exist or the path used is incorrect")
}

func TestDecodeRejectsInvalidExports(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents string
	}{
		{name: "not_json", contents: "{"},
		{name: "missing_display_id", contents: `[{"helpdesk_ticket": {"notes": []}}]`},
		{name: "object_display_id", contents: `[{"helpdesk_ticket": {"display_id": {"id": 1}, "notes": []}}]`},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			_, decodeError := importfile.Decode(testInputFileNameConstant, []byte(testCase.contents))
			require.Error(subtest, decodeError)
		})
	}
}

func TestTruncateAndEstimate(testInstance *testing.T) {
	tickets := []importfile.Ticket{
		{ExternalID: "1", Notes: make([]importfile.Note, 3)},
		{ExternalID: "2", Notes: make([]importfile.Note, 4)},
		{ExternalID: "3", Notes: make([]importfile.Note, 5)},
	}

	testCases := []struct {
		name             string
		limit            int
		expectedCount    int
		expectedEstimate time.Duration
	}{
		{name: "zero_keeps_all", limit: 0, expectedCount: 3, expectedEstimate: 12 * time.Second},
		{name: "limit_truncates", limit: 2, expectedCount: 2, expectedEstimate: 7 * time.Second},
		{name: "limit_beyond_length", limit: 10, expectedCount: 3, expectedEstimate: 12 * time.Second},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			truncatedTickets := importfile.Truncate(tickets, testCase.limit)
			require.Len(subtest, truncatedTickets, testCase.expectedCount)
			require.Equal(subtest, testCase.expectedEstimate, importfile.EstimateRunTime(truncatedTickets))
		})
	}
}
