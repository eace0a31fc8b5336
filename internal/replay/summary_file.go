package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/noteport/internal/utils"
)

const (
	summaryFilePermissionsConstant      = 0o644
	summaryDirectoryPermissionsConstant = 0o755
	summaryTimestampLayoutConstant      = time.RFC3339
)

type summaryDocument struct {
	RunIdentifier     string                 `yaml:"run_id,omitempty"`
	StartedAt         string                 `yaml:"started_at"`
	FinishedAt        string                 `yaml:"finished_at"`
	TotalRuntime      string                 `yaml:"total_runtime"`
	AveragePerTicket  string                 `yaml:"average_per_ticket"`
	AverageAPILatency string                 `yaml:"average_api_latency"`
	APICallCount      int                    `yaml:"api_call_count"`
	TicketsProcessed  int                    `yaml:"tickets_processed"`
	SuccessCount      int                    `yaml:"success_count"`
	SkipCount         int                    `yaml:"skip_count"`
	Cancelled         bool                   `yaml:"cancelled"`
	Errors            []summaryErrorDocument `yaml:"errors"`
	Oversized         []string               `yaml:"oversized"`
}

type summaryErrorDocument struct {
	ExternalID    string `yaml:"fdid"`
	DestinationID int64  `yaml:"fsid,omitempty"`
	StatusCode    int    `yaml:"status_code,omitempty"`
	Reason        string `yaml:"reason"`
}

// MarshalSummaryYAML encodes the summary for machine consumption.
func MarshalSummaryYAML(summary RunSummary, runIdentifier string) ([]byte, error) {
	document := summaryDocument{
		RunIdentifier:     runIdentifier,
		StartedAt:         summary.StartedAt.Format(summaryTimestampLayoutConstant),
		FinishedAt:        summary.FinishedAt.Format(summaryTimestampLayoutConstant),
		TotalRuntime:      utils.FormatClockDuration(summary.TotalRuntime),
		AveragePerTicket:  utils.FormatClockDuration(summary.AveragePerTicket),
		AverageAPILatency: FormatAPILatency(summary.AverageAPILatency),
		APICallCount:      summary.APICallCount,
		TicketsProcessed:  summary.TicketsProcessed,
		SuccessCount:      summary.SuccessCount,
		SkipCount:         summary.SkipCount,
		Cancelled:         summary.Cancelled,
		Errors:            make([]summaryErrorDocument, 0, len(summary.Errors)),
		Oversized:         make([]string, 0, len(summary.Oversized)),
	}
	for _, runError := range summary.Errors {
		document.Errors = append(document.Errors, summaryErrorDocument{
			ExternalID:    runError.ExternalID.String(),
			DestinationID: runError.DestinationID,
			StatusCode:    runError.StatusCode,
			Reason:        runError.Reason,
		})
	}
	for _, externalID := range summary.Oversized {
		document.Oversized = append(document.Oversized, externalID.String())
	}

	encodedDocument, encodeError := yaml.Marshal(document)
	if encodeError != nil {
		return nil, fmt.Errorf(summaryFileEncodeErrorTemplateConstant, encodeError)
	}
	return encodedDocument, nil
}

// WriteSummaryFile stores the YAML summary at path, creating parent directories.
func WriteSummaryFile(path string, summary RunSummary, runIdentifier string) error {
	encodedDocument, encodeError := MarshalSummaryYAML(summary, runIdentifier)
	if encodeError != nil {
		return encodeError
	}
	if directoryError := os.MkdirAll(filepath.Dir(path), summaryDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(summaryFileWriteErrorTemplateConstant, path, directoryError)
	}
	if writeError := os.WriteFile(path, encodedDocument, summaryFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(summaryFileWriteErrorTemplateConstant, path, writeError)
	}
	return nil
}
