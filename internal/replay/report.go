package replay

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/temirov/noteport/internal/utils"
)

const (
	reportHeadlineCompletedConstant = "Run Completed"
	reportHeadlineCancelledConstant = "Run Stopped After Interrupt"
	reportTotalRuntimeTemplate      = "Total Running Time: %s"
	reportAveragePerTicketTemplate  = "Average Processing Time per Ticket: %s"
	reportAverageLatencyTemplate    = "Average API Response Time: %s"
	reportAPICallCountTemplate      = "Total API Calls: %s"
	reportTicketsProcessedTemplate  = "Tickets Processed: %s"
	reportSuccessCountTemplate      = "Total Successful Tickets: %s"
	reportSkipCountTemplate         = "Total Skipped Tickets: %s"
	reportErroredTicketsTemplate    = "Errored Tickets: %s"
	reportOversizedTicketsTemplate  = "Tickets w/ 50+ Comments: %s"
	reportListOpenConstant          = "["
	reportListCloseConstant         = "]"
	reportListSeparatorConstant     = ", "
	reportLineSeparatorConstant     = "\n"
	latencyMillisecondsTemplate     = "%s milliseconds"
	latencySecondsTemplate          = "%s seconds"
	latencySecondsThresholdConstant = 1000.0
)

// Describe renders the error for reports.
func (runError RunError) Describe() string {
	return runError.Reason
}

// FormatAPILatency renders an average latency in milliseconds, or in seconds from one second up,
// rounded to two decimals.
func FormatAPILatency(latency time.Duration) string {
	milliseconds := float64(latency) / float64(time.Millisecond)
	if milliseconds >= latencySecondsThresholdConstant {
		return fmt.Sprintf(latencySecondsTemplate, formatRounded(milliseconds/latencySecondsThresholdConstant))
	}
	return fmt.Sprintf(latencyMillisecondsTemplate, formatRounded(milliseconds))
}

func formatRounded(value float64) string {
	roundedValue := math.Round(value*100) / 100
	return strconv.FormatFloat(roundedValue, 'f', -1, 64)
}

// ReportLines renders the summary as operator-facing lines.
func (summary RunSummary) ReportLines() []string {
	headline := reportHeadlineCompletedConstant
	if summary.Cancelled {
		headline = reportHeadlineCancelledConstant
	}

	errorDescriptions := make([]string, 0, len(summary.Errors))
	for _, runError := range summary.Errors {
		errorDescriptions = append(errorDescriptions, runError.Describe())
	}

	oversizedIdentifiers := make([]string, 0, len(summary.Oversized))
	for _, externalID := range summary.Oversized {
		oversizedIdentifiers = append(oversizedIdentifiers, externalID.String())
	}

	return []string{
		headline,
		fmt.Sprintf(reportTotalRuntimeTemplate, utils.FormatClockDuration(summary.TotalRuntime)),
		fmt.Sprintf(reportAveragePerTicketTemplate, utils.FormatClockDuration(summary.AveragePerTicket)),
		fmt.Sprintf(reportAverageLatencyTemplate, FormatAPILatency(summary.AverageAPILatency)),
		fmt.Sprintf(reportAPICallCountTemplate, humanize.Comma(int64(summary.APICallCount))),
		fmt.Sprintf(reportTicketsProcessedTemplate, humanize.Comma(int64(summary.TicketsProcessed))),
		fmt.Sprintf(reportSuccessCountTemplate, humanize.Comma(int64(summary.SuccessCount))),
		fmt.Sprintf(reportSkipCountTemplate, humanize.Comma(int64(summary.SkipCount))),
		fmt.Sprintf(reportErroredTicketsTemplate, formatList(errorDescriptions)),
		fmt.Sprintf(reportOversizedTicketsTemplate, formatList(oversizedIdentifiers)),
	}
}

// Report renders the summary as a multi-line block.
func (summary RunSummary) Report() string {
	return strings.Join(summary.ReportLines(), reportLineSeparatorConstant)
}

func formatList(values []string) string {
	return reportListOpenConstant + strings.Join(values, reportListSeparatorConstant) + reportListCloseConstant
}
