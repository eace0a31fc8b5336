package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/replay"
	"github.com/temirov/noteport/internal/utils"
)

const (
	noColorEnvironmentVariableConstant   = "NO_COLOR"
	terminalEnvironmentVariableConstant  = "TERM"
	dumbTerminalValueConstant            = "dumb"
	bannerTitleTemplateConstant          = "%s %s"
	bannerRunIdentifierTemplateConstant  = "Run ID: %s"
	bannerModeTemplateConstant           = "Mode: %s"
	bannerStartedTemplateConstant        = "Started: %s"
	bannerTicketCountTemplateConstant    = "Tickets to Process: %s"
	bannerNoteCountTemplateConstant      = "Notes to Replay: %s"
	bannerEstimateTemplateConstant       = "Estimated Running Time: %s"
	bannerDryRunMessageConstant          = "Dry run: eligibility is checked but no notes are posted."
	bannerTimestampLayoutConstant        = "2006-01-02 15:04:05"
	progressBarTemplateConstant          = "Progress: [%s] %d%% (%d/%d)"
	progressBarFilledSymbolConstant      = "#"
	progressBarEmptySymbolConstant       = "-"
	progressBarWidthConstant             = 30
	carriageReturnConstant               = "\r"
	lineBreakConstant                    = "\n"
	ticketSkippedTemplateConstant        = "FDID %s (FSID %d) skipped: %s"
	ticketErroredTemplateConstant        = "FDID %s: %v"
	cancellationRequestedMessageConstant = "Interrupt received. The run stops after the current ticket."
	runStoppedTemplateConstant           = "Stopped after %d of %d tickets."
	runHaltedTemplateConstant            = "Run halted: %v"
	skipReasonAlreadyMigratedConstant    = "already migrated by the secondary actor"
	skipReasonConditionsNotMetConstant   = "existing conversations do not match the primary actor's note activity"
	skipReasonDryRunConstant             = "dry run"
	skipReasonTooManyCommentsConstant    = "50 or more notes; rerun with --bigcomments-support"
	colorCodeHeadlineConstant            = "12"
	colorCodeWarningConstant             = "11"
	colorCodeErrorConstant               = "9"
	colorCodeMutedConstant               = "8"
)

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(name string) (string, bool)

// ColorsEnabled reports whether styled output is allowed; NO_COLOR or TERM=dumb disable it.
func ColorsEnabled(lookupEnvironment EnvironmentLookup) bool {
	if lookupEnvironment == nil {
		return true
	}
	if _, noColorSet := lookupEnvironment(noColorEnvironmentVariableConstant); noColorSet {
		return false
	}
	if terminalName, terminalSet := lookupEnvironment(terminalEnvironmentVariableConstant); terminalSet && terminalName == dumbTerminalValueConstant {
		return false
	}
	return true
}

// RenderProgressBar draws the textual progress bar for processed out of total tickets.
func RenderProgressBar(processed int, total int, width int) string {
	if width <= 0 {
		width = progressBarWidthConstant
	}
	percentage := 100
	filledCells := width
	if total > 0 {
		clampedProcessed := min(max(processed, 0), total)
		percentage = clampedProcessed * 100 / total
		filledCells = clampedProcessed * width / total
	}
	bar := strings.Repeat(progressBarFilledSymbolConstant, filledCells) + strings.Repeat(progressBarEmptySymbolConstant, width-filledCells)
	return fmt.Sprintf(progressBarTemplateConstant, bar, percentage, processed, total)
}

// ConsoleReporter renders run events for the operator.
type ConsoleReporter struct {
	writer          io.Writer
	colorsEnabled   bool
	headlineStyle   lipgloss.Style
	warningStyle    lipgloss.Style
	errorStyle      lipgloss.Style
	mutedStyle      lipgloss.Style
	mutex           sync.Mutex
	progressPending bool
}

// NewConsoleReporter builds a reporter writing to writer.
func NewConsoleReporter(writer io.Writer, colorsEnabled bool) *ConsoleReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleReporter{
		writer:        writer,
		colorsEnabled: colorsEnabled,
		headlineStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCodeHeadlineConstant)),
		warningStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorCodeWarningConstant)),
		errorStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCodeErrorConstant)),
		mutedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorCodeMutedConstant)),
	}
}

// Observe implements replay.EventObserver.
func (reporter *ConsoleReporter) Observe(event replay.Event) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	switch event.Kind {
	case replay.EventRunPlanned:
		if event.Plan != nil {
			reporter.writeBanner(*event.Plan)
		}
	case replay.EventTicketSkipped:
		reporter.writeLine(reporter.styled(fmt.Sprintf(ticketSkippedTemplateConstant, event.ExternalID, event.DestinationID, describeSkip(event.Outcome)), reporter.mutedStyle))
	case replay.EventTicketErrored:
		reporter.writeLine(reporter.styled(fmt.Sprintf(ticketErroredTemplateConstant, event.ExternalID, event.Err), reporter.warningStyle))
	case replay.EventNoteFailed:
		reporter.writeLine(reporter.styled(describeError(event.Err), reporter.warningStyle))
	case replay.EventProgress:
		reporter.writeProgress(event.Processed, event.Total)
	case replay.EventCancellationRequested:
		reporter.writeLine(reporter.styled(cancellationRequestedMessageConstant, reporter.warningStyle))
	case replay.EventRunStopped:
		reporter.writeLine(reporter.styled(fmt.Sprintf(runStoppedTemplateConstant, event.Processed, event.Total), reporter.warningStyle))
	case replay.EventRunHalted:
		reporter.writeHalt(event.Err)
	case replay.EventRunSummarized:
		if event.Summary != nil {
			reporter.writeSummary(*event.Summary)
		}
	}
}

func (reporter *ConsoleReporter) writeBanner(plan replay.RunPlan) {
	reporter.writeLine(reporter.styled(fmt.Sprintf(bannerTitleTemplateConstant, plan.ToolName, plan.ToolVersion), reporter.headlineStyle))
	if len(plan.RunIdentifier) > 0 {
		reporter.writeLine(reporter.styled(fmt.Sprintf(bannerRunIdentifierTemplateConstant, plan.RunIdentifier), reporter.mutedStyle))
	}
	reporter.writeLine(fmt.Sprintf(bannerModeTemplateConstant, plan.Mode))
	reporter.writeLine(fmt.Sprintf(bannerStartedTemplateConstant, plan.StartedAt.Format(bannerTimestampLayoutConstant)))
	reporter.writeLine(fmt.Sprintf(bannerTicketCountTemplateConstant, humanize.Comma(int64(plan.TicketCount))))
	reporter.writeLine(fmt.Sprintf(bannerNoteCountTemplateConstant, humanize.Comma(int64(plan.NoteCount))))
	reporter.writeLine(fmt.Sprintf(bannerEstimateTemplateConstant, utils.FormatClockDuration(plan.EstimatedLength)))
	if plan.DryRun {
		reporter.writeLine(reporter.styled(bannerDryRunMessageConstant, reporter.warningStyle))
	}
}

func (reporter *ConsoleReporter) writeProgress(processed int, total int) {
	_, _ = io.WriteString(reporter.writer, carriageReturnConstant+RenderProgressBar(processed, total, progressBarWidthConstant))
	reporter.progressPending = true
	if processed >= total {
		reporter.finishProgressLine()
	}
}

func (reporter *ConsoleReporter) writeHalt(haltError error) {
	reporter.writeLine(reporter.styled(fmt.Sprintf(runHaltedTemplateConstant, haltError), reporter.errorStyle))
	var fatalError freshservice.FatalError
	if errors.As(haltError, &fatalError) {
		reporter.writeLine(fatalError.Remediation())
	}
}

func (reporter *ConsoleReporter) writeSummary(summary replay.RunSummary) {
	reportLines := summary.ReportLines()
	for lineIndex, reportLine := range reportLines {
		if lineIndex == 0 {
			reporter.writeLine(reporter.styled(reportLine, reporter.headlineStyle))
			continue
		}
		reporter.writeLine(reportLine)
	}
}

func (reporter *ConsoleReporter) writeLine(line string) {
	reporter.finishProgressLine()
	_, _ = io.WriteString(reporter.writer, line+lineBreakConstant)
}

func (reporter *ConsoleReporter) finishProgressLine() {
	if !reporter.progressPending {
		return
	}
	reporter.progressPending = false
	_, _ = io.WriteString(reporter.writer, lineBreakConstant)
}

func (reporter *ConsoleReporter) styled(text string, style lipgloss.Style) string {
	if !reporter.colorsEnabled {
		return text
	}
	return style.Render(text)
}

func describeSkip(outcome replay.TicketOutcome) string {
	switch outcome {
	case replay.OutcomeSkippedAlreadyMigrated:
		return skipReasonAlreadyMigratedConstant
	case replay.OutcomeSkippedConditionsNotMet:
		return skipReasonConditionsNotMetConstant
	case replay.OutcomeSkippedDryRun:
		return skipReasonDryRunConstant
	case replay.OutcomeSkippedTooManyComments:
		return skipReasonTooManyCommentsConstant
	default:
		return string(outcome)
	}
}

func describeError(failure error) string {
	if failure == nil {
		return ""
	}
	return failure.Error()
}
