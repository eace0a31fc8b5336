package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
	"github.com/temirov/noteport/internal/replay"
	"github.com/temirov/noteport/internal/utils"
)

const (
	logMessageRunPlannedConstant            = "Run planned"
	logMessageTicketStartedConstant         = "Processing ticket"
	logMessageTicketResolvedConstant        = "Ticket resolved"
	logMessageTicketSkippedConstant         = "Ticket skipped"
	logMessageTicketErroredConstant         = "Ticket failed"
	logMessageNoteReplayedConstant          = "Note replayed"
	logMessageNoteFailedConstant            = "Note failed"
	logMessageTicketCompletedConstant       = "Ticket completed"
	logMessageCancellationRequestedConstant = "Interrupt received"
	logMessageRunStoppedConstant            = "Run stopped on interrupt"
	logMessageRunHaltedConstant             = "Run halted"
	logMessageRunSummarizedConstant         = "Run summary"
	logFieldRunIdentifierConstant           = "run_id"
	logFieldModeConstant                    = "mode"
	logFieldTicketCountConstant             = "tickets"
	logFieldNoteCountConstant               = "notes"
	logFieldEstimateConstant                = "estimated_runtime"
	logFieldDryRunConstant                  = "dry_run"
	logFieldExternalIdentifierConstant      = "fdid"
	logFieldDestinationIdentifierConstant   = "fsid"
	logFieldOutcomeConstant                 = "outcome"
	logFieldNotePositionConstant            = "note"
	logFieldStatusCodeConstant              = "status_code"
	logFieldProcessedConstant               = "processed"
	logFieldTotalConstant                   = "total"
	logFieldFatalKindConstant               = "fatal_kind"
	logFieldTotalRuntimeConstant            = "total_runtime"
	logFieldAveragePerTicketConstant        = "average_per_ticket"
	logFieldAverageLatencyConstant          = "average_api_latency"
	logFieldAPICallCountConstant            = "api_calls"
	logFieldSuccessCountConstant            = "successful"
	logFieldSkipCountConstant               = "skipped"
	logFieldErrorCountConstant              = "errored"
	logFieldOversizedCountConstant          = "oversized"
	logFieldCancelledConstant               = "cancelled"
	logFieldErrorReasonsConstant            = "errored_tickets"
	logFieldOversizedTicketsConstant        = "oversized_tickets"
	logFieldReportConstant                  = "report"
)

// LogEventWriter records run events as structured log entries.
type LogEventWriter struct {
	logger *zap.Logger
}

// NewLogEventWriter builds a writer; a nil logger discards everything.
func NewLogEventWriter(logger *zap.Logger) *LogEventWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEventWriter{logger: logger}
}

// Observe implements replay.EventObserver.
func (eventWriter *LogEventWriter) Observe(event replay.Event) {
	if eventWriter == nil {
		return
	}

	switch event.Kind {
	case replay.EventRunPlanned:
		if event.Plan == nil {
			return
		}
		eventWriter.logger.Info(logMessageRunPlannedConstant,
			zap.String(logFieldRunIdentifierConstant, event.Plan.RunIdentifier),
			zap.String(logFieldModeConstant, event.Plan.Mode),
			zap.Int(logFieldTicketCountConstant, event.Plan.TicketCount),
			zap.Int(logFieldNoteCountConstant, event.Plan.NoteCount),
			zap.String(logFieldEstimateConstant, utils.FormatClockDuration(event.Plan.EstimatedLength)),
			zap.Bool(logFieldDryRunConstant, event.Plan.DryRun),
		)
	case replay.EventTicketStarted:
		eventWriter.logger.Debug(logMessageTicketStartedConstant, ticketFields(event, zap.Int(logFieldNoteCountConstant, event.NoteCount))...)
	case replay.EventTicketResolved:
		eventWriter.logger.Debug(logMessageTicketResolvedConstant, ticketFields(event)...)
	case replay.EventTicketSkipped:
		eventWriter.logger.Info(logMessageTicketSkippedConstant, ticketFields(event, zap.String(logFieldOutcomeConstant, string(event.Outcome)))...)
	case replay.EventTicketErrored:
		eventWriter.logger.Warn(logMessageTicketErroredConstant, ticketFields(event, zap.Int(logFieldStatusCodeConstant, event.StatusCode), zap.Error(event.Err))...)
	case replay.EventNoteReplayed:
		eventWriter.logger.Debug(logMessageNoteReplayedConstant, ticketFields(event, zap.Int(logFieldNotePositionConstant, event.NotePosition))...)
	case replay.EventNoteFailed:
		eventWriter.logger.Warn(logMessageNoteFailedConstant, ticketFields(event,
			zap.Int(logFieldNotePositionConstant, event.NotePosition),
			zap.Int(logFieldStatusCodeConstant, event.StatusCode),
			zap.Error(event.Err),
		)...)
	case replay.EventTicketCompleted:
		eventWriter.logger.Info(logMessageTicketCompletedConstant, ticketFields(event, zap.String(logFieldOutcomeConstant, string(event.Outcome)))...)
	case replay.EventCancellationRequested:
		eventWriter.logger.Warn(logMessageCancellationRequestedConstant)
	case replay.EventRunStopped:
		eventWriter.logger.Warn(logMessageRunStoppedConstant, zap.Int(logFieldProcessedConstant, event.Processed), zap.Int(logFieldTotalConstant, event.Total))
	case replay.EventRunHalted:
		eventWriter.logger.Error(logMessageRunHaltedConstant,
			zap.String(logFieldExternalIdentifierConstant, event.ExternalID.String()),
			zap.String(logFieldFatalKindConstant, freshservice.FatalKind(event.Err)),
			zap.Error(event.Err),
		)
	case replay.EventRunSummarized:
		if event.Summary == nil {
			return
		}
		eventWriter.logger.Info(logMessageRunSummarizedConstant,
			zap.String(logFieldTotalRuntimeConstant, utils.FormatClockDuration(event.Summary.TotalRuntime)),
			zap.String(logFieldAveragePerTicketConstant, utils.FormatClockDuration(event.Summary.AveragePerTicket)),
			zap.String(logFieldAverageLatencyConstant, replay.FormatAPILatency(event.Summary.AverageAPILatency)),
			zap.Int(logFieldAPICallCountConstant, event.Summary.APICallCount),
			zap.Int(logFieldTicketCountConstant, event.Summary.TicketsProcessed),
			zap.Int(logFieldSuccessCountConstant, event.Summary.SuccessCount),
			zap.Int(logFieldSkipCountConstant, event.Summary.SkipCount),
			zap.Int(logFieldErrorCountConstant, len(event.Summary.Errors)),
			zap.Int(logFieldOversizedCountConstant, len(event.Summary.Oversized)),
			zap.Bool(logFieldCancelledConstant, event.Summary.Cancelled),
			zap.Strings(logFieldErrorReasonsConstant, errorReasons(event.Summary.Errors)),
			zap.Strings(logFieldOversizedTicketsConstant, externalIdentifiers(event.Summary.Oversized)),
			zap.Strings(logFieldReportConstant, event.Summary.ReportLines()),
		)
	}
}

func ticketFields(event replay.Event, extraFields ...zap.Field) []zap.Field {
	fields := []zap.Field{zap.String(logFieldExternalIdentifierConstant, event.ExternalID.String())}
	if event.DestinationID != 0 {
		fields = append(fields, zap.Int64(logFieldDestinationIdentifierConstant, event.DestinationID))
	}
	return append(fields, extraFields...)
}

func errorReasons(runErrors []replay.RunError) []string {
	reasons := make([]string, 0, len(runErrors))
	for _, runError := range runErrors {
		reasons = append(reasons, runError.Describe())
	}
	return reasons
}

func externalIdentifiers(externalIDs []importfile.ExternalIdentifier) []string {
	identifiers := make([]string, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		identifiers = append(identifiers, externalID.String())
	}
	return identifiers
}
