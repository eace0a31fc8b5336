package replay

import (
	"time"

	"github.com/temirov/noteport/internal/importfile"
)

// RunError is one failure recorded during the run.
type RunError struct {
	ExternalID    importfile.ExternalIdentifier
	DestinationID int64
	StatusCode    int
	Reason        string
}

// RunStatistics accumulates run counters; it belongs to a single run.
type RunStatistics struct {
	startedAt              time.Time
	ticketsStarted         int
	successfulDestinations map[int64]struct{}
	skipCount              int
	errors                 []RunError
	oversized              []importfile.ExternalIdentifier
	oversizedSeen          map[importfile.ExternalIdentifier]struct{}
	apiLatencyTotal        time.Duration
	apiCallCount           int
	cancelled              bool
}

// NewRunStatistics starts accumulating at startedAt.
func NewRunStatistics(startedAt time.Time) *RunStatistics {
	return &RunStatistics{
		startedAt:              startedAt,
		successfulDestinations: make(map[int64]struct{}),
		oversizedSeen:          make(map[importfile.ExternalIdentifier]struct{}),
	}
}

// RecordAPICall adds one destination exchange.
func (statistics *RunStatistics) RecordAPICall(latency time.Duration) {
	statistics.apiCallCount++
	statistics.apiLatencyTotal += latency
}

// RecordTicketStarted counts a ticket entering resolution.
func (statistics *RunStatistics) RecordTicketStarted() {
	statistics.ticketsStarted++
}

// RecordSuccess counts a destination ticket that received its notes; repeats are counted once.
func (statistics *RunStatistics) RecordSuccess(destinationID int64) {
	statistics.successfulDestinations[destinationID] = struct{}{}
}

// RecordSkip counts a skipped ticket.
func (statistics *RunStatistics) RecordSkip() {
	statistics.skipCount++
}

// RecordError appends a failure description.
func (statistics *RunStatistics) RecordError(runError RunError) {
	statistics.errors = append(statistics.errors, runError)
}

// RecordOversized remembers a ticket left alone because of its note count.
func (statistics *RunStatistics) RecordOversized(externalID importfile.ExternalIdentifier) {
	if _, seen := statistics.oversizedSeen[externalID]; seen {
		return
	}
	statistics.oversizedSeen[externalID] = struct{}{}
	statistics.oversized = append(statistics.oversized, externalID)
}

// MarkCancelled notes that the run stopped on request.
func (statistics *RunStatistics) MarkCancelled() {
	statistics.cancelled = true
}

// Finalize computes the summary at finishedAt.
func (statistics *RunStatistics) Finalize(finishedAt time.Time) RunSummary {
	totalRuntime := finishedAt.Sub(statistics.startedAt)
	if totalRuntime < 0 {
		totalRuntime = 0
	}

	averagePerTicket := time.Duration(0)
	if statistics.ticketsStarted > 0 {
		averagePerTicket = totalRuntime / time.Duration(statistics.ticketsStarted)
	}

	averageAPILatency := time.Duration(0)
	if statistics.apiCallCount > 0 {
		averageAPILatency = statistics.apiLatencyTotal / time.Duration(statistics.apiCallCount)
	}

	return RunSummary{
		StartedAt:         statistics.startedAt,
		FinishedAt:        finishedAt,
		TotalRuntime:      totalRuntime,
		AveragePerTicket:  averagePerTicket,
		AverageAPILatency: averageAPILatency,
		APICallCount:      statistics.apiCallCount,
		TicketsProcessed:  statistics.ticketsStarted,
		SuccessCount:      len(statistics.successfulDestinations),
		SkipCount:         statistics.skipCount,
		Errors:            append([]RunError(nil), statistics.errors...),
		Oversized:         append([]importfile.ExternalIdentifier(nil), statistics.oversized...),
		Cancelled:         statistics.cancelled,
	}
}

// RunSummary is the final account of a run.
type RunSummary struct {
	StartedAt         time.Time
	FinishedAt        time.Time
	TotalRuntime      time.Duration
	AveragePerTicket  time.Duration
	AverageAPILatency time.Duration
	APICallCount      int
	TicketsProcessed  int
	SuccessCount      int
	SkipCount         int
	Errors            []RunError
	Oversized         []importfile.ExternalIdentifier
	Cancelled         bool
}
