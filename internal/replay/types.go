package replay

import (
	"time"

	"github.com/temirov/noteport/internal/importfile"
)

// EligibilityDecision is the verdict on whether a destination ticket should receive notes.
type EligibilityDecision string

// Eligibility decisions.
const (
	DecisionEligible                EligibilityDecision = "eligible"
	DecisionSkippedAlreadyMigrated  EligibilityDecision = "skipped_already_migrated"
	DecisionSkippedConditionsNotMet EligibilityDecision = "skipped_conditions_not_met"
	DecisionSkippedDryRun           EligibilityDecision = "skipped_dry_run"
	DecisionSkippedTooManyComments  EligibilityDecision = "skipped_too_many_comments"
)

// Skipped reports whether the decision leaves the ticket untouched.
func (decision EligibilityDecision) Skipped() bool {
	return decision != DecisionEligible
}

// TicketOutcome is the terminal state of one ticket.
type TicketOutcome string

// Ticket outcomes.
const (
	OutcomeCompleted               TicketOutcome = "completed"
	OutcomePartiallyFailed         TicketOutcome = "partially_failed"
	OutcomeErrored                 TicketOutcome = "errored"
	OutcomeSkippedAlreadyMigrated  TicketOutcome = TicketOutcome(DecisionSkippedAlreadyMigrated)
	OutcomeSkippedConditionsNotMet TicketOutcome = TicketOutcome(DecisionSkippedConditionsNotMet)
	OutcomeSkippedDryRun           TicketOutcome = TicketOutcome(DecisionSkippedDryRun)
	OutcomeSkippedTooManyComments  TicketOutcome = TicketOutcome(DecisionSkippedTooManyComments)
)

// Skipped reports whether the outcome counts as a skip.
func (outcome TicketOutcome) Skipped() bool {
	switch outcome {
	case OutcomeSkippedAlreadyMigrated, OutcomeSkippedConditionsNotMet, OutcomeSkippedDryRun, OutcomeSkippedTooManyComments:
		return true
	default:
		return false
	}
}

// ResolvedTicket binds a source ticket to its single destination ticket.
type ResolvedTicket struct {
	ExternalID    importfile.ExternalIdentifier
	DestinationID int64
}

// EligibilityRequest carries the inputs of an eligibility check.
type EligibilityRequest struct {
	DestinationID  int64
	PrimaryActor   int64
	SecondaryActor int64
	DryRun         bool
}

// SecondaryActorConfigured reports whether a secondary actor was supplied.
func (request EligibilityRequest) SecondaryActorConfigured() bool {
	return request.SecondaryActor != 0
}

// ReplayOptions tunes comment replay for one ticket.
type ReplayOptions struct {
	BigCommentSupport bool
}

// ReplayResult summarises the replay of one ticket's notes.
type ReplayResult struct {
	Oversized bool
	Attempted int
	Succeeded int
	Failures  []NoteReplayError
}

// Outcome maps the replay result onto a ticket outcome.
func (result ReplayResult) Outcome() TicketOutcome {
	switch {
	case result.Oversized:
		return OutcomeSkippedTooManyComments
	case len(result.Failures) > 0:
		return OutcomePartiallyFailed
	default:
		return OutcomeCompleted
	}
}

// RunPlan describes a run before it starts.
type RunPlan struct {
	ToolName        string
	ToolVersion     string
	RunIdentifier   string
	Mode            string
	StartedAt       time.Time
	TicketCount     int
	NoteCount       int
	EstimatedLength time.Duration
	DryRun          bool
}
