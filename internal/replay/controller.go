package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
)

// Resolver maps a source ticket onto its destination ticket.
type Resolver interface {
	Resolve(executionContext context.Context, externalID importfile.ExternalIdentifier) (ResolvedTicket, error)
}

// EligibilityDecider decides whether a destination ticket receives notes.
type EligibilityDecider interface {
	Check(executionContext context.Context, request EligibilityRequest) (EligibilityDecision, error)
}

// Replayer posts a ticket's notes.
type Replayer interface {
	Replay(executionContext context.Context, ticket importfile.Ticket, destinationID int64, options ReplayOptions) (ReplayResult, error)
}

// Pacer exposes the adaptive wait applied between tickets.
type Pacer interface {
	CurrentWait() time.Duration
}

// ControllerOptions carries per-run settings.
type ControllerOptions struct {
	PrimaryActor      int64
	SecondaryActor    int64
	DryRun            bool
	BigCommentSupport bool
	MaxTickets        int
}

// ControllerDependencies lists the collaborators of a Controller.
type ControllerDependencies struct {
	Resolver     Resolver
	Eligibility  EligibilityDecider
	Replayer     Replayer
	Pacer        Pacer
	Sleeper      freshservice.Sleeper
	Clock        freshservice.Clock
	Observer     EventObserver
	Statistics   *RunStatistics
	Cancellation *CancellationToken
}

// Controller drives tickets through resolution, eligibility and replay one at a time.
type Controller struct {
	resolver     Resolver
	eligibility  EligibilityDecider
	replayer     Replayer
	pacer        Pacer
	sleeper      freshservice.Sleeper
	clock        freshservice.Clock
	observer     EventObserver
	statistics   *RunStatistics
	cancellation *CancellationToken
	options      ControllerOptions
}

// NewController builds a controller.
func NewController(dependencies ControllerDependencies, options ControllerOptions) *Controller {
	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = freshservice.ContextSleeper
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = freshservice.SystemClock{}
	}
	statistics := dependencies.Statistics
	if statistics == nil {
		statistics = NewRunStatistics(clock.Now())
	}
	cancellation := dependencies.Cancellation
	if cancellation == nil {
		cancellation = NewCancellationToken()
	}
	return &Controller{
		resolver:     dependencies.Resolver,
		eligibility:  dependencies.Eligibility,
		replayer:     dependencies.Replayer,
		pacer:        dependencies.Pacer,
		sleeper:      sleeper,
		clock:        clock,
		observer:     resolveObserver(dependencies.Observer),
		statistics:   statistics,
		cancellation: cancellation,
		options:      options,
	}
}

// Run processes tickets in input order, honouring MaxTickets and the cancellation token.
// Fatal errors stop the run at once and no summary is produced.
func (controller *Controller) Run(executionContext context.Context, tickets []importfile.Ticket) (RunSummary, error) {
	selectedTickets := importfile.Truncate(tickets, controller.options.MaxTickets)
	totalTickets := len(selectedTickets)

	for ticketIndex, ticket := range selectedTickets {
		if controller.cancellation.Requested() {
			controller.statistics.MarkCancelled()
			controller.observer.Observe(Event{Kind: EventRunStopped, Processed: ticketIndex, Total: totalTickets})
			break
		}

		if haltError := controller.processTicket(executionContext, ticket); haltError != nil {
			controller.observer.Observe(Event{Kind: EventRunHalted, ExternalID: ticket.ExternalID, Err: haltError})
			return RunSummary{}, haltError
		}

		controller.observer.Observe(Event{Kind: EventProgress, Processed: ticketIndex + 1, Total: totalTickets})

		if sleepError := controller.sleeper(executionContext, controller.currentWait()); sleepError != nil {
			return RunSummary{}, fmt.Errorf(pacingInterruptedTemplateConstant, sleepError)
		}
	}

	summary := controller.statistics.Finalize(controller.clock.Now())
	controller.observer.Observe(Event{Kind: EventRunSummarized, Summary: &summary})
	return summary, nil
}

func (controller *Controller) processTicket(executionContext context.Context, ticket importfile.Ticket) error {
	controller.statistics.RecordTicketStarted()
	controller.observer.Observe(Event{Kind: EventTicketStarted, ExternalID: ticket.ExternalID, NoteCount: len(ticket.Notes)})

	resolvedTicket, resolveError := controller.resolver.Resolve(executionContext, ticket.ExternalID)
	if resolveError != nil {
		return controller.recordTicketFailure(executionContext, ticket.ExternalID, 0, describeResolutionFailure(ticket.ExternalID, resolveError))
	}
	destinationID := resolvedTicket.DestinationID
	controller.observer.Observe(Event{Kind: EventTicketResolved, ExternalID: ticket.ExternalID, DestinationID: destinationID})

	decision, checkError := controller.eligibility.Check(executionContext, EligibilityRequest{
		DestinationID:  destinationID,
		PrimaryActor:   controller.options.PrimaryActor,
		SecondaryActor: controller.options.SecondaryActor,
		DryRun:         controller.options.DryRun,
	})
	if checkError != nil {
		return controller.recordTicketFailure(executionContext, ticket.ExternalID, destinationID, fmt.Errorf(eligibilityFailureTemplateConstant, ticket.ExternalID, destinationID, checkError))
	}
	if decision.Skipped() {
		controller.recordSkip(ticket, destinationID, TicketOutcome(decision))
		return nil
	}

	replayResult, replayError := controller.replayer.Replay(executionContext, ticket, destinationID, ReplayOptions{BigCommentSupport: controller.options.BigCommentSupport})
	if replayError != nil {
		return replayError
	}

	outcome := replayResult.Outcome()
	if outcome == OutcomeSkippedTooManyComments {
		controller.statistics.RecordOversized(ticket.ExternalID)
		controller.recordSkip(ticket, destinationID, outcome)
		return nil
	}

	for _, failure := range replayResult.Failures {
		controller.statistics.RecordError(RunError{
			ExternalID:    failure.ExternalID,
			DestinationID: failure.DestinationID,
			StatusCode:    failure.StatusCode,
			Reason:        failure.Error(),
		})
	}
	controller.statistics.RecordSuccess(destinationID)
	controller.observer.Observe(Event{
		Kind:          EventTicketCompleted,
		ExternalID:    ticket.ExternalID,
		DestinationID: destinationID,
		Outcome:       outcome,
		NoteCount:     len(ticket.Notes),
	})
	return nil
}

func (controller *Controller) recordSkip(ticket importfile.Ticket, destinationID int64, outcome TicketOutcome) {
	controller.statistics.RecordSkip()
	controller.observer.Observe(Event{
		Kind:          EventTicketSkipped,
		ExternalID:    ticket.ExternalID,
		DestinationID: destinationID,
		Outcome:       outcome,
		NoteCount:     len(ticket.Notes),
	})
}

func (controller *Controller) recordTicketFailure(executionContext context.Context, externalID importfile.ExternalIdentifier, destinationID int64, failure error) error {
	if freshservice.IsFatal(failure) || executionContext.Err() != nil {
		return failure
	}
	controller.statistics.RecordError(RunError{
		ExternalID:    externalID,
		DestinationID: destinationID,
		StatusCode:    freshservice.StatusCode(failure),
		Reason:        failure.Error(),
	})
	controller.observer.Observe(Event{
		Kind:          EventTicketErrored,
		ExternalID:    externalID,
		DestinationID: destinationID,
		Outcome:       OutcomeErrored,
		StatusCode:    freshservice.StatusCode(failure),
		Err:           failure,
	})
	return nil
}

func (controller *Controller) currentWait() time.Duration {
	if controller.pacer == nil {
		return 0
	}
	return controller.pacer.CurrentWait()
}

func describeResolutionFailure(externalID importfile.ExternalIdentifier, resolveError error) error {
	switch resolveError.(type) {
	case NotFoundError, AmbiguousMatchError, MalformedFilterResultError:
		return resolveError
	default:
		return fmt.Errorf(resolutionFailureTemplateConstant, externalID, resolveError)
	}
}
