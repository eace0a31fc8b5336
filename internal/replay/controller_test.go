package replay_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
	"github.com/temirov/noteport/internal/replay"
)

type controllerHarness struct {
	destination  *fakeDestination
	sleeper      *recordingSleeper
	observer     *recordingObserver
	clock        *fixedClock
	cancellation *replay.CancellationToken
}

func newControllerHarness() *controllerHarness {
	return &controllerHarness{
		destination:  newFakeDestination(),
		sleeper:      &recordingSleeper{},
		observer:     &recordingObserver{},
		clock:        &fixedClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		cancellation: replay.NewCancellationToken(),
	}
}

func (harness *controllerHarness) build(options replay.ControllerOptions, extraObservers ...replay.EventObserver) *replay.Controller {
	observers := replay.ObserverGroup{harness.observer}
	for _, extraObserver := range extraObservers {
		observers = append(observers, extraObserver)
	}
	replayer := replay.NewCommentReplayer(replay.CommentReplayerDependencies{
		Creator:  harness.destination,
		Sleeper:  harness.sleeper.Sleep,
		Observer: observers,
	})
	return replay.NewController(replay.ControllerDependencies{
		Resolver:     replay.NewTicketResolver(harness.destination, replay.DefaultTicketTypeFilterConstant),
		Eligibility:  replay.NewEligibilityChecker(harness.destination),
		Replayer:     replayer,
		Pacer:        harness.destination,
		Sleeper:      harness.sleeper.Sleep,
		Clock:        harness.clock,
		Observer:     observers,
		Statistics:   replay.NewRunStatistics(harness.clock.now),
		Cancellation: harness.cancellation,
	}, options)
}

type cancellingObserver struct {
	token   *replay.CancellationToken
	trigger replay.EventKind
}

func (observer cancellingObserver) Observe(event replay.Event) {
	if event.Kind == observer.trigger {
		observer.token.Request()
	}
}

type advancingObserver struct {
	clock *fixedClock
	step  time.Duration
}

func (observer advancingObserver) Observe(event replay.Event) {
	if event.Kind == replay.EventTicketStarted {
		observer.clock.now = observer.clock.now.Add(observer.step)
	}
}

func TestControllerCountsSuccessPerDestination(testInstance *testing.T) {
	harness := newControllerHarness()
	harness.destination.mapTicket("1", 77)
	harness.destination.mapTicket("2", 77)
	harness.destination.mapTicket("4", 78)

	controller := harness.build(replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant}, advancingObserver{clock: harness.clock, step: 2 * time.Second})
	summary, runError := controller.Run(context.Background(), []importfile.Ticket{
		buildTicket("1", 2),
		buildTicket("2", 1),
		buildTicket("3", 1),
		buildTicket("4", 50),
	})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, 4, summary.TicketsProcessed)
	require.Equal(testInstance, 1, summary.SuccessCount)
	require.Equal(testInstance, 1, summary.SkipCount)
	require.Equal(testInstance, []importfile.ExternalIdentifier{"4"}, summary.Oversized)
	require.Len(testInstance, summary.Errors, 1)
	require.Equal(testInstance, "FDID: 3 not found in Fresh Service", summary.Errors[0].Reason)
	require.Len(testInstance, harness.destination.postedNotes, 3)
	require.Equal(testInstance, 8*time.Second, summary.TotalRuntime)
	require.Equal(testInstance, 2*time.Second, summary.AveragePerTicket)
	require.False(testInstance, summary.Cancelled)

	progressEvents := harness.observer.eventsOfKind(replay.EventProgress)
	require.Len(testInstance, progressEvents, 4)
	require.Equal(testInstance, 4, progressEvents[3].Processed)
	require.Equal(testInstance, 4, progressEvents[3].Total)
	require.Equal(testInstance, replay.EventRunSummarized, harness.observer.kinds()[len(harness.observer.events)-1])
}

func TestControllerSkipsIneligibleTickets(testInstance *testing.T) {
	testCases := []struct {
		name            string
		options         replay.ControllerOptions
		conversations   []freshservice.Conversation
		expectedOutcome replay.TicketOutcome
	}{
		{
			name:            "dry_run",
			options:         replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant, DryRun: true},
			expectedOutcome: replay.OutcomeSkippedDryRun,
		},
		{
			name:            "secondary_actor",
			options:         replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant, SecondaryActor: testSecondaryActorConstant},
			conversations:   []freshservice.Conversation{{UserID: testSecondaryActorConstant, CreatedAt: testFirstTimestampConstant}},
			expectedOutcome: replay.OutcomeSkippedAlreadyMigrated,
		},
		{
			name:            "conditions_not_met",
			options:         replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant},
			conversations:   []freshservice.Conversation{{UserID: testPrimaryActorConstant, CreatedAt: testFirstTimestampConstant}},
			expectedOutcome: replay.OutcomeSkippedConditionsNotMet,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			harness := newControllerHarness()
			harness.destination.mapTicket("1", 77)
			harness.destination.conversations[77] = testCase.conversations

			summary, runError := harness.build(testCase.options).Run(context.Background(), []importfile.Ticket{buildTicket("1", 3)})
			require.NoError(subtest, runError)
			require.Empty(subtest, harness.destination.postedNotes)
			require.Equal(subtest, 1, summary.SkipCount)
			require.Equal(subtest, 0, summary.SuccessCount)

			skippedEvents := harness.observer.eventsOfKind(replay.EventTicketSkipped)
			require.Len(subtest, skippedEvents, 1)
			require.Equal(subtest, testCase.expectedOutcome, skippedEvents[0].Outcome)
		})
	}
}

func TestControllerStopsWhenCancellationRequested(testInstance *testing.T) {
	harness := newControllerHarness()
	harness.destination.mapTicket("1", 77)
	harness.destination.mapTicket("2", 78)
	harness.destination.mapTicket("3", 79)

	controller := harness.build(replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant}, cancellingObserver{token: harness.cancellation, trigger: replay.EventProgress})
	summary, runError := controller.Run(context.Background(), []importfile.Ticket{buildTicket("1", 1), buildTicket("2", 1), buildTicket("3", 1)})
	require.NoError(testInstance, runError)

	require.True(testInstance, summary.Cancelled)
	require.Equal(testInstance, 1, summary.TicketsProcessed)
	require.Equal(testInstance, 1, summary.SuccessCount)
	require.Len(testInstance, harness.destination.filterQueries, 1)

	stoppedEvents := harness.observer.eventsOfKind(replay.EventRunStopped)
	require.Len(testInstance, stoppedEvents, 1)
	require.Equal(testInstance, 1, stoppedEvents[0].Processed)
	require.Equal(testInstance, 3, stoppedEvents[0].Total)
	require.Len(testInstance, harness.observer.eventsOfKind(replay.EventRunSummarized), 1)
}

func TestControllerFinishesCurrentTicketWhenCancelledMidReplay(testInstance *testing.T) {
	harness := newControllerHarness()
	harness.destination.mapTicket("1", 77)
	harness.destination.mapTicket("2", 78)

	controller := harness.build(replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant}, cancellingObserver{token: harness.cancellation, trigger: replay.EventNoteReplayed})
	summary, runError := controller.Run(context.Background(), []importfile.Ticket{buildTicket("1", 3), buildTicket("2", 2)})
	require.NoError(testInstance, runError)

	require.True(testInstance, summary.Cancelled)
	require.Equal(testInstance, 1, summary.TicketsProcessed)
	require.Equal(testInstance, 1, summary.SuccessCount)
	require.Len(testInstance, harness.destination.postedNotes, 3)
	for _, note := range harness.destination.postedNotes {
		require.Equal(testInstance, int64(77), note.destinationID)
	}
	require.Equal(testInstance, []string{freshservice.TicketFilterQuery("1", replay.DefaultTicketTypeFilterConstant)}, harness.destination.filterQueries)

	stoppedEvents := harness.observer.eventsOfKind(replay.EventRunStopped)
	require.Len(testInstance, stoppedEvents, 1)
	require.Equal(testInstance, 1, stoppedEvents[0].Processed)
	require.Equal(testInstance, 2, stoppedEvents[0].Total)
}

func TestControllerHaltsOnFatalError(testInstance *testing.T) {
	harness := newControllerHarness()
	harness.destination.mapTicket("1", 77)
	harness.destination.filterErrors[freshservice.TicketFilterQuery("2", replay.DefaultTicketTypeFilterConstant)] = freshservice.FatalRateLimitError{Method: "GET", URL: "https://example.test/tickets/filter"}
	harness.destination.mapTicket("3", 79)

	_, runError := harness.build(replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant}).Run(context.Background(), []importfile.Ticket{
		buildTicket("1", 1),
		buildTicket("2", 1),
		buildTicket("3", 1),
	})
	require.Error(testInstance, runError)
	require.Equal(testInstance, "rate_limit", freshservice.FatalKind(runError))
	require.Len(testInstance, harness.destination.filterQueries, 2)
	require.Len(testInstance, harness.destination.postedNotes, 1)

	haltedEvents := harness.observer.eventsOfKind(replay.EventRunHalted)
	require.Len(testInstance, haltedEvents, 1)
	require.Equal(testInstance, importfile.ExternalIdentifier("2"), haltedEvents[0].ExternalID)
	require.Empty(testInstance, harness.observer.eventsOfKind(replay.EventRunSummarized))
}

func TestControllerRecordsTransientResolutionFailure(testInstance *testing.T) {
	harness := newControllerHarness()
	harness.destination.filterErrors[freshservice.TicketFilterQuery("5", replay.DefaultTicketTypeFilterConstant)] = freshservice.TransientNetworkError{
		Method:   "GET",
		URL:      "https://example.test/tickets/filter",
		Attempts: 3,
		Timeout:  true,
		Cause:    errors.New("i/o timeout"),
	}
	harness.destination.mapTicket("6", 80)

	summary, runError := harness.build(replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant}).Run(context.Background(), []importfile.Ticket{buildTicket("5", 1), buildTicket("6", 1)})
	require.NoError(testInstance, runError)
	require.Len(testInstance, summary.Errors, 1)
	require.Contains(testInstance, summary.Errors[0].Reason, "unable to resolve FDID 5")
	require.Equal(testInstance, 1, summary.SuccessCount)
	require.Len(testInstance, harness.observer.eventsOfKind(replay.EventTicketErrored), 1)
}

func TestControllerHonoursTicketLimitAndPacing(testInstance *testing.T) {
	harness := newControllerHarness()
	harness.destination.wait = time.Second
	harness.destination.mapTicket("1", 77)
	harness.destination.mapTicket("2", 78)
	harness.destination.mapTicket("3", 79)

	summary, runError := harness.build(replay.ControllerOptions{PrimaryActor: testPrimaryActorConstant, MaxTickets: 2}).Run(context.Background(), []importfile.Ticket{
		buildTicket("1", 1),
		buildTicket("2", 0),
		buildTicket("3", 1),
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, summary.TicketsProcessed)
	require.Equal(testInstance, 2, summary.SuccessCount)
	require.Len(testInstance, harness.destination.filterQueries, 2)
	require.Equal(testInstance, []time.Duration{time.Second, time.Second, time.Second}, harness.sleeper.durations)
}
