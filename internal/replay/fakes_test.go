package replay_test

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
	"github.com/temirov/noteport/internal/replay"
)

const (
	testSubtestNameTemplateConstant = "%d_%s"
	testPrimaryActorConstant        = int64(100)
	testSecondaryActorConstant      = int64(200)
	testOtherActorConstant          = int64(300)
	testPublicNoteActivityConstant  = "Migration Agent added a public note"
	testPrivateNoteActivityConstant = "Migration Agent added a private note"
	testStatusActivityConstant      = "Migration Agent set Status as Open"
)

type fakeDestination struct {
	filterResults map[string]freshservice.TicketFilterResult
	filterErrors  map[string]error
	conversations map[int64][]freshservice.Conversation
	activities    map[int64][]freshservice.Activity
	noteErrors    map[int]error
	wait          time.Duration

	filterQueries       []string
	conversationLookups []int64
	activityLookups     []int64
	postedNotes         []postedNote
}

type postedNote struct {
	destinationID int64
	payload       freshservice.NotePayload
}

func newFakeDestination() *fakeDestination {
	return &fakeDestination{
		filterResults: map[string]freshservice.TicketFilterResult{},
		filterErrors:  map[string]error{},
		conversations: map[int64][]freshservice.Conversation{},
		activities:    map[int64][]freshservice.Activity{},
		noteErrors:    map[int]error{},
	}
}

func (destination *fakeDestination) mapTicket(externalID string, destinationID int64) {
	destination.filterResults[freshservice.TicketFilterQuery(externalID, replay.DefaultTicketTypeFilterConstant)] = freshservice.TicketFilterResult{
		Tickets: []freshservice.Ticket{{ID: destinationID}},
		Total:   1,
	}
}

func (destination *fakeDestination) FilterTickets(_ context.Context, rawQuery string) (freshservice.TicketFilterResult, error) {
	destination.filterQueries = append(destination.filterQueries, rawQuery)
	if filterError, exists := destination.filterErrors[rawQuery]; exists {
		return freshservice.TicketFilterResult{}, filterError
	}
	return destination.filterResults[rawQuery], nil
}

func (destination *fakeDestination) ListConversations(_ context.Context, ticketIdentifier int64) ([]freshservice.Conversation, error) {
	destination.conversationLookups = append(destination.conversationLookups, ticketIdentifier)
	return destination.conversations[ticketIdentifier], nil
}

func (destination *fakeDestination) ListActivities(_ context.Context, ticketIdentifier int64) ([]freshservice.Activity, error) {
	destination.activityLookups = append(destination.activityLookups, ticketIdentifier)
	return destination.activities[ticketIdentifier], nil
}

func (destination *fakeDestination) CreateNote(_ context.Context, ticketIdentifier int64, payload freshservice.NotePayload) error {
	destination.postedNotes = append(destination.postedNotes, postedNote{destinationID: ticketIdentifier, payload: payload})
	if noteError, exists := destination.noteErrors[len(destination.postedNotes)]; exists {
		return noteError
	}
	return nil
}

func (destination *fakeDestination) CurrentWait() time.Duration {
	return destination.wait
}

type recordingSleeper struct {
	durations []time.Duration
}

func (sleeper *recordingSleeper) Sleep(_ context.Context, duration time.Duration) error {
	sleeper.durations = append(sleeper.durations, duration)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (clock *fixedClock) Now() time.Time {
	return clock.now
}

type recordingObserver struct {
	events []replay.Event
}

func (observer *recordingObserver) Observe(event replay.Event) {
	observer.events = append(observer.events, event)
}

func (observer *recordingObserver) kinds() []replay.EventKind {
	kinds := make([]replay.EventKind, 0, len(observer.events))
	for _, event := range observer.events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

func (observer *recordingObserver) eventsOfKind(kind replay.EventKind) []replay.Event {
	var matching []replay.Event
	for _, event := range observer.events {
		if event.Kind == kind {
			matching = append(matching, event)
		}
	}
	return matching
}

func buildTicket(externalID string, noteCount int) importfile.Ticket {
	notes := make([]importfile.Note, 0, noteCount)
	for noteIndex := 0; noteIndex < noteCount; noteIndex++ {
		notes = append(notes, importfile.Note{
			CreatedAt:    fmt.Sprintf("2019-03-0%dT10:00:00Z", noteIndex%9+1),
			SupportEmail: "agent@example.com",
			BodyHTML:     fmt.Sprintf("<p>note %d</p>", noteIndex+1),
			Private:      noteIndex%2 == 1,
		})
	}
	return importfile.Ticket{ExternalID: importfile.ExternalIdentifier(externalID), Notes: notes}
}
