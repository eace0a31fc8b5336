package replay

import (
	"github.com/temirov/noteport/internal/importfile"
)

// EventKind enumerates the notifications published while a run progresses.
type EventKind string

// Event kinds.
const (
	EventRunPlanned            EventKind = "run_planned"
	EventTicketStarted         EventKind = "ticket_started"
	EventTicketResolved        EventKind = "ticket_resolved"
	EventTicketSkipped         EventKind = "ticket_skipped"
	EventTicketErrored         EventKind = "ticket_errored"
	EventNoteReplayed          EventKind = "note_replayed"
	EventNoteFailed            EventKind = "note_failed"
	EventTicketCompleted       EventKind = "ticket_completed"
	EventProgress              EventKind = "progress"
	EventCancellationRequested EventKind = "cancellation_requested"
	EventRunStopped            EventKind = "run_stopped"
	EventRunHalted             EventKind = "run_halted"
	EventRunSummarized         EventKind = "run_summarized"
)

// Event is one structured notification about the run.
type Event struct {
	Kind          EventKind
	ExternalID    importfile.ExternalIdentifier
	DestinationID int64
	Outcome       TicketOutcome
	NotePosition  int
	NoteCount     int
	StatusCode    int
	Processed     int
	Total         int
	Err           error
	Plan          *RunPlan
	Summary       *RunSummary
}

// EventObserver consumes run events.
type EventObserver interface {
	Observe(event Event)
}

// ObserverGroup fans events out to several observers in order.
type ObserverGroup []EventObserver

// Observe forwards the event to every non-nil member.
func (group ObserverGroup) Observe(event Event) {
	for _, observer := range group {
		if observer == nil {
			continue
		}
		observer.Observe(event)
	}
}

type noopEventObserver struct{}

func (noopEventObserver) Observe(Event) {}

func resolveObserver(observer EventObserver) EventObserver {
	if observer == nil {
		return noopEventObserver{}
	}
	return observer
}
