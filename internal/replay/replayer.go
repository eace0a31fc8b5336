package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
)

const (
	// OversizedNoteThresholdConstant is the note count at which a ticket needs big comment support.
	OversizedNoteThresholdConstant = 50
	noteLineBreakConstant          = " <br>"
	noteParagraphBreakConstant     = " <br> <br>"
	noteEmailPlaceholderConstant   = "none"
	logMessageArchiveFailedConst   = "Failed note payload could not be archived"
	logFieldArchiveDestination     = "fsid"
	logFieldArchiveExternal        = "fdid"
)

// NoteCreator posts notes and exposes the adaptive wait to honour afterwards.
type NoteCreator interface {
	CreateNote(executionContext context.Context, ticketIdentifier int64, payload freshservice.NotePayload) error
	CurrentWait() time.Duration
}

// FailedPayloadArchive keeps payloads of notes that could not be posted.
type FailedPayloadArchive interface {
	Archive(failure NoteReplayError, payload freshservice.NotePayload) error
}

// CommentReplayerDependencies lists the collaborators of a CommentReplayer.
type CommentReplayerDependencies struct {
	Creator  NoteCreator
	Sleeper  freshservice.Sleeper
	Observer EventObserver
	Archive  FailedPayloadArchive
	Logger   *zap.Logger
}

// CommentReplayer posts a ticket's notes to its destination ticket in order.
type CommentReplayer struct {
	creator  NoteCreator
	sleeper  freshservice.Sleeper
	observer EventObserver
	archive  FailedPayloadArchive
	logger   *zap.Logger
}

// NewCommentReplayer builds a replayer.
func NewCommentReplayer(dependencies CommentReplayerDependencies) *CommentReplayer {
	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = freshservice.ContextSleeper
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentReplayer{
		creator:  dependencies.Creator,
		sleeper:  sleeper,
		observer: resolveObserver(dependencies.Observer),
		archive:  dependencies.Archive,
		logger:   logger,
	}
}

// IsOversized reports whether a note count requires big comment support.
func IsOversized(noteCount int, options ReplayOptions) bool {
	return !options.BigCommentSupport && noteCount >= OversizedNoteThresholdConstant
}

// FormatNoteBody renders the destination body of a replayed note.
func FormatNoteBody(note importfile.Note) string {
	var bodyBuilder strings.Builder
	bodyBuilder.WriteString(note.CreatedAt)
	trimmedEmail := strings.TrimSpace(note.SupportEmail)
	if len(trimmedEmail) > 0 && !strings.EqualFold(trimmedEmail, noteEmailPlaceholderConstant) {
		bodyBuilder.WriteString(noteLineBreakConstant)
		bodyBuilder.WriteString(note.SupportEmail)
	}
	bodyBuilder.WriteString(noteParagraphBreakConstant)
	bodyBuilder.WriteString(note.BodyHTML)
	return bodyBuilder.String()
}

// Replay posts every note of the ticket; a failed note is recorded and the next one is attempted.
// Fatal client errors stop the replay and are returned.
func (replayer *CommentReplayer) Replay(executionContext context.Context, ticket importfile.Ticket, destinationID int64, options ReplayOptions) (ReplayResult, error) {
	if IsOversized(len(ticket.Notes), options) {
		return ReplayResult{Oversized: true}, nil
	}

	result := ReplayResult{}
	for noteIndex, note := range ticket.Notes {
		notePosition := noteIndex + 1
		payload := freshservice.NotePayload{Body: FormatNoteBody(note), Private: note.Private}

		result.Attempted++
		createError := replayer.creator.CreateNote(executionContext, destinationID, payload)
		if createError != nil && freshservice.IsFatal(createError) {
			return result, createError
		}

		if createError != nil {
			failure := NoteReplayError{
				ExternalID:    ticket.ExternalID,
				DestinationID: destinationID,
				NotePosition:  notePosition,
				StatusCode:    freshservice.StatusCode(createError),
				Cause:         createError,
			}
			result.Failures = append(result.Failures, failure)
			replayer.archiveFailure(failure, payload)
			replayer.observer.Observe(Event{
				Kind:          EventNoteFailed,
				ExternalID:    ticket.ExternalID,
				DestinationID: destinationID,
				NotePosition:  notePosition,
				NoteCount:     len(ticket.Notes),
				StatusCode:    failure.StatusCode,
				Err:           failure,
			})
		} else {
			result.Succeeded++
			replayer.observer.Observe(Event{
				Kind:          EventNoteReplayed,
				ExternalID:    ticket.ExternalID,
				DestinationID: destinationID,
				NotePosition:  notePosition,
				NoteCount:     len(ticket.Notes),
			})
		}

		if sleepError := replayer.sleeper(executionContext, replayer.creator.CurrentWait()); sleepError != nil {
			return result, fmt.Errorf(pacingInterruptedTemplateConstant, sleepError)
		}
	}

	return result, nil
}

func (replayer *CommentReplayer) archiveFailure(failure NoteReplayError, payload freshservice.NotePayload) {
	if replayer.archive == nil {
		return
	}
	if archiveError := replayer.archive.Archive(failure, payload); archiveError != nil {
		replayer.logger.Warn(
			logMessageArchiveFailedConst,
			zap.String(logFieldArchiveExternal, failure.ExternalID.String()),
			zap.Int64(logFieldArchiveDestination, failure.DestinationID),
			zap.Error(archiveError),
		)
	}
}
