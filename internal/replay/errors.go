package replay

import (
	"fmt"

	"github.com/temirov/noteport/internal/importfile"
)

const (
	notFoundErrorTemplateConstant            = "FDID: %s not found in Fresh Service"
	ambiguousMatchErrorTemplateConstant      = "Multiple Fresh Service duplicate tickets for FDID: %s"
	malformedFilterResultTemplateConstant    = "FDID: %s filter reported a match without ticket data"
	noteReplayErrorTemplateConstant          = "failed to post note %d for FDID %s, FSID %d: %v"
	noteReplayErrorWithStatusTemplate        = "failed to post note %d for FDID %s, FSID %d (status %d): %v"
	resolutionFailureTemplateConstant        = "unable to resolve FDID %s: %w"
	eligibilityFailureTemplateConstant       = "unable to check eligibility of FDID %s, FSID %d: %w"
	conversationListFailureTemplateConstant  = "unable to list conversations: %w"
	activityListFailureTemplateConstant      = "unable to list activities: %w"
	pacingInterruptedTemplateConstant        = "pacing wait interrupted: %w"
	summaryFileWriteErrorTemplateConstant    = "unable to write run summary %s: %w"
	summaryFileEncodeErrorTemplateConstant   = "unable to encode run summary: %w"
	payloadArchiveWriteErrorTemplateConstant = "unable to archive failed payload %s: %w"
)

// NotFoundError reports a source ticket without a destination match.
type NotFoundError struct {
	ExternalID importfile.ExternalIdentifier
}

// Error describes the missing match.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.ExternalID)
}

// AmbiguousMatchError reports a source ticket matching several destination tickets.
type AmbiguousMatchError struct {
	ExternalID importfile.ExternalIdentifier
	MatchCount int
}

// Error describes the duplicate matches.
func (ambiguousError AmbiguousMatchError) Error() string {
	return fmt.Sprintf(ambiguousMatchErrorTemplateConstant, ambiguousError.ExternalID)
}

// MalformedFilterResultError reports a single match whose ticket list is empty.
type MalformedFilterResultError struct {
	ExternalID importfile.ExternalIdentifier
}

// Error describes the malformed reply.
func (malformedError MalformedFilterResultError) Error() string {
	return fmt.Sprintf(malformedFilterResultTemplateConstant, malformedError.ExternalID)
}

// NoteReplayError reports one note that could not be posted.
type NoteReplayError struct {
	ExternalID    importfile.ExternalIdentifier
	DestinationID int64
	NotePosition  int
	StatusCode    int
	Cause         error
}

// Error describes the failed note.
func (noteError NoteReplayError) Error() string {
	if noteError.StatusCode == 0 {
		return fmt.Sprintf(noteReplayErrorTemplateConstant, noteError.NotePosition, noteError.ExternalID, noteError.DestinationID, noteError.Cause)
	}
	return fmt.Sprintf(noteReplayErrorWithStatusTemplate, noteError.NotePosition, noteError.ExternalID, noteError.DestinationID, noteError.StatusCode, noteError.Cause)
}

// Unwrap exposes the client error.
func (noteError NoteReplayError) Unwrap() error {
	return noteError.Cause
}
