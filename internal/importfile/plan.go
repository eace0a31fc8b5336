package importfile

import "time"

// SecondsPerNoteEstimateConstant is the pacing assumed when estimating run time.
const SecondsPerNoteEstimateConstant = time.Second

// Truncate keeps the first limit tickets; a non-positive limit keeps all of them.
func Truncate(tickets []Ticket, limit int) []Ticket {
	if limit <= 0 || limit >= len(tickets) {
		return tickets
	}
	return tickets[:limit]
}

// CountNotes totals the notes across tickets.
func CountNotes(tickets []Ticket) int {
	noteCount := 0
	for _, ticket := range tickets {
		noteCount += len(ticket.Notes)
	}
	return noteCount
}

// EstimateRunTime approximates how long replaying the tickets takes.
func EstimateRunTime(tickets []Ticket) time.Duration {
	return time.Duration(CountNotes(tickets)) * SecondsPerNoteEstimateConstant
}
