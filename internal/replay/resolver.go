package replay

import (
	"context"

	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
)

// DefaultTicketTypeFilterConstant restricts resolution to the ticket types migrated from the source.
const DefaultTicketTypeFilterConstant = "Incident or Problem"

// TicketFilterer runs filter queries against destination tickets.
type TicketFilterer interface {
	FilterTickets(executionContext context.Context, rawQuery string) (freshservice.TicketFilterResult, error)
}

// TicketResolver maps source ticket identifiers to destination tickets.
type TicketResolver struct {
	filterer   TicketFilterer
	ticketType string
}

// NewTicketResolver builds a resolver; an empty ticket type disables the type clause.
func NewTicketResolver(filterer TicketFilterer, ticketType string) *TicketResolver {
	return &TicketResolver{filterer: filterer, ticketType: ticketType}
}

// Resolve finds the one destination ticket carrying the source identifier.
func (resolver *TicketResolver) Resolve(executionContext context.Context, externalID importfile.ExternalIdentifier) (ResolvedTicket, error) {
	filterResult, filterError := resolver.filterer.FilterTickets(executionContext, freshservice.TicketFilterQuery(externalID.String(), resolver.ticketType))
	if filterError != nil {
		return ResolvedTicket{}, filterError
	}

	switch {
	case filterResult.Total == 0:
		return ResolvedTicket{}, NotFoundError{ExternalID: externalID}
	case filterResult.Total > 1:
		return ResolvedTicket{}, AmbiguousMatchError{ExternalID: externalID, MatchCount: filterResult.Total}
	case len(filterResult.Tickets) == 0:
		return ResolvedTicket{}, MalformedFilterResultError{ExternalID: externalID}
	}

	return ResolvedTicket{ExternalID: externalID, DestinationID: filterResult.Tickets[0].ID}, nil
}
