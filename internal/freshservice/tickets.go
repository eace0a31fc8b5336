package freshservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	ticketFilterPathConstant           = "/tickets/filter"
	ticketConversationsPathTemplate    = "/tickets/%d/conversations"
	ticketActivitiesPathTemplate       = "/tickets/%d/activities"
	ticketNotesPathTemplate            = "/tickets/%d/notes"
	ticketFilterQueryPrefixConstant    = "query="
	ticketFilterQueryTemplateConstant  = "\"%s\""
	ticketFilterClauseFDIDTemplate     = "fdid:%s"
	ticketFilterClauseSeparator        = "%20AND%20"
	ticketFilterClauseTicketTypeFormat = "ticket_type:%%27%s%%27"
	urlEncodedSpaceConstant            = "%20"
	queryEncodedSpaceConstant          = "+"
)

// Ticket is the subset of destination ticket fields the migration needs.
type Ticket struct {
	ID int64 `json:"id"`
}

// TicketFilterResult is the destination reply to a ticket filter query.
type TicketFilterResult struct {
	Tickets []Ticket `json:"tickets"`
	Total   int      `json:"total"`
}

// Conversation is a note or reply already attached to a destination ticket.
type Conversation struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	CreatedAt string `json:"created_at"`
	Private   bool   `json:"private"`
}

// ActivityActor identifies who performed a ticket activity.
type ActivityActor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Activity is one entry of a destination ticket's audit feed.
type Activity struct {
	Actor     ActivityActor `json:"actor"`
	Content   string        `json:"content"`
	CreatedAt string        `json:"created_at"`
}

// NotePayload is the body of a note creation request.
type NotePayload struct {
	Body    string `json:"body"`
	Private bool   `json:"private"`
}

type conversationsEnvelope struct {
	Conversations []Conversation `json:"conversations"`
}

type activitiesEnvelope struct {
	Activities []Activity `json:"activities"`
}

// TicketFilterQuery renders the filter expression locating a ticket by its source identifier.
// An empty ticket type omits the ticket type clause.
func TicketFilterQuery(externalIdentifier string, ticketType string) string {
	expression := fmt.Sprintf(ticketFilterClauseFDIDTemplate, encodeFilterValue(externalIdentifier))
	if len(ticketType) > 0 {
		expression += ticketFilterClauseSeparator + fmt.Sprintf(ticketFilterClauseTicketTypeFormat, encodeFilterValue(ticketType))
	}
	return ticketFilterQueryPrefixConstant + fmt.Sprintf(ticketFilterQueryTemplateConstant, expression)
}

// encodeFilterValue escapes a clause value; spaces become %20 as the filter endpoint expects.
func encodeFilterValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), queryEncodedSpaceConstant, urlEncodedSpaceConstant)
}

// FilterTickets runs a filter query against the destination tickets.
func (client *Client) FilterTickets(executionContext context.Context, rawQuery string) (TicketFilterResult, error) {
	response, executeError := client.Execute(executionContext, Request{
		Method:   http.MethodGet,
		Path:     ticketFilterPathConstant,
		RawQuery: rawQuery,
	})
	if executeError != nil {
		return TicketFilterResult{}, executeError
	}

	var result TicketFilterResult
	if decodeError := json.Unmarshal(response.Body, &result); decodeError != nil {
		return TicketFilterResult{}, ResponseDecodingError{Operation: operationNameFilterTicketsConstant, Cause: decodeError}
	}
	return result, nil
}

// ListConversations returns the conversations attached to a destination ticket.
func (client *Client) ListConversations(executionContext context.Context, ticketIdentifier int64) ([]Conversation, error) {
	if ticketIdentifier <= 0 {
		return nil, InvalidInputError{FieldName: invalidInputFieldTicketIdentifierConstant, Message: invalidInputMessagePositiveRequiredConstant}
	}

	response, executeError := client.Execute(executionContext, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(ticketConversationsPathTemplate, ticketIdentifier),
	})
	if executeError != nil {
		return nil, executeError
	}

	var envelope conversationsEnvelope
	if decodeError := json.Unmarshal(response.Body, &envelope); decodeError != nil {
		return nil, ResponseDecodingError{Operation: operationNameListConversationsConstant, Cause: decodeError}
	}
	return envelope.Conversations, nil
}

// ListActivities returns the audit feed of a destination ticket.
func (client *Client) ListActivities(executionContext context.Context, ticketIdentifier int64) ([]Activity, error) {
	if ticketIdentifier <= 0 {
		return nil, InvalidInputError{FieldName: invalidInputFieldTicketIdentifierConstant, Message: invalidInputMessagePositiveRequiredConstant}
	}

	response, executeError := client.Execute(executionContext, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(ticketActivitiesPathTemplate, ticketIdentifier),
	})
	if executeError != nil {
		return nil, executeError
	}

	var envelope activitiesEnvelope
	if decodeError := json.Unmarshal(response.Body, &envelope); decodeError != nil {
		return nil, ResponseDecodingError{Operation: operationNameListActivitiesConstant, Cause: decodeError}
	}
	return envelope.Activities, nil
}

// CreateNote attaches a note to a destination ticket.
func (client *Client) CreateNote(executionContext context.Context, ticketIdentifier int64, payload NotePayload) error {
	if ticketIdentifier <= 0 {
		return InvalidInputError{FieldName: invalidInputFieldTicketIdentifierConstant, Message: invalidInputMessagePositiveRequiredConstant}
	}

	_, executeError := client.Execute(executionContext, Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf(ticketNotesPathTemplate, ticketIdentifier),
		Payload: payload,
	})
	if executeError != nil {
		return executeError
	}
	return nil
}
