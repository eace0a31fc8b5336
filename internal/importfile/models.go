package importfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	externalIdentifierDecodeErrorTemplateConstant = "display_id must be a string or number: %s"
	jsonNullLiteralConstant                       = "null"
)

// ExternalIdentifier is the source platform ticket identifier (FDID).
type ExternalIdentifier string

// UnmarshalJSON accepts both numeric and string identifiers.
func (identifier *ExternalIdentifier) UnmarshalJSON(data []byte) error {
	trimmedData := bytes.TrimSpace(data)
	if string(trimmedData) == jsonNullLiteralConstant {
		*identifier = ""
		return nil
	}

	var textValue string
	if textError := json.Unmarshal(trimmedData, &textValue); textError == nil {
		*identifier = ExternalIdentifier(strings.TrimSpace(textValue))
		return nil
	}

	var numericValue json.Number
	if numericError := json.Unmarshal(trimmedData, &numericValue); numericError != nil {
		return fmt.Errorf(externalIdentifierDecodeErrorTemplateConstant, string(trimmedData))
	}
	*identifier = ExternalIdentifier(numericValue.String())
	return nil
}

// String returns the identifier text.
func (identifier ExternalIdentifier) String() string {
	return string(identifier)
}

// Note is one source comment to be replayed.
type Note struct {
	CreatedAt    string `json:"created_at"`
	SupportEmail string `json:"support_email"`
	BodyHTML     string `json:"body_html"`
	Private      bool   `json:"private"`
}

// Ticket is one exported source ticket with its ordered notes.
type Ticket struct {
	ExternalID ExternalIdentifier `json:"display_id"`
	Notes      []Note             `json:"notes"`
}

type ticketRecord struct {
	HelpdeskTicket Ticket `json:"helpdesk_ticket"`
}
