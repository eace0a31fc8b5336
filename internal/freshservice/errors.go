package freshservice

import (
	"errors"
	"fmt"
	"strings"
)

const (
	fatalAuthErrorTemplateConstant              = "%s %s rejected with status 401: API key is not valid"
	fatalPermissionErrorTemplateConstant        = "%s %s rejected with status 403: API user is locked or lacks permission"
	fatalRateLimitErrorTemplateConstant         = "%s %s rejected with status 429: API rate limit exceeded"
	transientNetworkErrorTemplateConstant       = "%s %s failed after %d attempt(s): %v"
	requestErrorTemplateConstant                = "%s %s returned status %d"
	requestErrorWithBodyTemplateConstant        = "%s %s returned status %d: %s"
	responseDecodingErrorTemplateConstant       = "%s response decoding failed: %v"
	invalidInputErrorTemplateConstant           = "%s: %s"
	requestErrorBodyPreviewLimitConstant        = 512
	requestErrorBodyPreviewEllipsisConstant     = "..."
	authRemediationMessageConstant              = "It looks like the API key you provided has a problem.\nFollow these instructions to make sure you are getting the correct API key:\nhttps://support.freshservice.com/en/support/solutions/articles/50000000306-where-do-i-find-my-api-key-\nOnce you have the correct API key, update the API_KEY value in the .env file or the configured api key source."
	permissionRemediationMessageConstant        = "It looks like Freshservice rejected the request and the API user may be locked.\nPlease check in Freshservice that the agent your API key belongs to is active and not locked."
	rateLimitRemediationMessageConstant         = "It looks like you exceeded the API rate limit.\nWait for the limit window to reset, check that the API user is not locked, and try again with a larger --time-wait."
	fatalErrorKindAuthenticationValueConstant   = "authentication"
	fatalErrorKindPermissionValueConstant       = "permission"
	fatalErrorKindRateLimitValueConstant        = "rate_limit"
	fatalErrorKindUnknownValueConstant          = "unknown"
	operationNameFilterTicketsConstant          = OperationName("FilterTickets")
	operationNameListConversationsConstant      = OperationName("ListConversations")
	operationNameListActivitiesConstant         = OperationName("ListActivities")
	invalidInputFieldBaseURLConstant            = "base_url"
	invalidInputFieldAPIKeyConstant             = "api_key"
	invalidInputFieldTicketIdentifierConstant   = "ticket_id"
	invalidInputMessageRequiredConstant         = "value required"
	invalidInputMessagePositiveRequiredConstant = "must be positive"
)

// OperationName identifies a destination API workflow supported by the client.
type OperationName string

// FatalError marks failures that must halt the whole run.
type FatalError interface {
	error
	Remediation() string
	Kind() string
}

// FatalAuthError reports a rejected API key (HTTP 401).
type FatalAuthError struct {
	Method string
	URL    string
}

// Error describes the authentication failure.
func (authError FatalAuthError) Error() string {
	return fmt.Sprintf(fatalAuthErrorTemplateConstant, authError.Method, authError.URL)
}

// Remediation explains how to recover from the failure.
func (authError FatalAuthError) Remediation() string {
	return authRemediationMessageConstant
}

// Kind returns the fatal error category.
func (authError FatalAuthError) Kind() string {
	return fatalErrorKindAuthenticationValueConstant
}

// FatalPermissionError reports a locked or unauthorized API user (HTTP 403).
type FatalPermissionError struct {
	Method string
	URL    string
}

// Error describes the permission failure.
func (permissionError FatalPermissionError) Error() string {
	return fmt.Sprintf(fatalPermissionErrorTemplateConstant, permissionError.Method, permissionError.URL)
}

// Remediation explains how to recover from the failure.
func (permissionError FatalPermissionError) Remediation() string {
	return permissionRemediationMessageConstant
}

// Kind returns the fatal error category.
func (permissionError FatalPermissionError) Kind() string {
	return fatalErrorKindPermissionValueConstant
}

// FatalRateLimitError reports an exhausted API quota (HTTP 429).
type FatalRateLimitError struct {
	Method string
	URL    string
}

// Error describes the rate limit failure.
func (rateLimitError FatalRateLimitError) Error() string {
	return fmt.Sprintf(fatalRateLimitErrorTemplateConstant, rateLimitError.Method, rateLimitError.URL)
}

// Remediation explains how to recover from the failure.
func (rateLimitError FatalRateLimitError) Remediation() string {
	return rateLimitRemediationMessageConstant
}

// Kind returns the fatal error category.
func (rateLimitError FatalRateLimitError) Kind() string {
	return fatalErrorKindRateLimitValueConstant
}

// IsFatal reports whether the error chain contains a FatalError.
func IsFatal(candidate error) bool {
	var fatalError FatalError
	return errors.As(candidate, &fatalError)
}

// FatalKind returns the category of the first FatalError in the chain.
func FatalKind(candidate error) string {
	var fatalError FatalError
	if errors.As(candidate, &fatalError) {
		return fatalError.Kind()
	}
	return fatalErrorKindUnknownValueConstant
}

// TransientNetworkError reports a transport failure that survived the retry budget.
type TransientNetworkError struct {
	Method   string
	URL      string
	Attempts int
	Timeout  bool
	Cause    error
}

// Error describes the network failure.
func (networkError TransientNetworkError) Error() string {
	return fmt.Sprintf(transientNetworkErrorTemplateConstant, networkError.Method, networkError.URL, networkError.Attempts, networkError.Cause)
}

// Unwrap exposes the transport error.
func (networkError TransientNetworkError) Unwrap() error {
	return networkError.Cause
}

// RequestError reports a non-fatal, non-success HTTP status.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error describes the rejected request.
func (requestError RequestError) Error() string {
	trimmedBody := strings.TrimSpace(requestError.Body)
	if len(trimmedBody) == 0 {
		return fmt.Sprintf(requestErrorTemplateConstant, requestError.Method, requestError.URL, requestError.StatusCode)
	}
	if len(trimmedBody) > requestErrorBodyPreviewLimitConstant {
		trimmedBody = trimmedBody[:requestErrorBodyPreviewLimitConstant] + requestErrorBodyPreviewEllipsisConstant
	}
	return fmt.Sprintf(requestErrorWithBodyTemplateConstant, requestError.Method, requestError.URL, requestError.StatusCode, trimmedBody)
}

// StatusCode extracts the HTTP status carried by a RequestError, or zero when none is present.
func StatusCode(candidate error) int {
	var requestError RequestError
	if errors.As(candidate, &requestError) {
		return requestError.StatusCode
	}
	return 0
}

// ResponseDecodingError wraps JSON decoding failures for API responses.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// InvalidInputError describes invalid arguments passed to client operations.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}
