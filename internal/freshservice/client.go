package freshservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	authorizationHeaderNameConstant      = "Authorization"
	contentTypeHeaderNameConstant        = "Content-Type"
	contentTypeJSONConstant              = "application/json"
	basicAuthorizationPrefixConstant     = "Basic "
	basicAuthorizationPasswordConstant   = ":X"
	baseURLTrailingSeparatorConstant     = "/"
	queryStringSeparatorConstant         = "?"
	defaultRetryLimitConstant            = 2
	defaultRetryDelayConstant            = 2 * time.Second
	payloadEncodingErrorTemplateConstant = "%s %s payload encoding failed: %w"
	requestCreationErrorTemplateConstant = "%s %s request creation failed: %w"
	responseReadErrorTemplateConstant    = "%s %s response read failed: %w"
	retryWaitInterruptedTemplateConstant = "%s %s retry wait interrupted: %w"
	logMessageRequestCompletedConstant   = "Destination request completed"
	logMessageRequestTimedOutConstant    = "Destination request timed out, retrying"
	logMessageRequestRejectedConstant    = "Destination request rejected"
	logMessageThrottleAdjustedConstant   = "Adaptive wait adjusted"
	logFieldMethodConstant               = "method"
	logFieldURLConstant                  = "url"
	logFieldStatusCodeConstant           = "status_code"
	logFieldLatencyConstant              = "latency"
	logFieldAttemptConstant              = "attempt"
	logFieldRemainingCallsConstant       = "remaining_calls"
	logFieldCurrentWaitConstant          = "current_wait"
	logFieldPreviousWaitConstant         = "previous_wait"
	successStatusLowerBoundConstant      = 200
	successStatusUpperBoundConstant      = 299
)

// DefaultRequestTimeoutConstant bounds a single HTTP attempt when no timeout is configured.
const DefaultRequestTimeoutConstant = 30 * time.Second

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Sleeper blocks for the requested duration or until the context ends.
type Sleeper func(sleepContext context.Context, duration time.Duration) error

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// CallRecorder receives the latency of every completed destination exchange.
type CallRecorder interface {
	RecordAPICall(latency time.Duration)
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ContextSleeper waits for the duration unless the context is done first.
func ContextSleeper(sleepContext context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-sleepContext.Done():
		return sleepContext.Err()
	case <-timer.C:
		return nil
	}
}

// ClientConfiguration captures connection settings for the destination API.
type ClientConfiguration struct {
	BaseURL        string
	APIKey         string
	BaselineWait   time.Duration
	RequestTimeout time.Duration
	RetryLimit     int
	RetryDelay     time.Duration
}

// ClientDependencies lists collaborators that can be substituted in tests.
type ClientDependencies struct {
	HTTPClient   HTTPDoer
	Sleeper      Sleeper
	Clock        Clock
	CallRecorder CallRecorder
	Logger       *zap.Logger
}

// Request describes one destination API call relative to the base URL.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Payload  any
}

// Response carries a successful destination reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Latency    time.Duration
}

// Client performs authenticated, throttled calls against the destination API.
type Client struct {
	baseURL             string
	authorizationHeader string
	requestTimeout      time.Duration
	retryLimit          int
	retryDelay          time.Duration
	httpClient          HTTPDoer
	sleeper             Sleeper
	clock               Clock
	callRecorder        CallRecorder
	logger              *zap.Logger
	throttle            ThrottleState
}

// NewClient validates configuration and assembles a Client.
func NewClient(configuration ClientConfiguration, dependencies ClientDependencies) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(configuration.BaseURL), baseURLTrailingSeparatorConstant)
	if len(trimmedBaseURL) == 0 {
		return nil, InvalidInputError{FieldName: invalidInputFieldBaseURLConstant, Message: invalidInputMessageRequiredConstant}
	}

	trimmedAPIKey := strings.TrimSpace(configuration.APIKey)
	if len(trimmedAPIKey) == 0 {
		return nil, InvalidInputError{FieldName: invalidInputFieldAPIKeyConstant, Message: invalidInputMessageRequiredConstant}
	}

	requestTimeout := configuration.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeoutConstant
	}

	retryLimit := configuration.RetryLimit
	if retryLimit <= 0 {
		retryLimit = defaultRetryLimitConstant
	}

	retryDelay := configuration.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelayConstant
	}

	httpClient := dependencies.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = ContextSleeper
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:             trimmedBaseURL,
		authorizationHeader: BasicAuthorization(trimmedAPIKey),
		requestTimeout:      requestTimeout,
		retryLimit:          retryLimit,
		retryDelay:          retryDelay,
		httpClient:          httpClient,
		sleeper:             sleeper,
		clock:               clock,
		callRecorder:        dependencies.CallRecorder,
		logger:              logger,
		throttle:            NewThrottleState(configuration.BaselineWait),
	}, nil
}

// BasicAuthorization builds the Authorization header value for an API key.
func BasicAuthorization(apiKey string) string {
	encodedCredentials := base64.StdEncoding.EncodeToString([]byte(apiKey + basicAuthorizationPasswordConstant))
	return basicAuthorizationPrefixConstant + encodedCredentials
}

// CurrentWait returns the adaptive pause to apply after a call.
func (client *Client) CurrentWait() time.Duration {
	return client.throttle.Current()
}

// Execute sends the request, retrying timeouts within the retry budget.
func (client *Client) Execute(executionContext context.Context, request Request) (Response, error) {
	requestURL := client.buildURL(request)

	var encodedPayload []byte
	if request.Payload != nil {
		marshaledPayload, marshalError := json.Marshal(request.Payload)
		if marshalError != nil {
			return Response{}, fmt.Errorf(payloadEncodingErrorTemplateConstant, request.Method, requestURL, marshalError)
		}
		encodedPayload = marshaledPayload
	}

	maximumAttempts := client.retryLimit + 1
	for attemptNumber := 1; ; attemptNumber++ {
		response, attemptError := client.performAttempt(executionContext, request.Method, requestURL, encodedPayload)
		if attemptError == nil {
			return client.handleResponse(request.Method, requestURL, response)
		}

		if contextError := executionContext.Err(); contextError != nil {
			return Response{}, contextError
		}

		var preparationError requestPreparationError
		if errors.As(attemptError, &preparationError) {
			return Response{}, preparationError.cause
		}

		timedOut := isTimeoutError(attemptError)
		if !timedOut || attemptNumber >= maximumAttempts {
			return Response{}, TransientNetworkError{
				Method:   request.Method,
				URL:      requestURL,
				Attempts: attemptNumber,
				Timeout:  timedOut,
				Cause:    attemptError,
			}
		}

		client.logger.Warn(
			logMessageRequestTimedOutConstant,
			zap.String(logFieldMethodConstant, request.Method),
			zap.String(logFieldURLConstant, requestURL),
			zap.Int(logFieldAttemptConstant, attemptNumber),
			zap.Error(attemptError),
		)

		if sleepError := client.sleeper(executionContext, client.retryDelay); sleepError != nil {
			return Response{}, fmt.Errorf(retryWaitInterruptedTemplateConstant, request.Method, requestURL, sleepError)
		}
	}
}

type requestPreparationError struct {
	cause error
}

func (preparationError requestPreparationError) Error() string {
	return preparationError.cause.Error()
}

func (client *Client) performAttempt(executionContext context.Context, method string, requestURL string, encodedPayload []byte) (Response, error) {
	attemptContext, cancelAttempt := context.WithTimeout(executionContext, client.requestTimeout)
	defer cancelAttempt()

	var bodyReader io.Reader
	if encodedPayload != nil {
		bodyReader = bytes.NewReader(encodedPayload)
	}

	httpRequest, creationError := http.NewRequestWithContext(attemptContext, method, requestURL, bodyReader)
	if creationError != nil {
		return Response{}, requestPreparationError{cause: fmt.Errorf(requestCreationErrorTemplateConstant, method, requestURL, creationError)}
	}
	httpRequest.Header.Set(authorizationHeaderNameConstant, client.authorizationHeader)
	httpRequest.Header.Set(contentTypeHeaderNameConstant, contentTypeJSONConstant)

	startedAt := client.clock.Now()
	httpResponse, transportError := client.httpClient.Do(httpRequest)
	if transportError != nil {
		return Response{}, transportError
	}
	defer httpResponse.Body.Close()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		if isTimeoutError(readError) {
			return Response{}, readError
		}
		return Response{}, fmt.Errorf(responseReadErrorTemplateConstant, method, requestURL, readError)
	}
	latency := client.clock.Now().Sub(startedAt)

	if client.callRecorder != nil {
		client.callRecorder.RecordAPICall(latency)
	}

	client.logger.Debug(
		logMessageRequestCompletedConstant,
		zap.String(logFieldMethodConstant, method),
		zap.String(logFieldURLConstant, requestURL),
		zap.Int(logFieldStatusCodeConstant, httpResponse.StatusCode),
		zap.Duration(logFieldLatencyConstant, latency),
	)

	return Response{
		StatusCode: httpResponse.StatusCode,
		Header:     httpResponse.Header,
		Body:       responseBody,
		Latency:    latency,
	}, nil
}

func (client *Client) handleResponse(method string, requestURL string, response Response) (Response, error) {
	switch response.StatusCode {
	case http.StatusUnauthorized:
		return Response{}, client.rejected(response, FatalAuthError{Method: method, URL: requestURL})
	case http.StatusForbidden:
		return Response{}, client.rejected(response, FatalPermissionError{Method: method, URL: requestURL})
	case http.StatusTooManyRequests:
		return Response{}, client.rejected(response, FatalRateLimitError{Method: method, URL: requestURL})
	}

	if response.StatusCode < successStatusLowerBoundConstant || response.StatusCode > successStatusUpperBoundConstant {
		return Response{}, client.rejected(response, RequestError{
			Method:     method,
			URL:        requestURL,
			StatusCode: response.StatusCode,
			Body:       string(response.Body),
		})
	}

	client.observeRateLimit(response.Header)
	return response, nil
}

func (client *Client) rejected(response Response, rejection error) error {
	client.logger.Debug(
		logMessageRequestRejectedConstant,
		zap.Int(logFieldStatusCodeConstant, response.StatusCode),
		zap.Error(rejection),
	)
	return rejection
}

func (client *Client) observeRateLimit(header http.Header) {
	previousWait := client.throttle.Current()
	remainingCalls := RemainingCalls(header)
	client.throttle.Observe(remainingCalls)
	if client.throttle.Current() != previousWait {
		client.logger.Info(
			logMessageThrottleAdjustedConstant,
			zap.Int(logFieldRemainingCallsConstant, remainingCalls),
			zap.Duration(logFieldPreviousWaitConstant, previousWait),
			zap.Duration(logFieldCurrentWaitConstant, client.throttle.Current()),
		)
	}
}

func (client *Client) buildURL(request Request) string {
	path := request.Path
	if !strings.HasPrefix(path, baseURLTrailingSeparatorConstant) {
		path = baseURLTrailingSeparatorConstant + path
	}
	requestURL := client.baseURL + path
	if len(request.RawQuery) > 0 {
		requestURL += queryStringSeparatorConstant + request.RawQuery
	}
	return requestURL
}

func isTimeoutError(candidate error) bool {
	if errors.Is(candidate, context.DeadlineExceeded) {
		return true
	}
	var networkError net.Error
	return errors.As(candidate, &networkError) && networkError.Timeout()
}
