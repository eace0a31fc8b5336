// Package freshservice talks to the Freshservice v2 REST API on behalf of the
// note migration.
//
// Client authenticates every call with the API key, retries timeouts a bounded
// number of times, turns 401/403/429 replies into fatal errors and tracks the
// X-Ratelimit-Remaining header so callers can pace themselves through
// CurrentWait.
package freshservice
