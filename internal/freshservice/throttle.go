package freshservice

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// RateLimitRemainingHeaderConstant names the response header carrying the remaining call quota.
	RateLimitRemainingHeaderConstant = "X-Ratelimit-Remaining"

	// RateLimitLowWaterMarkConstant is the remaining quota at or below which pacing slows down.
	RateLimitLowWaterMarkConstant = 40

	// RateLimitPressureWaitConstant is the minimum wait applied while the quota is low.
	RateLimitPressureWaitConstant = time.Second
)

// ThrottleState tracks the adaptive wait applied between destination calls.
type ThrottleState struct {
	baseline time.Duration
	current  time.Duration
}

// NewThrottleState starts a throttle at the configured baseline wait.
func NewThrottleState(baseline time.Duration) ThrottleState {
	if baseline < 0 {
		baseline = 0
	}
	return ThrottleState{baseline: baseline, current: baseline}
}

// Current returns the wait to apply after the next call.
func (state ThrottleState) Current() time.Duration {
	return state.current
}

// Observe updates the wait from the remaining quota reported by the destination.
func (state *ThrottleState) Observe(remainingCalls int) {
	if remainingCalls <= RateLimitLowWaterMarkConstant {
		state.current = max(state.baseline, RateLimitPressureWaitConstant)
		return
	}
	state.current = state.baseline
}

// RemainingCalls reads the remaining quota header; a missing or malformed header counts as zero.
func RemainingCalls(header http.Header) int {
	if header == nil {
		return 0
	}
	rawValue := strings.TrimSpace(header.Get(RateLimitRemainingHeaderConstant))
	if len(rawValue) == 0 {
		return 0
	}
	parsedValue, parseError := strconv.Atoi(rawValue)
	if parseError != nil {
		return 0
	}
	return parsedValue
}
