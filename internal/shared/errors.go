package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Client and channel errors
	ErrClientUnavailable = fmt.Errorf("telegram client unavailable")
	ErrChannelNotFound   = fmt.Errorf("channel not found")
	ErrCreateChannel     = fmt.Errorf("channel creation failed")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// Transfer errors surfaced by the remote side. Client implementations
	// wrap these so policy code can classify without string matching.
	ErrStaleReference   = fmt.Errorf("file reference expired")
	ErrContentProtected = fmt.Errorf("content is protected")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

// RateLimitError reports a server-specified wait before the operation may be retried.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

// ErrorKind is the failure taxonomy consumed by the transfer retry state machine.
type ErrorKind int

const (
	// KindRateLimited means the server specified a wait; sleep exactly that long
	// and retry without spending the attempt budget.
	KindRateLimited ErrorKind = iota
	// KindStaleReference means the remote file handle went stale; retry after a
	// short fixed delay, counted against the attempt budget.
	KindStaleReference
	// KindContentProtected means the source forbids extraction; the item is
	// converted to a descriptive text fallback instead of being retried.
	KindContentProtected
	// KindTransient covers timeouts and generic network failures; retry up to
	// the configured maximum with a fixed delay.
	KindTransient
	// KindUnknown is everything else; the item fails and the loop continues.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindStaleReference:
		return "stale_reference"
	case KindContentProtected:
		return "content_protected"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// protection failures observed as bare strings from remote client libraries
var protectedFragments = []string{"protected chat", "protected content", "cannot use", "noforwards"}

// transient network failures observed as bare strings
var transientFragments = []string{"timeout", "timed out", "network", "connection reset", "temporarily unavailable", "upload failed", "download failed"}

// Classify maps an error onto the retry taxonomy.
//
// Typed errors win over string inspection; string fragments exist because
// remote client libraries surface some failures as opaque text.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return KindRateLimited
	}
	if errors.Is(err, ErrStaleReference) {
		return KindStaleReference
	}
	if errors.Is(err, ErrContentProtected) {
		return KindContentProtected
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "flood wait") {
		return KindRateLimited
	}
	if strings.Contains(msg, "file reference expired") {
		return KindStaleReference
	}
	for _, frag := range protectedFragments {
		if strings.Contains(msg, frag) {
			return KindContentProtected
		}
	}
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return KindTransient
		}
	}

	return KindUnknown
}

// RetryAfter extracts the server-specified wait from a rate limit error, or 0.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
