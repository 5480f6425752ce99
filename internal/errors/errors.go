package errors

import "errors"

// Failure taxonomy of the dispatch pipeline. Every backend and broker call
// site wraps one of these sentinels so handlers can map outcomes to HTTP
// classes with errors.Is instead of string matching.
var (
	// ErrBackendUnavailable means the key-value store could not be reached.
	ErrBackendUnavailable = errors.New("backend store unavailable")
	// ErrBrokerUnreachable means the broker connection or channel is gone.
	ErrBrokerUnreachable = errors.New("broker unreachable")
	// ErrPublishRejected means the broker negatively acknowledged or returned
	// the message (unroutable under mandatory publishing).
	ErrPublishRejected = errors.New("publish rejected by broker")
	// ErrSerialization means the wire message could not be encoded. Should be
	// unreachable given a well-formed composer, but is handled, not panicked.
	ErrSerialization = errors.New("message serialization failed")
	// ErrUserLookup / ErrTemplateLookup are enrichment failures from the
	// downstream lookup services.
	ErrUserLookup     = errors.New("user lookup failed")
	ErrTemplateLookup = errors.New("template lookup failed")
)

func IsBackendUnavailable(err error) bool { return errors.Is(err, ErrBackendUnavailable) }

func IsPublishFailure(err error) bool {
	return errors.Is(err, ErrBrokerUnreachable) || errors.Is(err, ErrPublishRejected)
}
