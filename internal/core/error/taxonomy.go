package errx

import "errors"

// Failure taxonomy for the orchestration engine. Every one of these is
// recovered locally at the component boundary that produced it; none of
// them is fatal to a turn.
var (
	// ErrUnsafeInput marks a message rejected by the safety gate.
	ErrUnsafeInput = errors.New("unsafe input")
	// ErrProviderUnavailable marks an LLM provider error or timeout.
	ErrProviderUnavailable = errors.New("llm provider unavailable")
	// ErrMalformedProviderResponse marks a provider payload that failed
	// schema validation. Treated the same as ErrProviderUnavailable for
	// fallback purposes.
	ErrMalformedProviderResponse = errors.New("malformed provider response")
	// ErrIndexUnavailable marks a catalog index error or timeout.
	ErrIndexUnavailable = errors.New("catalog index unavailable")
	// ErrStoreUnavailable marks a session store backend error or timeout.
	ErrStoreUnavailable = errors.New("session store unavailable")
)
