package model

import "context"

// EventProvider defines webhook verification and normalization for one VCS
// provider.
type EventProvider interface {
	// Name returns the provider identifier used in canonical events.
	Name() Provider

	// VerifyWebhook validates the raw body against the provider's
	// signature or token scheme. A missing configured secret skips
	// verification.
	VerifyWebhook(body []byte, auth string) error

	// NormalizeEvent maps a provider payload into a canonical event.
	// It returns an error wrapping ErrNotApplicable for event kinds that
	// carry no merge semantics and ErrMalformedPayload when required
	// fields are missing.
	NormalizeEvent(eventKind string, body []byte) (*CanonicalEvent, error)
}

// WorkflowDispatcher delivers canonical events to the downstream workflow
// endpoint.
type WorkflowDispatcher interface {
	Dispatch(ctx context.Context, event *CanonicalEvent) DispatchResult
}

// ProviderConfig carries per-provider verification settings.
type ProviderConfig struct {
	Secret string
}
