package model

import "github.com/maxbolgarin/errm"

// Pipeline error taxonomy. Providers and the pipeline wrap these sentinels
// so the HTTP layer can map them to response codes with errm.Is.
var (
	// ErrVerificationFailed means the signature or token did not match the
	// configured secret. The inbound request is rejected as unauthorized.
	ErrVerificationFailed = errm.New("webhook verification failed")

	// ErrNotApplicable means the event kind is recognized but does not
	// represent a merge or a push to a monitored branch. Treated as success.
	ErrNotApplicable = errm.New("event not applicable")

	// ErrMalformedPayload means an applicable event kind misses required
	// fields or cannot be decoded.
	ErrMalformedPayload = errm.New("malformed payload")
)
