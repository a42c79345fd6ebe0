package ceremony

import "errors"

// Ceremony outcomes. A user dismissing the prompt is not a technical failure:
// it must not be retried automatically.
var (
	// ErrCeremonyCancelled means the user dismissed the ceremony or the caller
	// cancelled it. Non-retryable.
	ErrCeremonyCancelled = errors.New("ceremony cancelled")

	// ErrCeremonyTimeout means the authenticator did not answer within the
	// ceremony timeout. Retryable.
	ErrCeremonyTimeout = errors.New("ceremony timed out")

	// ErrCeremonyFailed wraps any other technical failure. Retryable.
	ErrCeremonyFailed = errors.New("ceremony failed")

	// ErrNotVerified is returned when a response fails verification
	// (signature, challenge, origin or counter).
	ErrNotVerified = errors.New("ceremony response not verified")

	// ErrInvalidPRFOutput is returned by NormalizePRFOutput.
	ErrInvalidPRFOutput = errors.New("invalid prf output")

	// ErrPRFUnsupported is returned when the authenticator produced no PRF
	// output, so no wrapping key can be derived.
	ErrPRFUnsupported = errors.New("authenticator does not support prf")

	// ErrUnknownCredential is returned when none of the allowed credentials
	// is available on the authenticator.
	ErrUnknownCredential = errors.New("no matching credential on this authenticator")
)

// IsRetryable reports whether a ceremony error may succeed on a fresh attempt.
// Cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrCeremonyCancelled) {
		return false
	}
	return errors.Is(err, ErrCeremonyTimeout) || errors.Is(err, ErrCeremonyFailed)
}
