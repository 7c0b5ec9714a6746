package auth

import "errors"

// Authentication failures. Missing, malformed and unknown keys all map to
// Unauthenticated so a caller cannot probe which keys exist; only a revoked
// key is reported as PermissionDenied.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")

	// ErrUnavailable wraps key lookup failures in the database.
	ErrUnavailable = errors.New("key store unavailable")
)
