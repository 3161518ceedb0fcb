package remote

import "errors"

// Domain-specific errors for TV operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnreachable is returned when the TV cannot be reached on the
	// network. A powered-off Viera drops its HTTP listener entirely, so
	// connection refused and timeouts both resolve to this error.
	ErrUnreachable = errors.New("remote: tv unreachable")

	// ErrSOAPFault is returned when the TV answers with a SOAP fault.
	ErrSOAPFault = errors.New("remote: soap fault")

	// ErrEncryptionRequired is returned for command operations against a
	// TV that requires the encrypted pairing protocol.
	ErrEncryptionRequired = errors.New("remote: encryption required")

	// ErrInvalidVolume is returned when a volume outside 0-100 is requested.
	ErrInvalidVolume = errors.New("remote: volume out of range (must be 0-100)")

	// ErrUnexpectedResponse is returned when the TV's response cannot be parsed.
	ErrUnexpectedResponse = errors.New("remote: unexpected response")
)
