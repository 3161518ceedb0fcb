package viera

import "errors"

// Domain errors for the Viera bridge package.
var (
	// ErrUndecodablePayload is returned when an MQTT payload is not valid
	// UTF-8 and cannot be interpreted as a command.
	ErrUndecodablePayload = errors.New("viera: payload is not valid UTF-8")

	// ErrEmptyCommand is returned when a payload decodes to an empty command.
	ErrEmptyCommand = errors.New("viera: empty command")

	// ErrInvalidParameters is returned when a structured command carries
	// parameters of the wrong type or out-of-range values.
	ErrInvalidParameters = errors.New("viera: invalid command parameters")
)
