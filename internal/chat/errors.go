package chat

import "errors"

var (
	// ErrNameTaken is reported when a registration or rename targets a name in use.
	ErrNameTaken = errors.New("name taken")
	// ErrInvalidName is reported when a display name breaks the naming policy.
	ErrInvalidName = errors.New("invalid name")
	// ErrRecipientNotFound is reported when a whisper target is not registered.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrMalformedCommand is reported when a known command has too few arguments.
	ErrMalformedCommand = errors.New("malformed command")
	// ErrUnknownCommand is reported for an unrecognized command word.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrSessionClosed is returned by Deliver once the session is tearing down.
	ErrSessionClosed = errors.New("session closed")
	// ErrOutboxFull is returned by Deliver when the outbox stayed full for the
	// whole delivery timeout.
	ErrOutboxFull = errors.New("outbox full")
)
