package transport

import "errors"

// ErrSendInFlight is returned when a send is attempted while the previous
// turn is still waiting for its reply.
var ErrSendInFlight = errors.New("a message is already being sent")

type Kind string

const (
	KindUnreachable Kind = "unreachable"
	KindServer      Kind = "server"
	KindMalformed   Kind = "malformed"
)

// Error describes a failed exchange with the relay.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
