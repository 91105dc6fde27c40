package errors

import "github.com/pkg/errors"

var (
	// decode errors
	ErrNoHTMLBody       = errors.New("message has no html body")
	ErrMissingDate      = errors.New("message has no parseable date header")
	ErrMalformedSubject = errors.New("subject does not split into job and client")

	// mailbox errors
	ErrMailboxNotConnected = errors.New("mailbox session not connected")
)

// TransportError is a non-success protocol response from the mailbox
// server. Step names the protocol command that failed.
type TransportError struct {
	Step string
	Err  error
}

func (e *TransportError) Error() string {
	return "imap " + e.Step + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(step string, err error) *TransportError {
	return &TransportError{Step: step, Err: err}
}
