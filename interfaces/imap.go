package interfaces

import (
	"context"
)

// MessageRef pairs the two identifiers a mailbox assigns to a message.
// SeqNum is session-local and invalid after any relocation; UID is stable.
type MessageRef struct {
	SeqNum uint32
	UID    uint32
}

// MailboxTransport is an authenticated session to the report mailbox.
type MailboxTransport interface {
	// Connect dials, authenticates and selects the source folder,
	// negotiating server capabilities.
	Connect(ctx context.Context) error
	// List returns every message in the source folder in server order.
	List(ctx context.Context) ([]MessageRef, error)
	// Fetch retrieves the full raw message by sequence number.
	Fetch(ctx context.Context, seqNum uint32) ([]byte, error)
	// Relocate moves the given messages to the processed folder using
	// the most capable strategy the server advertises.
	Relocate(ctx context.Context, uids []uint32) error
	// Close terminates the session.
	Close() error
}
