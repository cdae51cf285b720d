package mailbox

import (
	"errors"
	"fmt"
)

var (
	// ErrFull matches a SendError whose queue was at capacity. The caller may
	// retry later or drop the payload.
	ErrFull = errors.New("mailbox: queue full")

	// ErrDisconnected matches a SendError whose queue no longer has a
	// consumer. The mailbox cannot be used again.
	ErrDisconnected = errors.New("mailbox: disconnected")
)

// Kind classifies a SendError.
type Kind int

const (
	Full Kind = iota + 1
	Disconnected
	// Canceled means the caller's context ended while waiting for space.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Full:
		return "full"
	case Disconnected:
		return "disconnected"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SendError returns the bytes that were not sent.
type SendError struct {
	Kind Kind
	Data []byte
	// Cause is the context error for a Canceled send.
	Cause error
}

func (e *SendError) Error() string {
	if e.Kind == Canceled {
		return fmt.Sprintf("mailbox: send canceled: %v (%d bytes unsent)", e.Cause, len(e.Data))
	}
	return fmt.Sprintf("%v (%d bytes unsent)", e.Unwrap(), len(e.Data))
}

// Unwrap lets errors.Is match ErrFull, ErrDisconnected or, for a Canceled
// send, context.Canceled and context.DeadlineExceeded.
func (e *SendError) Unwrap() error {
	switch e.Kind {
	case Full:
		return ErrFull
	case Canceled:
		return e.Cause
	default:
		return ErrDisconnected
	}
}

// IsFull reports whether the queue was at capacity.
func (e *SendError) IsFull() bool { return e.Kind == Full }

// IsDisconnected reports whether the consumer side is gone.
func (e *SendError) IsDisconnected() bool { return e.Kind == Disconnected }

// IsCanceled reports whether the caller gave up waiting.
func (e *SendError) IsCanceled() bool { return e.Kind == Canceled }

// Unsent returns the bytes carried by err if it is a SendError.
func Unsent(err error) ([]byte, bool) {
	var se *SendError
	if errors.As(err, &se) {
		return se.Data, true
	}
	return nil, false
}

func full(data []byte) error         { return &SendError{Kind: Full, Data: data} }
func disconnected(data []byte) error { return &SendError{Kind: Disconnected, Data: data} }

func canceled(cause error, data []byte) error {
	return &SendError{Kind: Canceled, Data: data, Cause: cause}
}
