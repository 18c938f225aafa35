package events

import "context"

// QueueClient is a minimal at-least-once message queue. SQS backs it in
// production; MemoryQueue backs it in development and tests.
type QueueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one received queue entry.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Kind discriminates envelope payloads.
type Kind string

const (
	KindBookingConfirmed Kind = "booking_confirmed.v1"
	KindBookingCancelled Kind = "booking_cancelled.v1"
)

// Envelope is the wire form of a published event; exactly one payload field
// matches Kind.
type Envelope struct {
	ID        string              `json:"id"`
	Kind      Kind                `json:"kind"`
	Confirmed *BookingConfirmedV1 `json:"confirmed,omitempty"`
	Cancelled *BookingCancelledV1 `json:"cancelled,omitempty"`
}
