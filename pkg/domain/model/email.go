package model

import "time"

// Email is an inbound message fetched from the mail transport.
// It is immutable once fetched.
type Email struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	SenderName    string    `json:"sender_name"`
	SenderAddress string    `json:"sender_address"`
	Body          string    `json:"body"`
	ReceivedAt    time.Time `json:"received_at"`
	ThreadID      string    `json:"thread_id"`
	Labels        []string  `json:"labels,omitempty"`
}

// ReplyRequest describes an outbound reply to be sent by the mail transport
type ReplyRequest struct {
	To          string
	Subject     string
	Body        string
	InReplyToID string
	ThreadID    string
}

// SendResult is the outcome of a send operation
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
