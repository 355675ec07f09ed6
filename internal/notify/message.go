// Package notify queues customer notifications in redis and delivers them
// from a background dispatcher with retries.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindOrderStatus       Kind = "order_status"
	KindPayment           Kind = "payment"
	KindAccountVerified   Kind = "account_verified"
	KindPasswordRecovery  Kind = "password_recovery"
)

type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Channel   Channel   `json:"channel"`
	To        string    `json:"to"`
	Subject   string    `json:"subject,omitempty"`
	Text      string    `json:"text"`
	HTML      string    `json:"html,omitempty"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessage(kind Kind, channel Channel, to string) Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Channel:   channel,
		To:        to,
		CreatedAt: time.Now(),
	}
}

// Queue accepts messages for later delivery.
type Queue interface {
	Enqueue(ctx context.Context, msgs ...Message) error
}

// Sender delivers one message over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type filteredQueue struct {
	next     Queue
	channels map[Channel]bool
}

// OnlyChannels drops messages for channels that are not configured.
func OnlyChannels(next Queue, channels ...Channel) Queue {
	allowed := make(map[Channel]bool, len(channels))
	for _, ch := range channels {
		allowed[ch] = true
	}
	return &filteredQueue{next: next, channels: allowed}
}

func (q *filteredQueue) Enqueue(ctx context.Context, msgs ...Message) error {
	kept := msgs[:0:0]
	for _, msg := range msgs {
		if q.channels[msg.Channel] {
			kept = append(kept, msg)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return q.next.Enqueue(ctx, kept...)
}
