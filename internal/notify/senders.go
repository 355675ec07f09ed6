package notify

import (
	"context"

	"brewshop/pkg/mailer"
	"brewshop/pkg/whatsapp"
)

type EmailSender struct {
	Mailer mailer.Mailer
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return permanent("message %s has no recipient", msg.ID)
	}
	return s.Mailer.Send(ctx, mailer.Email{
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTML,
		TextBody: msg.Text,
	})
}

type WhatsAppSender struct {
	Client *whatsapp.Client
}

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if whatsapp.NormalizePhone(msg.To) == "" {
		return permanent("message %s has no usable phone number", msg.ID)
	}
	return s.Client.SendTextMessage(ctx, msg.To, msg.Text)
}
