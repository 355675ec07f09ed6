// Package mailer delivers transactional e-mail.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/keighl/postmark"
)

// ErrRejected is returned when Postmark answers with an API error code.
var ErrRejected = errors.New("postmark rejected email")

type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// PostmarkMailer sends through the Postmark API.
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer sends as from. An empty baseURL uses the public API.
func NewPostmarkMailer(serverToken, from, baseURL string) *PostmarkMailer {
	client := postmark.NewClient(serverToken, "")
	client.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &PostmarkMailer{client: client, from: from}
}

func (m *PostmarkMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := email.TextBody
	if text == "" {
		text = email.HTMLBody
	}

	resp, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       email.To,
		Subject:  email.Subject,
		HtmlBody: email.HTMLBody,
		TextBody: text,
	})
	// SendEmail also returns an error for API codes; the code is more useful
	if resp.ErrorCode != 0 {
		return fmt.Errorf("%w (code %d): %s", ErrRejected, resp.ErrorCode, resp.Message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer writes e-mails to the log instead of sending them. It is used
// when no Postmark token is configured.
type LogMailer struct {
	From string
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	log.Printf("mailer: from=%s to=%s subject=%q", m.From, email.To, email.Subject)
	return nil
}
