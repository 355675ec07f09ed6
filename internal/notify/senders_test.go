package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brewshop/pkg/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostmarkRejectionIsRetried(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"ErrorCode":406,"Message":"Inactive recipient"}`))
	}))
	defer srv.Close()

	q := newTestQueue(t)
	sender := &EmailSender{Mailer: mailer.NewPostmarkMailer("server-token", "orders@example.com", srv.URL)}
	d := NewDispatcher(q, map[Channel]Sender{ChannelEmail: sender}, 3, time.Minute)

	require.NoError(t, q.Enqueue(ctx, testMessage(ChannelEmail)))
	_, err := d.Drain(ctx)
	require.NoError(t, err)

	scheduled, err := q.Scheduled(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, scheduled)

	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	assert.Empty(t, dead)

	inFlight, err := q.InFlight(ctx)
	require.NoError(t, err)
	assert.Zero(t, inFlight)
}

func TestEmailSenderNeedsRecipient(t *testing.T) {
	sender := &EmailSender{Mailer: &mailer.LogMailer{From: "orders@example.com"}}
	msg := testMessage(ChannelEmail)
	msg.To = ""
	err := sender.Send(context.Background(), msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermanent)
}
