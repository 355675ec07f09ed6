package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const maxBackoff = time.Hour

type Dispatcher struct {
	queue       *RedisQueue
	senders     map[Channel]Sender
	maxAttempts int
	backoff     time.Duration
	pollTimeout time.Duration
	sendTimeout time.Duration
	now         func() time.Time
}

func NewDispatcher(queue *RedisQueue, senders map[Channel]Sender, maxAttempts int, backoff time.Duration) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		queue:       queue,
		senders:     senders,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		pollTimeout: time.Second,
		sendTimeout: 30 * time.Second,
		now:         time.Now,
	}
}

// Run delivers messages until ctx is cancelled. Messages claimed by a
// worker that died are requeued first, so delivery is at-least-once for a
// single dispatcher.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Println("Notification dispatcher started")
	if n, err := d.queue.requeueClaimed(ctx); err != nil {
		log.Printf("notify: failed to requeue unfinished messages: %v", err)
	} else if n > 0 {
		log.Printf("notify: requeued %d unfinished messages", n)
	}

	for {
		if ctx.Err() != nil {
			log.Println("Notification dispatcher stopped")
			return
		}

		if _, err := d.queue.promoteDue(ctx, d.now()); err != nil && ctx.Err() == nil {
			log.Printf("notify: failed to promote retries: %v", err)
		}

		c, err := d.queue.next(ctx, d.pollTimeout)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("notify: failed to read queue: %v", err)
				time.Sleep(d.pollTimeout)
			}
			continue
		}
		if c != nil {
			d.handle(ctx, c)
		}
	}
}

// Drain delivers everything that is currently due and returns the number of
// messages handled.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	if _, err := d.queue.promoteDue(ctx, d.now()); err != nil {
		return 0, err
	}

	handled := 0
	for {
		c, err := d.queue.next(ctx, 0)
		if err != nil {
			return handled, err
		}
		if c == nil {
			return handled, nil
		}
		d.handle(ctx, c)
		handled++
	}
}

// handle delivers a claimed message and acks it once its outcome is stored.
// A message whose outcome could not be stored stays claimed and is requeued
// on the next start.
func (d *Dispatcher) handle(ctx context.Context, c *claim) {
	// a send already under way finishes even when ctx is cancelled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
	defer cancel()

	if !d.deliver(ctx, c.msg) {
		return
	}
	if err := d.queue.ack(ctx, c); err != nil {
		log.Printf("notify: failed to ack %s: %v", c.msg.ID, err)
	}
}

// deliver reports whether the message was sent, dropped, rescheduled or
// dead-lettered.
func (d *Dispatcher) deliver(ctx context.Context, msg Message) bool {
	sender, ok := d.senders[msg.Channel]
	if !ok {
		log.Printf("notify: no sender for channel %s, dropping message %s", msg.Channel, msg.ID)
		return true
	}

	err := sender.Send(ctx, msg)
	if err == nil {
		return true
	}

	msg.Attempts++
	msg.LastError = err.Error()

	if msg.Attempts >= d.maxAttempts || errors.Is(err, ErrPermanent) {
		log.Printf("notify: giving up on %s %s to %s after %d attempts: %v", msg.Kind, msg.ID, msg.To, msg.Attempts, err)
		if err := d.queue.deadLetter(ctx, msg); err != nil {
			log.Printf("notify: failed to dead-letter %s: %v", msg.ID, err)
			return false
		}
		return true
	}

	delay := d.delay(msg.Attempts)
	log.Printf("notify: %s %s failed (attempt %d), retrying in %s: %v", msg.Kind, msg.ID, msg.Attempts, delay, err)
	if err := d.queue.retryAt(ctx, msg, d.now().Add(delay)); err != nil {
		log.Printf("notify: failed to schedule retry for %s: %v", msg.ID, err)
		return false
	}
	return true
}

// delay doubles the base backoff for every failed attempt.
func (d *Dispatcher) delay(attempts int) time.Duration {
	delay := d.backoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// ErrPermanent marks a delivery failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent delivery failure")

func permanent(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPermanent, fmt.Sprintf(format, args...))
}
