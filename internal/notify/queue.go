package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brewshop/internal/redis"
)

const (
	outboundKey   = "notify:outbound"
	processingKey = "notify:processing"
	retryKey      = "notify:retry"
	deadKey       = "notify:dead"
)

// RedisQueue keeps pending messages in a redis list, retries in a sorted
// set scored by due time, and failed messages in a dead-letter list. A
// message being delivered sits in a processing list until it is acked.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, msgs ...Message) error {
	for _, msg := range msgs {
		payload, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		if err := q.client.PushQueue(ctx, outboundKey, payload); err != nil {
			return fmt.Errorf("failed to enqueue notification: %w", err)
		}
	}
	return nil
}

// claim is a message taken for delivery together with its raw payload,
// which is what ack removes.
type claim struct {
	msg     Message
	payload []byte
}

// next claims the oldest pending message, or returns nil when the queue
// stayed empty for the whole timeout.
func (q *RedisQueue) next(ctx context.Context, timeout time.Duration) (*claim, error) {
	payload, err := q.client.ClaimQueue(ctx, outboundKey, processingKey, timeout)
	if errors.Is(err, redis.ErrQueueEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c := &claim{payload: payload}
	if err := json.Unmarshal(payload, &c.msg); err != nil {
		if ackErr := q.ack(ctx, c); ackErr != nil {
			return nil, ackErr
		}
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return c, nil
}

func (q *RedisQueue) ack(ctx context.Context, c *claim) error {
	return q.client.AckQueue(ctx, processingKey, c.payload)
}

// requeueClaimed puts messages a previous worker claimed but never finished back
// on the queue.
func (q *RedisQueue) requeueClaimed(ctx context.Context) (int, error) {
	return q.client.RequeueClaimed(ctx, processingKey, outboundKey)
}

func (q *RedisQueue) retryAt(ctx context.Context, msg Message, at time.Time) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.Schedule(ctx, retryKey, payload, at)
}

func (q *RedisQueue) promoteDue(ctx context.Context, now time.Time) (int, error) {
	return q.client.PromoteDue(ctx, retryKey, outboundKey, now)
}

func (q *RedisQueue) deadLetter(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.PushQueue(ctx, deadKey, payload)
}

func (q *RedisQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.QueueLength(ctx, outboundKey)
}

// InFlight counts claimed messages that are not yet acked.
func (q *RedisQueue) InFlight(ctx context.Context) (int64, error) {
	return q.client.QueueLength(ctx, processingKey)
}

func (q *RedisQueue) Scheduled(ctx context.Context) (int64, error) {
	return q.client.ScheduledCount(ctx, retryKey)
}

func (q *RedisQueue) DeadLetters(ctx context.Context) ([]Message, error) {
	payloads, err := q.client.QueueItems(ctx, deadKey)
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(payloads))
	for _, payload := range payloads {
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
