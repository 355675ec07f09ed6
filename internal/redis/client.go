package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrCacheMiss  = errors.New("cache miss")
	ErrQueueEmpty = errors.New("queue empty")
)

type Client struct {
	rdb *redis.Client
}

type SessionData struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = 20
	opt.MinIdleConns = 2

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClient wraps an existing connection.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Session management

// CreateSession registers a new anonymous session and returns its key.
func (c *Client) CreateSession(ctx context.Context, ttl time.Duration) (string, error) {
	now := time.Now()
	data := SessionData{Key: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := c.rdb.Set(ctx, "session:"+data.Key, jsonData, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return data.Key, nil
}

func (c *Client) GetSession(ctx context.Context, key string) (*SessionData, error) {
	val, err := c.rdb.Get(ctx, "session:"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &session, nil
}

// TouchSession extends a live session. It reports false when the key is
// unknown or already expired.
func (c *Client) TouchSession(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.Expire(ctx, "session:"+key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to touch session: %w", err)
	}
	return ok, nil
}

func (c *Client) DeleteSession(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "session:"+key).Err()
}

// Temporary data management
func (c *Client) SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}

	return c.rdb.Set(ctx, "temp:"+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "temp:"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "temp:"+key).Err()
}

// Queue primitives. Lists are pushed on the left and popped on the right.

func (c *Client) PushQueue(ctx context.Context, queue string, payload []byte) error {
	return c.rdb.LPush(ctx, queue, payload).Err()
}

// ClaimQueue moves the oldest payload from queue onto processing and returns
// it. The payload stays in processing until AckQueue removes it, so a worker
// that dies mid-delivery leaves it recoverable. A zero timeout does not block.
func (c *Client) ClaimQueue(ctx context.Context, queue, processing string, timeout time.Duration) ([]byte, error) {
	var cmd *redis.StringCmd
	if timeout <= 0 {
		cmd = c.rdb.RPopLPush(ctx, queue, processing)
	} else {
		cmd = c.rdb.BRPopLPush(ctx, queue, processing, timeout)
	}
	val, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	return val, err
}

// AckQueue drops one claimed payload from processing.
func (c *Client) AckQueue(ctx context.Context, processing string, payload []byte) error {
	return c.rdb.LRem(ctx, processing, 1, payload).Err()
}

// RequeueClaimed moves everything left in processing back onto queue, where
// it is taken next.
func (c *Client) RequeueClaimed(ctx context.Context, processing, queue string) (int, error) {
	moved := 0
	for {
		val, err := c.rdb.LPop(ctx, processing).Bytes()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		if err := c.rdb.RPush(ctx, queue, val).Err(); err != nil {
			return moved, fmt.Errorf("failed to requeue claimed item: %w", err)
		}
		moved++
	}
}

func (c *Client) QueueLength(ctx context.Context, queue string) (int64, error) {
	return c.rdb.LLen(ctx, queue).Result()
}

func (c *Client) QueueItems(ctx context.Context, queue string) ([][]byte, error) {
	vals, err := c.rdb.LRange(ctx, queue, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Schedule parks a payload in a sorted set until at.
func (c *Client) Schedule(ctx context.Context, set string, payload []byte, at time.Time) error {
	return c.rdb.ZAdd(ctx, set, &redis.Z{Score: float64(at.UnixMilli()), Member: payload}).Err()
}

// PromoteDue moves every payload scheduled at or before now from set onto
// queue. A payload is only pushed by the caller that removed it, so several
// workers can promote concurrently.
func (c *Client) PromoteDue(ctx context.Context, set, queue string, now time.Time) (int, error) {
	due, err := c.rdb.ZRangeByScore(ctx, set, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read scheduled items: %w", err)
	}

	moved := 0
	for _, payload := range due {
		removed, err := c.rdb.ZRem(ctx, set, payload).Result()
		if err != nil {
			return moved, fmt.Errorf("failed to unschedule item: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := c.rdb.LPush(ctx, queue, payload).Err(); err != nil {
			return moved, fmt.Errorf("failed to requeue item: %w", err)
		}
		moved++
	}
	return moved, nil
}

func (c *Client) ScheduledCount(ctx context.Context, set string) (int64, error) {
	return c.rdb.ZCard(ctx, set).Result()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
