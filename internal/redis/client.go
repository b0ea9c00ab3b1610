package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when a key is missing or expired.
var ErrNotFound = errors.New("redis: key not found")

type Client struct {
	rdb *redis.Client
}

// SessionData is everything a browser session carries between requests.
// A session is anonymous until a customer or an admin logs in.
type SessionData struct {
	CustomerID    uint   `json:"customer_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	AdminID       uint   `json:"admin_id,omitempty"`
	AdminUsername string `json:"admin_username,omitempty"`

	// Cart maps product id to quantity.
	Cart map[uint]int `json:"cart"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionData(now time.Time) *SessionData {
	return &SessionData{Cart: make(map[uint]int), CreatedAt: now, UpdatedAt: now}
}

func (s *SessionData) IsCustomer() bool { return s.CustomerID != 0 }
func (s *SessionData) IsAdmin() bool    { return s.AdminID != 0 }

// Flash is a one-shot message shown after the next page load.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromAddr connects without a ping, for tests and local tools.
func NewFromAddr(addr string) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func sessionKey(id string) string { return "session:" + id }
func flashKey(id string) string   { return "temp:flash:" + id }
func orderStatusKey(id uint) string {
	return fmt.Sprintf("order_status:%d", id)
}

// Session management
func (c *Client) SetSession(sessionID string, data *SessionData, ttl time.Duration) error {
	ctx := context.Background()
	if data.Cart == nil {
		data.Cart = make(map[uint]int)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	return c.rdb.Set(ctx, sessionKey(sessionID), jsonData, ttl).Err()
}

func (c *Client) GetSession(sessionID string) (*SessionData, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if session.Cart == nil {
		session.Cart = make(map[uint]int)
	}

	return &session, nil
}

func (c *Client) DeleteSession(sessionID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, sessionKey(sessionID), flashKey(sessionID)).Err()
}

// UpdateSession stores data and restarts the session's idle timeout.
func (c *Client) UpdateSession(sessionID string, data *SessionData, ttl time.Duration) error {
	data.UpdatedAt = time.Now()
	return c.SetSession(sessionID, data, ttl)
}

// Temporary data management
func (c *Client) SetTempData(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}

	return c.rdb.Set(ctx, "temp:"+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(key string, dest interface{}) error {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "temp:"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(key string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "temp:"+key).Err()
}

// PushFlash queues a message for the session's next PopFlashes.
func (c *Client) PushFlash(sessionID string, flash Flash, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(sessionID), jsonData)
	pipe.Expire(ctx, flashKey(sessionID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopFlashes returns and clears the session's queued messages in the order
// they were pushed.
func (c *Client) PopFlashes(sessionID string) ([]Flash, error) {
	ctx := context.Background()
	pipe := c.rdb.TxPipeline()
	rng := pipe.LRange(ctx, flashKey(sessionID), 0, -1)
	pipe.Del(ctx, flashKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to pop flashes: %w", err)
	}

	flashes := make([]Flash, 0, len(rng.Val()))
	for _, raw := range rng.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flash: %w", err)
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

// Order status cache
func (c *Client) SetOrderStatus(orderID uint, status string, ttl time.Duration) error {
	ctx := context.Background()
	return c.rdb.Set(ctx, orderStatusKey(orderID), status, ttl).Err()
}

func (c *Client) GetOrderStatus(orderID uint) (string, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, orderStatusKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get order status: %w", err)
	}
	return val, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
