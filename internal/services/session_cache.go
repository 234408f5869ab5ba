package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CheckoutState is the buyer-visible phase of a checkout attempt.
type CheckoutState string

const (
	StateInitiated        CheckoutState = "INITIATED"
	StateCartLocked       CheckoutState = "CART_LOCKED"
	StateCartValidated    CheckoutState = "CART_VALIDATED"
	StatePriced           CheckoutState = "PRICED"
	StateGatewaySubmitted CheckoutState = "GATEWAY_SUBMITTED"
	StatePolling          CheckoutState = "POLLING"
	StateApproved         CheckoutState = "APPROVED"
	StateDeclined         CheckoutState = "DECLINED"
	StateError            CheckoutState = "ERROR"
	StateTimeout          CheckoutState = "TIMEOUT"
)

// CheckoutSession is the ephemeral status snapshot the frontend polls
// while a checkout runs. The persistent truth lives on the transaction;
// this cache only saves the status endpoint a database read.
type CheckoutSession struct {
	Reference     string          `json:"reference"`
	Identity      string          `json:"identity"`
	State         CheckoutState   `json:"state"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentURL    string          `json:"payment_url,omitempty"`
	Detail        string          `json:"detail,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type SessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionCache(rdb *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{rdb: rdb, ttl: ttl}
}

func sessionKey(reference string) string {
	return "checkout:session:" + reference
}

func (c *SessionCache) Put(ctx context.Context, session *CheckoutSession) error {
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", session.Reference, err)
	}
	if err := c.rdb.Set(ctx, sessionKey(session.Reference), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("session: store %s: %w", session.Reference, err)
	}
	return nil
}

// Get returns nil without error when the session has expired or never
// existed; callers fall back to the transaction record.
func (c *SessionCache) Get(ctx context.Context, reference string) (*CheckoutSession, error) {
	data, err := c.rdb.Get(ctx, sessionKey(reference)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", reference, err)
	}

	var session CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("session: unmarshal %s: %w", reference, err)
	}
	return &session, nil
}

func (c *SessionCache) Delete(ctx context.Context, reference string) error {
	return c.rdb.Del(ctx, sessionKey(reference)).Err()
}
