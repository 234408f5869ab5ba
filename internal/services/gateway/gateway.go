package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
	StatusError    Status = "ERROR"
)

// Terminal reports whether the gateway will not move the transaction
// any further on its own.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined || s == StatusError
}

// CreateRequest is the provider-agnostic payload for opening a
// transaction. Reference is generated locally before the provider has
// assigned any id of its own.
type CreateRequest struct {
	Reference   string          `json:"reference"`
	Email       string          `json:"email"`
	Amount      decimal.Decimal `json:"amount"` // currency minor units
	Currency    string          `json:"currency"`
	Method      string          `json:"method"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	Description string          `json:"description,omitempty"`
}

type Transaction struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	Status      Status          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Gateway is the common interface for payment providers.
type Gateway interface {
	// Provider returns the provider name persisted on transactions.
	Provider() string

	// CreateTransaction opens a transaction with the provider.
	CreateTransaction(ctx context.Context, req *CreateRequest) (*Transaction, error)

	// GetTransactionStatus fetches the current provider-side state.
	GetTransactionStatus(ctx context.Context, id string) (*Transaction, error)

	// PollTransactionStatus blocks until the transaction is terminal
	// or ctx is cancelled.
	PollTransactionStatus(ctx context.Context, id string) (*Transaction, error)

	// Sign computes the request signature over amount, currency and
	// reference.
	Sign(amount decimal.Decimal, currency, reference string) string

	// SetTransactionChannel registers the channel receiving
	// out-of-band transaction confirmations.
	SetTransactionChannel(ch chan *Transaction)

	// Close gracefully closes any connections.
	Close(ctx context.Context) error
}
