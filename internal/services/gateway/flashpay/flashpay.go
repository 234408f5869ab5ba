// Package flashpay implements the payment gateway against the FlashPay
// partner API: HMAC-signed HTTP calls plus a PubNub subscription for
// out-of-band transaction confirmations.
package flashpay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"

	"club-commerce/config"
	"club-commerce/internal/services/gateway"
)

const providerName = "flashpay"

type FlashPay struct {
	currency string

	pnSubKey    string
	pnSubSecret string
	pnUUID      string
	pnChannels  []string
	pnCipherKey string

	listener *pubnub.Listener
	sub      *subscribe

	client *Client
}

// New returns a connected FlashPay instance.
func New(ctx context.Context, cfg *config.FlashPayConfig) (*FlashPay, error) {
	client := newClient(ctx, &ClientConfig{
		BaseURL:   cfg.BaseURL,
		PartnerID: cfg.PartnerID,
		ClientID:  cfg.ClientID,
		ClientKey: cfg.ClientKey,
		HMACKey:   cfg.HMACKey,
	})

	// Connect to the FlashPay backend. Get access token.
	token, err := client.connect(ctx)
	if err != nil {
		return nil, err
	}
	client.setAccessToken(token)

	// Notify access token expired.
	go client.notifyAccessTokenExpired(ctx)

	f := &FlashPay{
		currency: cfg.Currency,

		pnSubKey:    cfg.PNSubKey,
		pnSubSecret: cfg.PNSubSecret,
		pnUUID:      cfg.PNUUID,
		pnChannels:  []string{cfg.PNChannel},
		pnCipherKey: cfg.PNCipherKey,
		listener:    pubnub.NewListener(),

		client: client,
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(f.pnUUID))
	pnCfg.SubscribeKey = f.pnSubKey
	pnCfg.CipherKey = f.pnCipherKey
	pnCfg.SecretKey = f.pnSubSecret

	newSub, err := f.newSubscription(ctx, pnCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to FlashPay's PubNub channel: %v", err)
	}

	newSub.pn.AddListener(newSub.lis)
	newSub.pn.Subscribe().Channels(f.pnChannels).Execute()
	f.sub = newSub

	return f, nil
}

type subscribe struct {
	pn  *pubnub.PubNub
	lis *pubnub.Listener
	ch  chan *gateway.Transaction
}

func (f *FlashPay) newSubscription(ctx context.Context, pnCfg *pubnub.Config) (*subscribe, error) {
	sub := &subscribe{
		pn:  pubnub.NewPubNub(pnCfg),
		lis: pubnub.NewListener(),
	}

	go sub.processSubscription(ctx)

	return sub, nil
}

func (s *subscribe) processSubscription(ctx context.Context) error {
	listener := s.lis
	for {
		select {
		case status := <-listener.Status:
			switch status.Category {
			case pubnub.PNConnectedCategory:
				log.Println("connected to pubnub")

			case pubnub.PNReconnectedCategory:
				log.Println("reconnected to pubnub")

			case pubnub.PNDisconnectedCategory:
				log.Println("disconnected from pubnub")

			default:
				log.Println("pubnub status category:", status.Category)
			}

		case message := <-listener.Message:
			log.Println("message received pubnub: ", message.Message)

			raw, ok := message.Message.(string)
			if !ok {
				continue
			}

			var p payload
			dec := json.NewDecoder(strings.NewReader(raw))
			if err := dec.Decode(&p); err != nil {
				log.Println(err)
				continue
			}

			tran, err := p.ToDomain()
			if err != nil {
				log.Println(err)
				continue
			}
			if s.ch != nil {
				s.ch <- tran
			}

		case <-ctx.Done():
			log.Println("close subscribe")
			return nil
		}
	}
}

func (p *payload) ToDomain() (*gateway.Transaction, error) {
	createdAt := time.Now()
	if p.CreatedAt != "" {
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", p.CreatedAt, time.Local)
		if err != nil {
			return nil, err
		}
		createdAt = ts
	}

	return &gateway.Transaction{
		ID:          p.TxID,
		Reference:   p.Reference,
		Status:      mapStatus(p.Status),
		Amount:      p.Amount,
		Currency:    p.Currency,
		RedirectURL: p.RedirectURL,
		CreatedAt:   createdAt,
	}, nil
}

func mapStatus(provider string) gateway.Status {
	switch strings.ToUpper(provider) {
	case "CREATED", "PENDING", "PROCESSING":
		return gateway.StatusPending
	case "APPROVED", "PAID", "FNLD":
		return gateway.StatusApproved
	case "DECLINED", "REJECTED", "CANCELLED":
		return gateway.StatusDeclined
	default:
		return gateway.StatusError
	}
}

func (f *FlashPay) Provider() string {
	return providerName
}

func (f *FlashPay) CreateTransaction(ctx context.Context, req *gateway.CreateRequest) (*gateway.Transaction, error) {
	currency := req.Currency
	if currency == "" {
		currency = f.currency
	}

	p, err := f.client.createTransaction(ctx, req.Reference, req.Email, req.Method, req.RedirectURL, currency, req.Amount)
	if err != nil {
		return nil, err
	}

	return p.ToDomain()
}

func (f *FlashPay) GetTransactionStatus(ctx context.Context, id string) (*gateway.Transaction, error) {
	p, err := f.client.checkTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.ToDomain()
}

// PollTransactionStatus is the blocking convenience wrapper: it checks
// the transaction every five seconds until terminal or ctx ends.
func (f *FlashPay) PollTransactionStatus(ctx context.Context, id string) (*gateway.Transaction, error) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		tran, err := f.GetTransactionStatus(ctx, id)
		if err == nil && tran.Status.Terminal() {
			return tran, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sign computes the cryptographic request signature over amount,
// currency and reference.
func (f *FlashPay) Sign(amount decimal.Decimal, currency, reference string) string {
	body := fmt.Sprintf("%s|%s|%s", amount.String(), currency, reference)
	return Hmac256([]byte(body), []byte(f.client.hmacKey))
}

func (f *FlashPay) SetTransactionChannel(ch chan *gateway.Transaction) {
	f.sub.ch = ch
}

func (f *FlashPay) Close(_ context.Context) error {
	f.sub.pn.UnsubscribeAll()
	return nil
}
