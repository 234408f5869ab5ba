package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"club-commerce/internal/cartlock"
	"club-commerce/internal/fees"
	"club-commerce/internal/services/gateway"
	"club-commerce/internal/status"
	"club-commerce/models"
	"club-commerce/monitoring"
	"club-commerce/utils"
)

// The orchestrator depends on the narrow slices of the store and of the
// sibling services it actually calls. The store repositories and the
// cart/pricing services satisfy these.

type TransactionStore interface {
	Create(ctx context.Context, txn *models.PaymentTransaction) error
	Update(ctx context.Context, txn *models.PaymentTransaction) error
	FindByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error)
	FindByProviderTxID(ctx context.Context, providerTxID string) (*models.PaymentTransaction, error)
}

type PurchaseStore interface {
	Create(ctx context.Context, p *models.Purchase) error
	ByID(ctx context.Context, id string) (*models.Purchase, error)
	ByTransaction(ctx context.Context, transactionID string) ([]*models.Purchase, error)
	CountByTransaction(ctx context.Context, transactionID string) (int, error)
	SetQRPayload(ctx context.Context, id, payload string) error
	MarkUsed(ctx context.Context, id string) (bool, error)
}

type CartStore interface {
	Clear(ctx context.Context, identity string) error
}

type StockStore interface {
	DecrementTicketStock(ctx context.Context, id string, n int) error
}

type CartValidator interface {
	ValidateForCheckout(ctx context.Context, identity string, now time.Time) ([]models.CartLine, error)
}

type LinePricer interface {
	QuoteLine(ctx context.Context, line models.CartLine, now time.Time) (*LineQuote, error)
}

// CheckoutService drives a cart through payment: lock, validate, price,
// submit to the gateway, poll to a terminal state, fulfill. The cart
// lock is acquired exactly once per attempt and released exactly once on
// every exit path; after gateway submission the poll goroutine owns it.
type CheckoutService struct {
	txns      TransactionStore
	purchases PurchaseStore
	cartLines CartStore
	stock     StockStore
	carts     CartValidator
	pricer    LinePricer
	locks     *cartlock.Manager
	gw        gateway.Gateway
	table     fees.Table
	qr        *QRService
	notify    *Notifier
	sessions  *SessionCache
	breaker   *utils.CircuitBreaker

	pollInterval    time.Duration
	maxPollAttempts int

	// finalizeMu serializes terminal transitions between the poll loop
	// and out-of-band gateway confirmations.
	finalizeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]*pendingCheckout
}

// pendingCheckout keeps the priced lines of an in-flight checkout so an
// approval arriving on any path can fulfill at the quoted prices.
type pendingCheckout struct {
	identity string
	quotes   []*LineQuote
	started  time.Time
}

type CheckoutDeps struct {
	Transactions TransactionStore
	Purchases    PurchaseStore
	CartLines    CartStore
	Stock        StockStore
	Carts        CartValidator
	Pricer       LinePricer
	Locks        *cartlock.Manager
	Gateway      gateway.Gateway
	Fees         fees.Table
	QR           *QRService
	Notifier     *Notifier
	Sessions     *SessionCache
	Breaker      utils.BreakerSettings

	PollInterval    time.Duration
	MaxPollAttempts int
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		txns:            deps.Transactions,
		purchases:       deps.Purchases,
		cartLines:       deps.CartLines,
		stock:           deps.Stock,
		carts:           deps.Carts,
		pricer:          deps.Pricer,
		locks:           deps.Locks,
		gw:              deps.Gateway,
		table:           deps.Fees,
		qr:              deps.QR,
		notify:          deps.Notifier,
		sessions:        deps.Sessions,
		breaker:         utils.NewCircuitBreaker("payment-gateway", deps.Breaker),
		pollInterval:    deps.PollInterval,
		maxPollAttempts: deps.MaxPollAttempts,
		pending:         make(map[string]*pendingCheckout),
	}
}

type CheckoutRequest struct {
	Identity    string `json:"-"`
	Email       string `json:"email"`
	Method      string `json:"method"`
	RedirectURL string `json:"redirect_url"`
}

type CheckoutResult struct {
	Reference  string          `json:"reference"`
	State      CheckoutState   `json:"state"`
	Total      decimal.Decimal `json:"total"`
	PaymentURL string          `json:"payment_url,omitempty"`
}

// Initiate starts a checkout for the identity's cart. On success the
// returned state is POLLING (or APPROVED for free carts) and the caller
// follows up via GetStatus or the push channel.
func (s *CheckoutService) Initiate(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	reference := uuid.NewString()
	now := time.Now()

	if !s.locks.Lock(ctx, req.Identity, reference) {
		monitoring.TrackLockContention()
		return nil, status.ErrCheckoutInProgress
	}
	s.putSession(ctx, &CheckoutSession{
		Reference: reference,
		Identity:  req.Identity,
		State:     StateCartLocked,
	})

	lines, err := s.carts.ValidateForCheckout(ctx, req.Identity, now)
	if err != nil {
		return nil, s.abort(ctx, req.Identity, reference, err)
	}
	s.putSession(ctx, &CheckoutSession{
		Reference: reference,
		Identity:  req.Identity,
		State:     StateCartValidated,
	})

	quotes := make([]*LineQuote, 0, len(lines))
	total := decimal.Zero
	clubReceives := decimal.Zero
	commissions := decimal.Zero
	for _, line := range lines {
		quote, err := s.pricer.QuoteLine(ctx, line, now)
		if err != nil {
			return nil, s.abort(ctx, req.Identity, reference, err)
		}
		if quote.Quote.Blocked {
			return nil, s.abort(ctx, req.Identity, reference, status.ErrEventExpired)
		}
		monitoring.TrackPricingReason(quote.Quote.Reason)

		qty := decimal.NewFromInt(int64(line.Quantity))
		bd := s.table.ForPrice(quote.FeeKind, quote.Quote.Price)
		total = total.Add(quote.Subtotal())
		clubReceives = clubReceives.Add(bd.ClubReceives.Mul(qty))
		commissions = commissions.Add(bd.Commission.Mul(qty))
		quotes = append(quotes, quote)
	}
	s.putSession(ctx, &CheckoutSession{
		Reference: reference,
		Identity:  req.Identity,
		State:     StatePriced,
		Total:     total,
	})

	if total.IsZero() {
		return s.completeFree(ctx, req, reference, quotes)
	}
	if !s.table.MeetsMinimum(total) {
		return nil, s.abort(ctx, req.Identity, reference, status.ErrBelowMinimum)
	}
	if s.gw == nil {
		return nil, s.abort(ctx, req.Identity, reference, status.ErrUnsupportedPay)
	}

	gatewayFee, gatewayTax := s.table.ForTotal(total)
	txn := &models.PaymentTransaction{
		Reference:        reference,
		Identity:         req.Identity,
		ClubID:           lines[0].ClubID,
		Email:            req.Email,
		TotalPaid:        total,
		ClubReceives:     clubReceives,
		PlatformReceives: commissions,
		GatewayFee:       gatewayFee,
		GatewayTax:       gatewayTax,
		Provider:         s.gw.Provider(),
		Status:           models.PaymentPending,
	}
	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, s.abort(ctx, req.Identity, reference, err)
	}

	s.putPending(reference, &pendingCheckout{
		identity: req.Identity,
		quotes:   quotes,
		started:  now,
	})
	s.putSession(ctx, &CheckoutSession{
		Reference: reference,
		Identity:  req.Identity,
		State:     StateGatewaySubmitted,
		Total:     total,
	})

	res, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.gw.CreateTransaction(ctx, &gateway.CreateRequest{
			Reference:   reference,
			Email:       req.Email,
			Amount:      total,
			Method:      req.Method,
			RedirectURL: req.RedirectURL,
		})
	})
	if err != nil {
		s.takePending(reference)
		s.failTransaction(ctx, txn)
		monitoring.TrackCheckoutOutcome(string(StateError))
		return nil, s.abort(ctx, req.Identity, reference, fmt.Errorf("checkout: gateway submit: %w", err))
	}
	gwTxn := res.(*gateway.Transaction)

	txn.ProviderTxID = gwTxn.ID
	if err := s.txns.Update(ctx, txn); err != nil {
		slog.Error("checkout: attach provider id failed", "reference", reference, "error", err)
	}
	s.locks.UpdateTransactionID(ctx, req.Identity, txn.ProviderTxID)
	s.putSession(ctx, &CheckoutSession{
		Reference:     reference,
		Identity:      req.Identity,
		State:         StatePolling,
		TransactionID: txn.ID,
		Total:         total,
		PaymentURL:    gwTxn.RedirectURL,
	})

	// The poll goroutine owns the cart lock from here on.
	go s.pollTransaction(req.Identity, reference, txn.ProviderTxID)

	return &CheckoutResult{
		Reference:  reference,
		State:      StatePolling,
		Total:      total,
		PaymentURL: gwTxn.RedirectURL,
	}, nil
}

// completeFree settles an all-free cart synchronously; there is nothing
// to collect, so no gateway round trip happens at all.
func (s *CheckoutService) completeFree(ctx context.Context, req *CheckoutRequest, reference string, quotes []*LineQuote) (*CheckoutResult, error) {
	txn := &models.PaymentTransaction{
		Reference: reference,
		Identity:  req.Identity,
		ClubID:    quotes[0].Line.ClubID,
		Email:     req.Email,
		TotalPaid: decimal.Zero,
		Provider:  "internal",
		Status:    models.PaymentPending,
	}
	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, s.abort(ctx, req.Identity, reference, err)
	}

	s.putPending(reference, &pendingCheckout{
		identity: req.Identity,
		quotes:   quotes,
		started:  time.Now(),
	})
	if err := s.finalizeApproved(ctx, reference, nil); err != nil {
		return nil, s.abort(ctx, req.Identity, reference, err)
	}

	s.locks.Unlock(ctx, req.Identity)
	return &CheckoutResult{
		Reference: reference,
		State:     StateApproved,
		Total:     decimal.Zero,
	}, nil
}

// abort releases the lock on a synchronous failure and records the
// terminal session state. It always returns err for the caller.
func (s *CheckoutService) abort(ctx context.Context, identity, reference string, err error) error {
	s.locks.Unlock(ctx, identity)
	s.putSession(ctx, &CheckoutSession{
		Reference: reference,
		Identity:  identity,
		State:     StateError,
		Detail:    err.Error(),
	})
	return err
}

// pollTransaction drives an in-flight transaction to a terminal state.
// It owns the cart lock and releases it on every exit path.
func (s *CheckoutService) pollTransaction(identity, reference, providerTxID string) {
	ctx := context.Background()
	defer s.locks.Unlock(ctx, identity)
	started := time.Now()

	wait := s.pollInterval
	for attempt := 1; attempt <= s.maxPollAttempts; attempt++ {
		time.Sleep(wait)
		wait = s.pollInterval

		// An out-of-band confirmation may already have settled it.
		txn, err := s.txns.FindByReference(ctx, reference)
		if err == nil && txn.Status.Terminal() {
			monitoring.TrackPollDuration(time.Since(started))
			return
		}

		gwTxn, err := s.gw.GetTransactionStatus(ctx, providerTxID)
		if err != nil {
			slog.Warn("checkout: poll attempt failed", "reference", reference, "attempt", attempt, "error", err)
			// Transient network failures retry at the base interval;
			// anything else backs off before the next attempt.
			if !transientNetErr(err) {
				wait = 2 * s.pollInterval
			}
			continue
		}
		if !gwTxn.Status.Terminal() {
			continue
		}

		monitoring.TrackPollDuration(time.Since(started))
		switch gwTxn.Status {
		case gateway.StatusApproved:
			if err := s.finalizeApproved(ctx, reference, gwTxn); err != nil {
				slog.Error("checkout: finalize approved failed", "reference", reference, "error", err)
			}
		case gateway.StatusDeclined:
			s.finalizeDeclined(ctx, reference, StateDeclined)
		default:
			s.finalizeDeclined(ctx, reference, StateError)
		}
		return
	}

	slog.Warn("checkout: polling exhausted", "reference", reference, "attempts", s.maxPollAttempts)
	monitoring.TrackPollDuration(time.Since(started))
	s.finalizeDeclined(ctx, reference, StateTimeout)
}

func transientNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET)
}

// ConfirmProvider settles a transaction from an out-of-band gateway
// notification. Safe to call concurrently with the poll loop; the first
// terminal transition wins and later ones are no-ops.
func (s *CheckoutService) ConfirmProvider(ctx context.Context, gwTxn *gateway.Transaction) error {
	txn, err := s.txns.FindByProviderTxID(ctx, gwTxn.ID)
	if err != nil {
		txn, err = s.txns.FindByReference(ctx, gwTxn.Reference)
	}
	if err != nil {
		return status.ErrRefNotFound
	}

	switch gwTxn.Status {
	case gateway.StatusApproved:
		return s.finalizeApproved(ctx, txn.Reference, gwTxn)
	case gateway.StatusDeclined:
		s.finalizeDeclined(ctx, txn.Reference, StateDeclined)
	case gateway.StatusError:
		s.finalizeDeclined(ctx, txn.Reference, StateError)
	}
	return nil
}

// finalizeApproved fulfills the checkout: decrement stock, mint the
// purchase rows with QR payloads, settle the transaction, clear the
// cart, notify the buyer. Idempotent on the transaction status.
func (s *CheckoutService) finalizeApproved(ctx context.Context, reference string, gwTxn *gateway.Transaction) error {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	txn, err := s.txns.FindByReference(ctx, reference)
	if err != nil {
		return err
	}
	if txn.Status.Terminal() {
		if txn.Status == models.PaymentDeclined {
			// Approval landed after the decline was persisted. Money
			// moved; reconciliation is a manual follow-up.
			slog.Warn("checkout: late approval on declined transaction", "reference", reference)
		}
		return nil
	}

	if gwTxn != nil && !gwTxn.Amount.Equal(txn.TotalPaid) {
		slog.Warn("checkout: gateway amount differs from quoted total",
			"reference", reference, "quoted", txn.TotalPaid, "charged", gwTxn.Amount)
	}

	pc := s.takePending(reference)
	var purchases []*models.Purchase
	if pc == nil {
		slog.Warn("checkout: no pending lines for approved transaction", "reference", reference)
	} else if n, err := s.purchases.CountByTransaction(ctx, txn.ID); err == nil && n > 0 {
		// A previous finalize minted purchases but failed before the
		// status update landed. Never mint twice.
		slog.Warn("checkout: purchases already minted", "reference", reference, "count", n)
	} else {
		purchases = s.fulfill(ctx, txn, pc)
	}

	now := time.Now()
	txn.Status = models.PaymentApproved
	txn.ResolvedAt = &now
	if err := s.txns.Update(ctx, txn); err != nil {
		return err
	}

	if pc != nil {
		if err := s.cartLines.Clear(ctx, pc.identity); err != nil {
			slog.Error("checkout: clear cart failed", "identity", pc.identity, "error", err)
		}
	}
	if s.notify != nil {
		if err := s.notify.SendInvoiceEmail(txn, purchases); err != nil {
			slog.Error("checkout: invoice email failed", "reference", reference, "error", err)
		}
		s.notify.PushCheckoutStatus(txn.Identity, reference, models.PaymentApproved)
	}
	s.putSession(ctx, &CheckoutSession{
		Reference:     reference,
		Identity:      txn.Identity,
		State:         StateApproved,
		TransactionID: txn.ID,
		Total:         txn.TotalPaid,
	})
	monitoring.TrackCheckoutOutcome(string(StateApproved))
	return nil
}

// fulfill mints one purchase row per unit sold. Individual failures are
// logged and skipped; an approved payment is never rolled back here.
func (s *CheckoutService) fulfill(ctx context.Context, txn *models.PaymentTransaction, pc *pendingCheckout) []*models.Purchase {
	var purchases []*models.Purchase
	for _, quote := range pc.quotes {
		line := quote.Line

		if line.Kind == models.CartTicket {
			if err := s.stock.DecrementTicketStock(ctx, line.ItemID, line.Quantity); err != nil {
				// Sold out between pricing and approval. The payment is
				// not rolled back; the line's purchases are withheld for
				// manual reconciliation.
				slog.Error("checkout: stock decrement failed", "ticket", line.ItemID, "error", err)
				continue
			}
		}

		purchaseType := models.PurchaseTicket
		if line.Kind == models.CartMenu {
			purchaseType = models.PurchaseMenu
		}
		bd := s.table.ForPrice(quote.FeeKind, quote.Quote.Price)

		for i := 0; i < line.Quantity; i++ {
			p := &models.Purchase{
				Type:              purchaseType,
				TransactionID:     txn.ID,
				ClubID:            line.ClubID,
				ItemID:            line.ItemID,
				VariantID:         line.VariantID,
				EventID:           quote.EventID,
				OriginalBasePrice: quote.BasePrice,
				PriceAtCheckout:   quote.Quote.Price,
				DynamicPricing:    !quote.Quote.Price.Equal(quote.BasePrice),
				DynamicReason:     quote.Quote.Reason,
				PlatformFee:       bd.Commission,
				ClubReceives:      bd.ClubReceives,
			}
			if err := s.purchases.Create(ctx, p); err != nil {
				slog.Error("checkout: create purchase failed", "transaction", txn.ID, "error", err)
				continue
			}

			if s.qr != nil {
				payload, err := s.qr.Encode(p)
				if err != nil {
					slog.Error("checkout: qr encode failed", "purchase", p.ID, "error", err)
				} else {
					p.QRPayload = payload
					if err := s.purchases.SetQRPayload(ctx, p.ID, payload); err != nil {
						slog.Error("checkout: attach qr failed", "purchase", p.ID, "error", err)
					}
				}
			}
			purchases = append(purchases, p)
		}
	}
	return purchases
}

// finalizeDeclined persists the decline. TIMEOUT and ERROR both land as
// DECLINED on the transaction; the session keeps the distinction for the
// buyer-facing status. The cart survives for a retry.
func (s *CheckoutService) finalizeDeclined(ctx context.Context, reference string, state CheckoutState) {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	txn, err := s.txns.FindByReference(ctx, reference)
	if err != nil {
		slog.Error("checkout: finalize decline lookup failed", "reference", reference, "error", err)
		return
	}
	if txn.Status.Terminal() {
		return
	}

	s.takePending(reference)
	s.failTransaction(ctx, txn)

	if s.notify != nil {
		s.notify.PushCheckoutStatus(txn.Identity, reference, models.PaymentDeclined)
	}
	s.putSession(ctx, &CheckoutSession{
		Reference:     reference,
		Identity:      txn.Identity,
		State:         state,
		TransactionID: txn.ID,
		Total:         txn.TotalPaid,
	})
	monitoring.TrackCheckoutOutcome(string(state))
}

func (s *CheckoutService) failTransaction(ctx context.Context, txn *models.PaymentTransaction) {
	now := time.Now()
	txn.Status = models.PaymentDeclined
	txn.ResolvedAt = &now
	if err := s.txns.Update(ctx, txn); err != nil {
		slog.Error("checkout: persist decline failed", "reference", txn.Reference, "error", err)
	}
}

// Redeem consumes a QR payload at the door. A payload decrypts to a
// purchase id plus the club it belongs to; a mismatch on either is an
// invalid code, and a second scan of a valid one is a conflict.
func (s *CheckoutService) Redeem(ctx context.Context, payload string) (*QRClaims, *models.Purchase, error) {
	claims, err := s.qr.Decode(payload)
	if err != nil {
		return nil, nil, err
	}

	purchase, err := s.purchases.ByID(ctx, claims.PurchaseID)
	if err != nil {
		return nil, nil, err
	}
	if purchase.ClubID != claims.ClubID {
		return nil, nil, fmt.Errorf("redeem: club mismatch on purchase %s", purchase.ID)
	}

	ok, err := s.purchases.MarkUsed(ctx, purchase.ID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, status.ErrAlreadyRedeemed
	}

	purchase.IsUsed = true
	return claims, purchase, nil
}

// Purchases returns the purchase rows of an approved checkout so the
// buyer can re-fetch their entry codes later. The identity must match
// the transaction's buyer.
func (s *CheckoutService) Purchases(ctx context.Context, identity, reference string) ([]*models.Purchase, error) {
	txn, err := s.txns.FindByReference(ctx, reference)
	if err != nil {
		return nil, status.ErrRefNotFound
	}
	if txn.Identity != identity {
		return nil, status.ErrRefNotFound
	}
	return s.purchases.ByTransaction(ctx, txn.ID)
}

// GetStatus reports the current phase of a checkout. The session cache
// answers while the attempt is live; afterwards the transaction record
// is the source of truth.
func (s *CheckoutService) GetStatus(ctx context.Context, reference string) (*CheckoutSession, error) {
	if s.sessions != nil {
		session, err := s.sessions.Get(ctx, reference)
		if err != nil {
			slog.Warn("checkout: session lookup failed", "reference", reference, "error", err)
		}
		if session != nil {
			return session, nil
		}
	}

	txn, err := s.txns.FindByReference(ctx, reference)
	if err != nil {
		return nil, status.ErrRefNotFound
	}

	state := StatePolling
	switch txn.Status {
	case models.PaymentApproved:
		state = StateApproved
	case models.PaymentDeclined, models.PaymentVoided:
		state = StateDeclined
	}
	return &CheckoutSession{
		Reference:     reference,
		Identity:      txn.Identity,
		State:         state,
		TransactionID: txn.ID,
		Total:         txn.TotalPaid,
	}, nil
}

func (s *CheckoutService) putSession(ctx context.Context, session *CheckoutSession) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		slog.Warn("checkout: session update failed", "reference", session.Reference, "error", err)
	}
}

func (s *CheckoutService) putPending(reference string, pc *pendingCheckout) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[reference] = pc
}

func (s *CheckoutService) takePending(reference string) *pendingCheckout {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	pc := s.pending[reference]
	delete(s.pending, reference)
	return pc
}
