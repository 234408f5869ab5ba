package services

import (
	"context"
	"time"

	"club-commerce/internal/cartlock"
	"club-commerce/internal/status"
	"club-commerce/internal/store"
	"club-commerce/models"
)

// CartService owns the cart invariants: one club, one date, one kind of
// merchandise per cart, and no edits while a checkout holds the lock.
type CartService struct {
	store  *store.Store
	locks  *cartlock.Manager
	maxAge time.Duration
}

func NewCartService(st *store.Store, locks *cartlock.Manager, maxAge time.Duration) *CartService {
	return &CartService{
		store:  st,
		locks:  locks,
		maxAge: maxAge,
	}
}

func (s *CartService) Lines(ctx context.Context, identity string) ([]models.CartLine, error) {
	return s.store.Carts.LinesFor(ctx, identity)
}

// AddLine appends a line to the cart after checking the cart invariants
// against the lines already present.
func (s *CartService) AddLine(ctx context.Context, line *models.CartLine) error {
	if s.locks.IsLockedSmart(ctx, line.Identity) {
		return status.ErrCheckoutInProgress
	}

	if err := s.checkItem(ctx, line); err != nil {
		return err
	}

	existing, err := s.store.Carts.LinesFor(ctx, line.Identity)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Kind != line.Kind {
			return status.ErrMixedCart
		}
		if other.ClubID != line.ClubID || !other.TargetDate.Equal(line.TargetDate) {
			return status.ErrMixedClubCart
		}
	}

	return s.store.Carts.Add(ctx, line)
}

func (s *CartService) UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error {
	if s.locks.IsLockedSmart(ctx, identity) {
		return status.ErrCheckoutInProgress
	}
	return s.store.Carts.UpdateQuantity(ctx, lineID, quantity)
}

func (s *CartService) Clear(ctx context.Context, identity string) error {
	if s.locks.IsLockedSmart(ctx, identity) {
		return status.ErrCheckoutInProgress
	}
	return s.store.Carts.Clear(ctx, identity)
}

// ValidateForCheckout re-checks the invariants at checkout time and
// returns the lines. Carts older than the staleness window are rejected
// outright; the buyer rebuilds the cart at current prices.
func (s *CartService) ValidateForCheckout(ctx context.Context, identity string, now time.Time) ([]models.CartLine, error) {
	lines, err := s.store.Carts.LinesFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, status.ErrEmptyCart
	}

	// Lines are sorted by creation time; the first is the oldest.
	first := lines[0]
	if now.Sub(first.CreatedAt) > s.maxAge {
		return nil, status.ErrStaleCart
	}

	for _, line := range lines {
		if line.Kind != first.Kind {
			return nil, status.ErrMixedCart
		}
		if line.ClubID != first.ClubID || !line.TargetDate.Equal(first.TargetDate) {
			return nil, status.ErrMixedClubCart
		}
		if err := s.checkItem(ctx, &line); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (s *CartService) checkItem(ctx context.Context, line *models.CartLine) error {
	switch line.Kind {
	case models.CartTicket:
		ticket, err := s.store.Catalog.TicketByID(ctx, line.ItemID)
		if err != nil {
			return err
		}
		if !ticket.Active {
			return status.ErrInactiveItem
		}
		if ticket.Limited() && ticket.Remaining < line.Quantity {
			return status.ErrInsufficientQty
		}
	case models.CartMenu:
		itemID := line.ItemID
		if line.VariantID != "" {
			itemID = line.VariantID
		}
		item, err := s.store.Catalog.MenuItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return status.ErrInactiveItem
		}
	}
	return nil
}
