package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"club-commerce/internal/fees"
	"club-commerce/internal/pricing"
	"club-commerce/internal/status"
	"club-commerce/internal/store"
	"club-commerce/internal/venuetime"
	"club-commerce/models"
)

// PricingService resolves a cart line to an absolute-time pricing input
// and quotes it. The arithmetic itself lives in the pricing package;
// this layer only loads records and anchors schedules to instants.
type PricingService struct {
	store      *store.Store
	loc        *time.Location
	graceHours int
}

func NewPricingService(st *store.Store, loc *time.Location, graceHours int) *PricingService {
	return &PricingService{
		store:      st,
		loc:        loc,
		graceHours: graceHours,
	}
}

// LineQuote carries one priced cart line through checkout.
type LineQuote struct {
	Line      models.CartLine
	ItemName  string
	BasePrice decimal.Decimal
	EventID   string
	FeeKind   fees.Kind
	Quote     pricing.Quote
}

// Subtotal is the quoted unit price times the line quantity.
func (q *LineQuote) Subtotal() decimal.Decimal {
	return q.Quote.Price.Mul(decimal.NewFromInt(int64(q.Line.Quantity)))
}

// QuoteLine prices a single cart line at the given instant.
func (s *PricingService) QuoteLine(ctx context.Context, line models.CartLine, now time.Time) (*LineQuote, error) {
	club, err := s.store.Catalog.ClubByID(ctx, line.ClubID)
	if err != nil {
		return nil, err
	}
	if !club.Active {
		return nil, status.ErrInactiveItem
	}

	anchor := venuetime.NoonAnchor(line.TargetDate, s.loc)

	switch line.Kind {
	case models.CartTicket:
		return s.quoteTicket(ctx, club, line, anchor, now)
	case models.CartMenu:
		return s.quoteMenuItem(ctx, club, line, anchor, now)
	default:
		return nil, fmt.Errorf("pricing: unknown cart line kind %q", line.Kind)
	}
}

func (s *PricingService) quoteTicket(ctx context.Context, club *models.Club, line models.CartLine, anchor, now time.Time) (*LineQuote, error) {
	ticket, err := s.store.Catalog.TicketByID(ctx, line.ItemID)
	if err != nil {
		return nil, err
	}
	if !ticket.Active {
		return nil, status.ErrInactiveItem
	}

	if ticket.EventID != "" {
		event, err := s.store.Catalog.EventByID(ctx, ticket.EventID)
		if err != nil {
			return nil, err
		}
		if !event.Active {
			return nil, status.ErrInactiveItem
		}

		start, _, _ := s.eventWindow(club, event, anchor)

		quote := pricing.PriceEventTicket(pricing.EventTicketInput{
			BasePrice:      ticket.BasePrice,
			DynamicPricing: ticket.DynamicPricing,
			Free:           ticket.IsFree(),
			EventStart:     start,
			GraceHours:     s.graceHours,
			Now:            now,
		})
		return &LineQuote{
			Line:      line,
			ItemName:  ticket.Name,
			BasePrice: ticket.BasePrice,
			EventID:   event.ID,
			FeeKind:   fees.KindEvent,
			Quote:     quote,
		}, nil
	}

	window, openToday := s.clubWindow(club, anchor)

	quote := pricing.PriceCover(pricing.CoverInput{
		BasePrice:      ticket.BasePrice,
		DynamicPricing: ticket.DynamicPricing,
		OpenToday:      openToday,
		Window:         window,
		Now:            now,
	})
	return &LineQuote{
		Line:      line,
		ItemName:  ticket.Name,
		BasePrice: ticket.BasePrice,
		FeeKind:   fees.KindCover,
		Quote:     quote,
	}, nil
}

func (s *PricingService) quoteMenuItem(ctx context.Context, club *models.Club, line models.CartLine, anchor, now time.Time) (*LineQuote, error) {
	itemID := line.ItemID
	if line.VariantID != "" {
		itemID = line.VariantID
	}
	item, err := s.store.Catalog.MenuItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, status.ErrInactiveItem
	}

	event, err := s.store.Catalog.EventOn(ctx, line.ClubID, anchor.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	if event != nil {
		start, window, hasWindow := s.eventWindow(club, event, anchor)

		quote := pricing.PriceEventMenu(pricing.EventMenuInput{
			BasePrice:          item.BasePrice,
			DynamicPricing:     item.DynamicPricing,
			ParentWithVariants: item.HasVariants,
			EventStart:         start,
			HasWindow:          hasWindow,
			Window:             window,
			Now:                now,
		})
		return &LineQuote{
			Line:      line,
			ItemName:  item.Name,
			BasePrice: item.BasePrice,
			EventID:   event.ID,
			FeeKind:   fees.KindMenu,
			Quote:     quote,
		}, nil
	}

	window, openToday := s.clubWindow(club, anchor)

	quote := pricing.PriceMenu(pricing.MenuInput{
		BasePrice:          item.BasePrice,
		DynamicPricing:     item.DynamicPricing,
		ParentWithVariants: item.HasVariants,
		OpenToday:          openToday,
		Window:             window,
		Now:                now,
	})
	return &LineQuote{
		Line:      line,
		ItemName:  item.Name,
		BasePrice: item.BasePrice,
		FeeKind:   fees.KindMenu,
		Quote:     quote,
	}, nil
}

// clubWindow resolves the club's schedule on the anchor's civil date.
// A malformed schedule never blocks the sale: it is logged and priced
// as a closed day.
func (s *PricingService) clubWindow(club *models.Club, anchor time.Time) (venuetime.Window, bool) {
	oh, ok := club.WindowFor(venuetime.Weekday(anchor, s.loc))
	if !ok {
		return venuetime.Window{}, false
	}
	window, err := venuetime.ResolveWindow(anchor, oh.Open, oh.Close, s.loc)
	if err != nil {
		slog.Error("pricing: bad schedule window", "club", club.ID, "weekday", oh.Weekday, "error", err)
		return venuetime.Window{}, false
	}
	return window, true
}

// eventWindow resolves the event's start instant and, when available, its
// open window. The event's own hours win over the club schedule; an
// event on a day with neither falls back to the noon anchor. Malformed
// hours degrade the same way instead of blocking the sale.
func (s *PricingService) eventWindow(club *models.Club, event *models.Event, anchor time.Time) (time.Time, venuetime.Window, bool) {
	if event.HasOwnWindow() {
		window, err := venuetime.ResolveWindow(anchor, event.OpenTime, event.CloseTime, s.loc)
		if err == nil {
			return window.Open, window, true
		}
		slog.Error("pricing: bad event window", "event", event.ID, "error", err)
	}

	if window, ok := s.clubWindow(club, anchor); ok {
		return window.Open, window, true
	}

	return anchor, venuetime.Window{}, false
}
