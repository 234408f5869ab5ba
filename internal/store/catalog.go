package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/internal/status"
	"club-commerce/models"
)

type CatalogRepo struct {
	app core.App
}

func (r *CatalogRepo) ClubByID(_ context.Context, id string) (*models.Club, error) {
	record, err := r.app.FindRecordById("clubs", id)
	if err != nil {
		return nil, fmt.Errorf("store: club %s: %w", id, err)
	}

	club := &models.Club{
		ID:     record.Id,
		Name:   record.GetString("name"),
		Active: record.GetBool("active"),
	}
	if err := record.UnmarshalJSONField("open_days", &club.OpenDays); err != nil {
		return nil, fmt.Errorf("store: club %s open_days: %w", id, err)
	}
	if err := record.UnmarshalJSONField("open_hours", &club.OpenHours); err != nil {
		return nil, fmt.Errorf("store: club %s open_hours: %w", id, err)
	}
	return club, nil
}

func (r *CatalogRepo) EventByID(_ context.Context, id string) (*models.Event, error) {
	record, err := r.app.FindRecordById("events", id)
	if err != nil {
		return nil, fmt.Errorf("store: event %s: %w", id, err)
	}
	return eventFromRecord(record), nil
}

// EventOn returns the club's event on a civil date, or nil when the
// date is a regular night.
func (r *CatalogRepo) EventOn(_ context.Context, clubID, date string) (*models.Event, error) {
	records, err := r.app.FindRecordsByFilter(
		"events",
		"club = {:club} && available_date >= {:dayStart} && available_date < {:dayEnd} && active = true",
		"",
		1,
		0,
		dbx.Params{"club": clubID, "dayStart": date + " 00:00:00.000Z", "dayEnd": date + " 23:59:59.999Z"},
	)
	if err != nil {
		return nil, fmt.Errorf("store: events for club %s on %s: %w", clubID, date, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return eventFromRecord(records[0]), nil
}

func eventFromRecord(record *core.Record) *models.Event {
	return &models.Event{
		ID:            record.Id,
		ClubID:        record.GetString("club"),
		Name:          record.GetString("name"),
		AvailableDate: record.GetDateTime("available_date").Time(),
		OpenTime:      record.GetString("open_time"),
		CloseTime:     record.GetString("close_time"),
		Active:        record.GetBool("active"),
	}
}

func (r *CatalogRepo) TicketByID(_ context.Context, id string) (*models.Ticket, error) {
	record, err := r.app.FindRecordById("tickets", id)
	if err != nil {
		return nil, fmt.Errorf("store: ticket %s: %w", id, err)
	}

	return &models.Ticket{
		ID:             record.Id,
		ClubID:         record.GetString("club"),
		EventID:        record.GetString("event"),
		Name:           record.GetString("name"),
		Category:       models.TicketCategory(record.GetString("category")),
		BasePrice:      recordDecimal(record, "base_price"),
		DynamicPricing: record.GetBool("dynamic_pricing"),
		Remaining:      record.GetInt("remaining"),
		Active:         record.GetBool("active"),
	}, nil
}

func (r *CatalogRepo) MenuItemByID(_ context.Context, id string) (*models.MenuItem, error) {
	record, err := r.app.FindRecordById("menu_items", id)
	if err != nil {
		return nil, fmt.Errorf("store: menu item %s: %w", id, err)
	}

	return &models.MenuItem{
		ID:             record.Id,
		ClubID:         record.GetString("club"),
		ParentID:       record.GetString("parent"),
		Name:           record.GetString("name"),
		BasePrice:      recordDecimal(record, "base_price"),
		DynamicPricing: record.GetBool("dynamic_pricing"),
		HasVariants:    record.GetBool("has_variants"),
		Active:         record.GetBool("active"),
	}, nil
}

// DecrementTicketStock atomically takes n units off a limited ticket.
// Unlimited tickets (remaining < 0) always pass.
func (r *CatalogRepo) DecrementTicketStock(_ context.Context, id string, n int) error {
	res, err := r.app.DB().NewQuery(
		"UPDATE tickets SET remaining = CASE WHEN remaining < 0 THEN remaining ELSE remaining - {:n} END " +
			"WHERE id = {:id} AND (remaining < 0 OR remaining >= {:n})",
	).Bind(dbx.Params{"n": n, "id": id}).Execute()
	if err != nil {
		return fmt.Errorf("store: decrement ticket %s: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: decrement ticket %s: %w", id, err)
	}
	if rows == 0 {
		return status.ErrInsufficientQty
	}
	return nil
}
