package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/models"
)

type CartRepo struct {
	app core.App
}

func cartLineFromRecord(record *core.Record) models.CartLine {
	return models.CartLine{
		ID:         record.Id,
		Identity:   record.GetString("identity"),
		ClubID:     record.GetString("club"),
		Kind:       models.CartKind(record.GetString("kind")),
		ItemID:     record.GetString("item"),
		VariantID:  record.GetString("variant"),
		TargetDate: record.GetDateTime("target_date").Time(),
		Quantity:   record.GetInt("quantity"),
		CreatedAt:  record.GetDateTime("created").Time(),
	}
}

func (r *CartRepo) LinesFor(_ context.Context, identity string) ([]models.CartLine, error) {
	records, err := r.app.FindRecordsByFilter(
		"cart_items",
		"identity = {:identity}",
		"created",
		0,
		0,
		dbx.Params{"identity": identity},
	)
	if err != nil {
		return nil, fmt.Errorf("store: cart lines for %s: %w", identity, err)
	}

	lines := make([]models.CartLine, 0, len(records))
	for _, record := range records {
		lines = append(lines, cartLineFromRecord(record))
	}
	return lines, nil
}

func (r *CartRepo) Add(ctx context.Context, line *models.CartLine) error {
	collection, err := r.app.FindCollectionByNameOrId("cart_items")
	if err != nil {
		return fmt.Errorf("store: cart_items collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("identity", line.Identity)
	record.Set("club", line.ClubID)
	record.Set("kind", string(line.Kind))
	record.Set("item", line.ItemID)
	record.Set("variant", line.VariantID)
	record.Set("target_date", line.TargetDate)
	record.Set("quantity", line.Quantity)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("store: add cart line: %w", err)
	}
	line.ID = record.Id
	line.CreatedAt = record.GetDateTime("created").Time()
	return nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	record, err := r.app.FindRecordById("cart_items", lineID)
	if err != nil {
		return fmt.Errorf("store: cart line %s: %w", lineID, err)
	}

	record.Set("quantity", quantity)
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("store: update cart line %s: %w", lineID, err)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, identity string) error {
	records, err := r.app.FindRecordsByFilter(
		"cart_items",
		"identity = {:identity}",
		"",
		0,
		0,
		dbx.Params{"identity": identity},
	)
	if err != nil {
		return fmt.Errorf("store: clear cart for %s: %w", identity, err)
	}

	for _, record := range records {
		if err := r.app.Delete(record); err != nil {
			return fmt.Errorf("store: clear cart for %s: %w", identity, err)
		}
	}
	return nil
}

// IsEmpty satisfies cartlock.CartChecker.
func (r *CartRepo) IsEmpty(ctx context.Context, identity string) (bool, error) {
	lines, err := r.LinesFor(ctx, identity)
	if err != nil {
		return false, err
	}
	return len(lines) == 0, nil
}
