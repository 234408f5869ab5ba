package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/models"
)

type PurchaseRepo struct {
	app core.App
}

func purchaseFromRecord(record *core.Record) *models.Purchase {
	return &models.Purchase{
		ID:                record.Id,
		Type:              models.PurchaseType(record.GetString("type")),
		TransactionID:     record.GetString("transaction"),
		ClubID:            record.GetString("club"),
		ItemID:            record.GetString("item"),
		VariantID:         record.GetString("variant"),
		EventID:           record.GetString("event"),
		OriginalBasePrice: recordDecimal(record, "original_base_price"),
		PriceAtCheckout:   recordDecimal(record, "price_at_checkout"),
		DynamicPricing:    record.GetBool("dynamic_pricing"),
		DynamicReason:     record.GetString("dynamic_reason"),
		PlatformFee:       recordDecimal(record, "platform_fee"),
		ClubReceives:      recordDecimal(record, "club_receives"),
		IsUsed:            record.GetBool("is_used"),
		QRPayload:         record.GetString("qr_payload"),
		CreatedAt:         record.GetDateTime("created").Time(),
	}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *models.Purchase) error {
	collection, err := r.app.FindCollectionByNameOrId("purchases")
	if err != nil {
		return fmt.Errorf("store: purchases collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("type", string(p.Type))
	record.Set("transaction", p.TransactionID)
	record.Set("club", p.ClubID)
	record.Set("item", p.ItemID)
	record.Set("variant", p.VariantID)
	record.Set("event", p.EventID)
	record.Set("original_base_price", p.OriginalBasePrice.InexactFloat64())
	record.Set("price_at_checkout", p.PriceAtCheckout.InexactFloat64())
	record.Set("dynamic_pricing", p.DynamicPricing)
	record.Set("dynamic_reason", p.DynamicReason)
	record.Set("platform_fee", p.PlatformFee.InexactFloat64())
	record.Set("club_receives", p.ClubReceives.InexactFloat64())
	record.Set("is_used", p.IsUsed)
	record.Set("qr_payload", p.QRPayload)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("store: create purchase: %w", err)
	}
	p.ID = record.Id
	p.CreatedAt = record.GetDateTime("created").Time()
	return nil
}

func (r *PurchaseRepo) ByID(_ context.Context, id string) (*models.Purchase, error) {
	record, err := r.app.FindRecordById("purchases", id)
	if err != nil {
		return nil, fmt.Errorf("store: purchase %s: %w", id, err)
	}
	return purchaseFromRecord(record), nil
}

// SetQRPayload attaches the sealed payload after the row exists; the
// payload encodes the row id so it cannot be written on create.
func (r *PurchaseRepo) SetQRPayload(ctx context.Context, id, payload string) error {
	record, err := r.app.FindRecordById("purchases", id)
	if err != nil {
		return fmt.Errorf("store: purchase %s: %w", id, err)
	}
	record.Set("qr_payload", payload)
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("store: attach qr to %s: %w", id, err)
	}
	return nil
}

// MarkUsed flips the redemption flag. Returns false when the purchase
// was already redeemed.
func (r *PurchaseRepo) MarkUsed(ctx context.Context, id string) (bool, error) {
	record, err := r.app.FindRecordById("purchases", id)
	if err != nil {
		return false, fmt.Errorf("store: purchase %s: %w", id, err)
	}
	if record.GetBool("is_used") {
		return false, nil
	}
	record.Set("is_used", true)
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return false, fmt.Errorf("store: redeem purchase %s: %w", id, err)
	}
	return true, nil
}

func (r *PurchaseRepo) ByTransaction(_ context.Context, transactionID string) ([]*models.Purchase, error) {
	records, err := r.app.FindRecordsByFilter(
		"purchases",
		"transaction = {:transaction}",
		"created",
		0,
		0,
		dbx.Params{"transaction": transactionID},
	)
	if err != nil {
		return nil, fmt.Errorf("store: purchases for transaction %s: %w", transactionID, err)
	}

	purchases := make([]*models.Purchase, 0, len(records))
	for _, record := range records {
		purchases = append(purchases, purchaseFromRecord(record))
	}
	return purchases, nil
}

// CountByTransaction backs the fulfillment idempotency check.
func (r *PurchaseRepo) CountByTransaction(ctx context.Context, transactionID string) (int, error) {
	purchases, err := r.ByTransaction(ctx, transactionID)
	if err != nil {
		return 0, err
	}
	return len(purchases), nil
}
