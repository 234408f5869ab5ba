package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/models"
)

type TransactionRepo struct {
	app core.App
}

func transactionFromRecord(record *core.Record) *models.PaymentTransaction {
	txn := &models.PaymentTransaction{
		ID:               record.Id,
		Reference:        record.GetString("reference"),
		Identity:         record.GetString("identity"),
		ClubID:           record.GetString("club"),
		Email:            record.GetString("email"),
		TotalPaid:        recordDecimal(record, "total_paid"),
		ClubReceives:     recordDecimal(record, "club_receives"),
		PlatformReceives: recordDecimal(record, "platform_receives"),
		GatewayFee:       recordDecimal(record, "gateway_fee"),
		GatewayTax:       recordDecimal(record, "gateway_tax"),
		Provider:         record.GetString("provider"),
		ProviderTxID:     record.GetString("provider_tx_id"),
		Status:           models.PaymentStatus(record.GetString("status")),
		CreatedAt:        record.GetDateTime("created").Time(),
	}
	if resolved := record.GetDateTime("resolved_at").Time(); !resolved.IsZero() {
		txn.ResolvedAt = &resolved
	}
	return txn
}

func (r *TransactionRepo) Create(ctx context.Context, txn *models.PaymentTransaction) error {
	collection, err := r.app.FindCollectionByNameOrId("transactions")
	if err != nil {
		return fmt.Errorf("store: transactions collection: %w", err)
	}

	record := core.NewRecord(collection)
	r.apply(record, txn)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("store: create transaction %s: %w", txn.Reference, err)
	}
	txn.ID = record.Id
	txn.CreatedAt = record.GetDateTime("created").Time()
	return nil
}

// Update rewrites the transaction row in place. Rows are never replaced
// so the unique provider_tx_id index cannot race against itself.
func (r *TransactionRepo) Update(ctx context.Context, txn *models.PaymentTransaction) error {
	record, err := r.app.FindRecordById("transactions", txn.ID)
	if err != nil {
		return fmt.Errorf("store: transaction %s: %w", txn.ID, err)
	}

	r.apply(record, txn)
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("store: update transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (r *TransactionRepo) apply(record *core.Record, txn *models.PaymentTransaction) {
	record.Set("reference", txn.Reference)
	record.Set("identity", txn.Identity)
	record.Set("club", txn.ClubID)
	record.Set("email", txn.Email)
	record.Set("total_paid", txn.TotalPaid.InexactFloat64())
	record.Set("club_receives", txn.ClubReceives.InexactFloat64())
	record.Set("platform_receives", txn.PlatformReceives.InexactFloat64())
	record.Set("gateway_fee", txn.GatewayFee.InexactFloat64())
	record.Set("gateway_tax", txn.GatewayTax.InexactFloat64())
	record.Set("provider", txn.Provider)
	record.Set("provider_tx_id", txn.ProviderTxID)
	record.Set("status", string(txn.Status))
	if txn.ResolvedAt != nil {
		record.Set("resolved_at", txn.ResolvedAt.UTC().Format(time.RFC3339))
	}
}

func (r *TransactionRepo) FindByReference(_ context.Context, reference string) (*models.PaymentTransaction, error) {
	record, err := r.app.FindFirstRecordByFilter(
		"transactions",
		"reference = {:reference}",
		dbx.Params{"reference": reference},
	)
	if err != nil {
		return nil, fmt.Errorf("store: transaction by reference %s: %w", reference, err)
	}
	return transactionFromRecord(record), nil
}

func (r *TransactionRepo) FindByProviderTxID(_ context.Context, providerTxID string) (*models.PaymentTransaction, error) {
	record, err := r.app.FindFirstRecordByFilter(
		"transactions",
		"provider_tx_id = {:id}",
		dbx.Params{"id": providerTxID},
	)
	if err != nil {
		return nil, fmt.Errorf("store: transaction by provider id %s: %w", providerTxID, err)
	}
	return transactionFromRecord(record), nil
}
