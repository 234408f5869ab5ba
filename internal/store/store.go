// Package store holds the PocketBase-backed repositories. Records are
// mapped to domain models here so the services never touch raw records.
package store

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type Store struct {
	Catalog      *CatalogRepo
	Carts        *CartRepo
	Transactions *TransactionRepo
	Purchases    *PurchaseRepo
}

func New(app core.App) *Store {
	return &Store{
		Catalog:      &CatalogRepo{app: app},
		Carts:        &CartRepo{app: app},
		Transactions: &TransactionRepo{app: app},
		Purchases:    &PurchaseRepo{app: app},
	}
}

func recordDecimal(record *core.Record, field string) decimal.Decimal {
	return decimal.NewFromFloat(record.GetFloat(field)).Round(2)
}
