package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		clubs, err := app.FindCollectionByNameOrId("clubs")
		if err != nil {
			return err
		}
		transactions, err := app.FindCollectionByNameOrId("transactions")
		if err != nil {
			return err
		}
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("purchases")

		collection.Fields.Add(
			&core.SelectField{Name: "type", Required: true, MaxSelect: 1, Values: []string{"ticket", "menu"}},
			&core.RelationField{Name: "transaction", Required: true, CollectionId: transactions.Id, MaxSelect: 1},
			&core.RelationField{Name: "club", Required: true, CollectionId: clubs.Id, MaxSelect: 1},
			&core.TextField{Name: "item", Required: true, Max: 30},
			&core.TextField{Name: "variant", Max: 30},
			&core.RelationField{Name: "event", CollectionId: events.Id, MaxSelect: 1},
			&core.NumberField{Name: "original_base_price"},
			&core.NumberField{Name: "price_at_checkout"},
			&core.BoolField{Name: "dynamic_pricing"},
			&core.TextField{Name: "dynamic_reason", Max: 60},
			&core.NumberField{Name: "platform_fee"},
			&core.NumberField{Name: "club_receives"},
			&core.BoolField{Name: "is_used"},
			&core.TextField{Name: "qr_payload", Max: 1000},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_purchases_transaction", false, "`transaction`", "")
		collection.AddIndex("idx_purchases_club_used", false, "club, is_used", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("purchases")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
