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

		collection := core.NewBaseCollection("transactions")

		collection.Fields.Add(
			&core.TextField{Name: "reference", Required: true, Max: 100},
			&core.TextField{Name: "identity", Required: true, Max: 100},
			&core.RelationField{Name: "club", Required: true, CollectionId: clubs.Id, MaxSelect: 1},
			&core.EmailField{Name: "email"},
			&core.NumberField{Name: "total_paid"},
			&core.NumberField{Name: "club_receives"},
			&core.NumberField{Name: "platform_receives"},
			&core.NumberField{Name: "gateway_fee"},
			&core.NumberField{Name: "gateway_tax"},
			&core.TextField{Name: "provider", Max: 50},
			&core.TextField{Name: "provider_tx_id", Max: 100},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: []string{"PENDING", "APPROVED", "DECLINED", "VOIDED"}},
			&core.DateField{Name: "resolved_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_transactions_reference", true, "reference", "")
		collection.AddIndex("idx_transactions_provider_tx", true, "provider_tx_id", "provider_tx_id != ''")
		collection.AddIndex("idx_transactions_identity", false, "identity", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("transactions")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
