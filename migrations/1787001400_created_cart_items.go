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

		collection := core.NewBaseCollection("cart_items")

		collection.Fields.Add(
			&core.TextField{Name: "identity", Required: true, Max: 100},
			&core.RelationField{Name: "club", Required: true, CollectionId: clubs.Id, MaxSelect: 1},
			&core.SelectField{Name: "kind", Required: true, MaxSelect: 1, Values: []string{"ticket", "menu"}},
			&core.TextField{Name: "item", Required: true, Max: 30},
			&core.TextField{Name: "variant", Max: 30},
			&core.DateField{Name: "target_date", Required: true},
			&core.NumberField{Name: "quantity", Required: true, OnlyInt: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_cart_items_identity", false, "identity", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("cart_items")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
