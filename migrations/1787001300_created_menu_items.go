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

		collection := core.NewBaseCollection("menu_items")

		collection.Fields.Add(
			&core.RelationField{Name: "club", Required: true, CollectionId: clubs.Id, MaxSelect: 1},
			&core.TextField{Name: "parent", Max: 30},
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.NumberField{Name: "base_price"},
			&core.BoolField{Name: "dynamic_pricing"},
			&core.BoolField{Name: "has_variants"},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_menu_items_club", false, "club", "")
		collection.AddIndex("idx_menu_items_parent", false, "parent", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("menu_items")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
