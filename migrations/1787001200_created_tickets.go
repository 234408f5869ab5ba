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
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("tickets")

		collection.Fields.Add(
			&core.RelationField{Name: "club", Required: true, CollectionId: clubs.Id, MaxSelect: 1},
			&core.RelationField{Name: "event", CollectionId: events.Id, MaxSelect: 1},
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.SelectField{Name: "category", Required: true, MaxSelect: 1, Values: []string{"GENERAL", "FREE", "EVENT"}},
			&core.NumberField{Name: "base_price"},
			&core.BoolField{Name: "dynamic_pricing"},
			&core.NumberField{Name: "remaining", OnlyInt: true},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_tickets_club", false, "club", "")
		collection.AddIndex("idx_tickets_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
