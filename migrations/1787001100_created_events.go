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

		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.RelationField{Name: "club", Required: true, CollectionId: clubs.Id, MaxSelect: 1},
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.DateField{Name: "available_date", Required: true},
			&core.TextField{Name: "open_time", Max: 5},
			&core.TextField{Name: "close_time", Max: 5},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_events_club_date", false, "club, available_date", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
