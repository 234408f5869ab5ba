package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("clubs")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.JSONField{Name: "open_days", MaxSize: 2000},
			&core.JSONField{Name: "open_hours", MaxSize: 5000},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_clubs_active", false, "active", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("clubs")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
