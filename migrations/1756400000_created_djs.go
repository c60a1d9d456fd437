package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("djs")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true},
			&core.TextField{Name: "genre"},
			&core.TextField{Name: "bio"},
			&core.FileField{Name: "photo", MaxSelect: 1, MaxSize: 5 << 20, MimeTypes: []string{"image/png", "image/jpeg", "image/webp"}},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("djs")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
