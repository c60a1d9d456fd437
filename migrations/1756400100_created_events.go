package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		djs, err := app.FindCollectionByNameOrId("djs")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true},
			&core.TextField{Name: "slug", Required: true},
			&core.EditorField{Name: "description"},
			&core.SelectField{Name: "country", Required: true, MaxSelect: 1,
				Values: []string{"chile", "argentina", "peru", "colombia", "mexico"}},
			&core.TextField{Name: "city"},
			&core.TextField{Name: "venue"},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1,
				Values: []string{"draft", "published", "cancelled", "finished"}},
			&core.DateField{Name: "start_at", Required: true},
			&core.DateField{Name: "end_at"},
			// Zone layout and phase pricing are denormalized documents;
			// the shapes live in models.Zone and models.SalesPhase.
			&core.JSONField{Name: "zones"},
			&core.JSONField{Name: "sales_phases"},
			&core.SelectField{Name: "ticket_delivery_mode", MaxSelect: 1,
				Values: []string{"automatic", "manualUpload"}},
			&core.DateField{Name: "download_available_at"},
			&core.RelationField{Name: "djs", CollectionId: djs.Id, MaxSelect: 20},
			&core.FileField{Name: "cover", MaxSelect: 1, MaxSize: 10 << 20, MimeTypes: []string{"image/png", "image/jpeg", "image/webp"}},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_events_slug", true, "slug", "")
		collection.AddIndex("idx_events_status_country", false, "status, country", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
