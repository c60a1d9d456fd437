package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("ticket_transactions")

		collection.Fields.Add(
			&core.RelationField{Name: "user_id", Required: true, CollectionId: users.Id, MaxSelect: 1},
			&core.RelationField{Name: "event_id", Required: true, CollectionId: events.Id, MaxSelect: 1},
			&core.JSONField{Name: "ticket_items", Required: true},
			&core.NumberField{Name: "total_amount", Required: true},
			&core.SelectField{Name: "currency", Required: true, MaxSelect: 1,
				Values: []string{"CLP", "ARS", "PEN", "COP", "MXN", "USD"}},
			&core.SelectField{Name: "payment_method", Required: true, MaxSelect: 1,
				Values: []string{"online", "offline"}},
			&core.SelectField{Name: "payment_type", Required: true, MaxSelect: 1,
				Values: []string{"full", "installment"}},
			&core.SelectField{Name: "payment_status", Required: true, MaxSelect: 1,
				Values: []string{"pending", "approved", "rejected"}},
			&core.SelectField{Name: "delivery_mode", MaxSelect: 1,
				Values: []string{"automatic", "manualUpload"}},
			&core.SelectField{Name: "delivery_status", MaxSelect: 1,
				Values: []string{"pending", "scheduled", "available", "delivered"}},
			&core.BoolField{Name: "is_courtesy"},
			&core.DateField{Name: "download_available_at"},
			&core.DateField{Name: "expires_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_transactions_user", false, "user_id", "")
		collection.AddIndex("idx_transactions_event", false, "event_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("ticket_transactions")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
