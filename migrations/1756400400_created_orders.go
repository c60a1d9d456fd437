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

		collection := core.NewBaseCollection("orders")

		collection.Fields.Add(
			&core.TextField{Name: "reference", Required: true},
			&core.RelationField{Name: "user_id", Required: true, CollectionId: users.Id, MaxSelect: 1},
			&core.JSONField{Name: "items", Required: true},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1,
				Values: []string{"pending", "payment_approved", "cancelled"}},
			&core.SelectField{Name: "payment_status", Required: true, MaxSelect: 1,
				Values: []string{"pending", "approved", "rejected"}},
			&core.TextField{Name: "payment_method"},
			// Raw gateway status as last reported by the webhook.
			&core.TextField{Name: "provider_status"},
			&core.JSONField{Name: "status_history"},
			&core.JSONField{Name: "payment_details"},
			&core.NumberField{Name: "total_amount", Required: true},
			&core.SelectField{Name: "currency", Required: true, MaxSelect: 1,
				Values: []string{"CLP", "ARS", "PEN", "COP", "MXN", "USD"}},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_orders_user", false, "user_id", "")
		collection.AddIndex("idx_orders_reference", true, "reference", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
