package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		transactions, err := app.FindCollectionByNameOrId("ticket_transactions")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("payment_installments")

		collection.Fields.Add(
			&core.RelationField{Name: "transaction_id", Required: true, CollectionId: transactions.Id, MaxSelect: 1, CascadeDelete: true},
			// Installment 0 is the reservation fee.
			&core.NumberField{Name: "installment_number"},
			&core.NumberField{Name: "amount", Required: true},
			&core.SelectField{Name: "currency", Required: true, MaxSelect: 1,
				Values: []string{"CLP", "ARS", "PEN", "COP", "MXN", "USD"}},
			&core.DateField{Name: "due_date", Required: true},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1,
				Values: []string{"pending", "paid", "rejected"}},
			&core.BoolField{Name: "admin_approved"},
			&core.FileField{Name: "proof", MaxSelect: 1, MaxSize: 10 << 20,
				MimeTypes: []string{"image/png", "image/jpeg", "image/webp", "application/pdf"}},
			&core.DateField{Name: "proof_uploaded_at"},
			&core.TextField{Name: "reject_reason"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_installments_transaction", false, "transaction_id", "")
		collection.AddIndex("idx_installments_review_queue", false, "status, admin_approved", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("payment_installments")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
