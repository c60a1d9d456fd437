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
		posts, err := app.FindCollectionByNameOrId("blog_posts")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("blog_comments")

		collection.Fields.Add(
			&core.RelationField{Name: "post_id", Required: true, CollectionId: posts.Id, MaxSelect: 1, CascadeDelete: true},
			&core.RelationField{Name: "user_id", Required: true, CollectionId: users.Id, MaxSelect: 1, CascadeDelete: true},
			&core.TextField{Name: "content", Required: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_blog_comments_post", false, "post_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("blog_comments")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
