// Package notifications implements the REST API handlers for a user's
// notification feed.
package notifications

import (
	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/model"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
)

// ListNotifications returns the caller's notifications, newest first
func ListNotifications(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		query := `
			FOR n IN notifications
				FILTER n.user_id == @user
		`
		bindVars := map[string]interface{}{"user": auth.CurrentUserKey(c)}

		if c.Query("unread") == "true" {
			query += ` FILTER n.read_at == null`
		}
		query += `
				SORT n.created_at DESC
				LIMIT 100
				RETURN n
		`

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query notifications"})
		}
		defer cursor.Close()

		list := []model.Notification{}
		for cursor.HasMore() {
			var n model.Notification
			if _, err := cursor.ReadDocument(ctx, &n); err != nil {
				continue
			}
			list = append(list, n)
		}
		return c.JSON(list)
	}
}

// MarkRead marks one of the caller's notifications as read
func MarkRead(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		query := `
			FOR n IN notifications
				FILTER n._key == @key AND n.user_id == @user
				UPDATE n WITH { read_at: DATE_ISO8601(DATE_NOW()) } IN notifications
				RETURN NEW
		`
		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"key":  c.Params("id"),
				"user": auth.CurrentUserKey(c),
			},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
		}
		defer cursor.Close()

		if !cursor.HasMore() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
		}
		var n model.Notification
		if _, err := cursor.ReadDocument(ctx, &n); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read notification"})
		}
		return c.JSON(n)
	}
}
