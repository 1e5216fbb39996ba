package matching

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/model"
)

// FindCandidates fetches active items of the opposite type in the same
// category as the report.
func FindCandidates(ctx context.Context, db database.DBConnection, report model.Item, limit int) ([]model.Item, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		FOR i IN items
			FILTER i.type == @type
			   AND LOWER(i.category) == LOWER(@category)
			   AND i.status == @status
			   AND i._key != @self
			LIMIT @limit
			RETURN i
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"type":     report.Type.Opposite(),
			"category": report.Category,
			"status":   model.ItemActive,
			"self":     report.Key,
			"limit":    limit,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var items []model.Item
	for cursor.HasMore() {
		var item model.Item
		if _, err := cursor.ReadDocument(ctx, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
