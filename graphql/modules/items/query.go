// Package items defines the GraphQL queries for item listings.
package items

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/internal/matching"
	"github.com/khojpayo/khojpayo-backend/model"
)

// GetQueryFields returns the item queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		"item": &graphql.Field{
			Type: ItemType,
			Args: graphql.FieldConfigArgument{
				"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				key := p.Args["key"].(string)
				return fetchItem(db, key)
			},
		},
		"items": &graphql.Field{
			Type: graphql.NewList(ItemType),
			Args: graphql.FieldConfigArgument{
				"type":     &graphql.ArgumentConfig{Type: graphql.String},
				"category": &graphql.ArgumentConfig{Type: graphql.String},
				"district": &graphql.ArgumentConfig{Type: graphql.String},
				"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return resolveItems(db, p.Args)
			},
		},
		"itemMatches": &graphql.Field{
			Type: graphql.NewList(MatchType),
			Args: graphql.FieldConfigArgument{
				"key":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				key := p.Args["key"].(string)
				limit, _ := p.Args["limit"].(int)

				item, err := fetchItem(db, key)
				if err != nil || item == nil {
					return nil, err
				}

				candidates, err := matching.FindCandidates(context.Background(), db, *item, limit)
				if err != nil {
					return nil, err
				}
				return matching.Rank(*item, candidates), nil
			},
		},
	}
}

func fetchItem(db database.DBConnection, key string) (*model.Item, error) {
	ctx := context.Background()
	query := `
		FOR i IN items
			FILTER i._key == @key
			LIMIT 1
			RETURN i
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var item model.Item
	if _, err := cursor.ReadDocument(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func resolveItems(db database.DBConnection, args map[string]interface{}) ([]model.Item, error) {
	ctx := context.Background()

	query := `
		FOR i IN items
			FILTER i.status == @status
	`
	bindVars := map[string]interface{}{"status": model.ItemActive}

	if v, ok := args["type"].(string); ok && v != "" {
		query += ` FILTER i.type == @type`
		bindVars["type"] = v
	}
	if v, ok := args["category"].(string); ok && v != "" {
		query += ` FILTER LOWER(i.category) == LOWER(@category)`
		bindVars["category"] = v
	}
	if v, ok := args["district"].(string); ok && v != "" {
		query += ` FILTER LOWER(i.district) == LOWER(@district)`
		bindVars["district"] = v
	}

	limit, _ := args["limit"].(int)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += ` SORT i.created_at DESC LIMIT @limit RETURN i`
	bindVars["limit"] = limit

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	items := []model.Item{}
	for cursor.HasMore() {
		var item model.Item
		if _, err := cursor.ReadDocument(ctx, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
