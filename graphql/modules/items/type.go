// Package items defines the GraphQL types for item listings.
package items

import (
	"github.com/graphql-go/graphql"

	"github.com/khojpayo/khojpayo-backend/model"
)

// ItemType represents a lost-or-found report
var ItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Item",
	Fields: graphql.Fields{
		"key": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			item, _ := p.Source.(model.Item)
			return item.Key, nil
		}},
		"type":            &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
		"user_id":         &graphql.Field{Type: graphql.String},
		"organization_id": &graphql.Field{Type: graphql.String},
		"title":           &graphql.Field{Type: graphql.String},
		"description":     &graphql.Field{Type: graphql.String},
		"category":        &graphql.Field{Type: graphql.String},
		"district":        &graphql.Field{Type: graphql.String},
		"municipality":    &graphql.Field{Type: graphql.String},
		"location_detail": &graphql.Field{Type: graphql.String},
		"occurred_at":     &graphql.Field{Type: graphql.String},
		"image_urls":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		"created_at":      &graphql.Field{Type: graphql.String},
	},
})

// MatchType represents a scored candidate pairing
var MatchType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Match",
	Fields: graphql.Fields{
		"item":  &graphql.Field{Type: ItemType},
		"score": &graphql.Field{Type: graphql.Int},
	},
})
