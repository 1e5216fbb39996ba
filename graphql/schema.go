// Package graphql assembles the read-side GraphQL schema from the
// per-domain query modules.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/graphql/modules/claims"
	"github.com/khojpayo/khojpayo-backend/graphql/modules/items"
)

var db database.DBConnection

// InitDB stores the database connection used by the resolvers
func InitDB(conn database.DBConnection) {
	db = conn
}

// CreateSchema builds the root query from the domain modules
func CreateSchema() (gql.Schema, error) {
	fields := gql.Fields{}

	for name, field := range items.GetQueryFields(db) {
		fields[name] = field
	}

	claimType := claims.GetClaimType(db)
	for name, field := range claims.GetQueryFields(db, claimType) {
		fields[name] = field
	}

	rootQuery := gql.NewObject(gql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return gql.NewSchema(gql.SchemaConfig{Query: rootQuery})
}
