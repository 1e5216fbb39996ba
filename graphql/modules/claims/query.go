// Package claims defines the GraphQL queries for the claim lifecycle.
package claims

import (
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/model"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
)

// GetQueryFields returns the claim queries to be mounted in the root schema.
// Claims are private: the resolvers read the caller's identity from the
// request context.
func GetQueryFields(db database.DBConnection, claimType *graphql.Object) graphql.Fields {
	return graphql.Fields{
		"myClaims": &graphql.Field{
			Type: graphql.NewList(claimType),
			Args: graphql.FieldConfigArgument{
				"status": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				userKey := auth.UserFromContext(p.Context)
				if userKey == "" {
					return nil, fmt.Errorf("authentication required")
				}

				query := `
					FOR cl IN claims
						FILTER cl.claimant_id == @claimant
				`
				bindVars := map[string]interface{}{"claimant": userKey}
				if status, ok := p.Args["status"].(string); ok && status != "" {
					query += ` FILTER cl.status == @status`
					bindVars["status"] = status
				}
				query += ` SORT cl.created_at DESC RETURN cl`

				return readClaims(db, p, query, bindVars)
			},
		},
		"itemClaims": &graphql.Field{
			Type: graphql.NewList(claimType),
			Args: graphql.FieldConfigArgument{
				"item_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				userKey := auth.UserFromContext(p.Context)
				if userKey == "" {
					return nil, fmt.Errorf("authentication required")
				}
				itemID := p.Args["item_id"].(string)

				if auth.RoleFromContext(p.Context) != "admin" {
					owns, err := ownsItem(db, p, itemID, userKey)
					if err != nil {
						return nil, err
					}
					if !owns {
						return nil, fmt.Errorf("not authorized to list claims on this item")
					}
				}

				query := `
					FOR cl IN claims
						FILTER cl.item_id == @item
						SORT cl.created_at DESC
						RETURN cl
				`
				return readClaims(db, p, query, map[string]interface{}{"item": itemID})
			},
		},
	}
}

func readClaims(db database.DBConnection, p graphql.ResolveParams, query string, bindVars map[string]interface{}) ([]model.Claim, error) {
	cursor, err := db.Database.Query(p.Context, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	claims := []model.Claim{}
	for cursor.HasMore() {
		var claim model.Claim
		if _, err := cursor.ReadDocument(p.Context, &claim); err != nil {
			continue
		}
		claims = append(claims, claim)
	}
	return claims, nil
}

func ownsItem(db database.DBConnection, p graphql.ResolveParams, itemID, userKey string) (bool, error) {
	query := `
		FOR i IN items
			FILTER i._key == @key AND i.user_id == @user
			LIMIT 1
			RETURN i._key
	`
	cursor, err := db.Database.Query(p.Context, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": itemID, "user": userKey},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}
