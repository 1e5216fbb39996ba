// Package claims defines the GraphQL types for the claim lifecycle.
package claims

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/model"
)

// EvidenceType represents a single piece of claim evidence
var EvidenceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Evidence",
	Fields: graphql.Fields{
		"key": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			ev, _ := p.Source.(model.Evidence)
			return ev.Key, nil
		}},
		"claim_id":    &graphql.Field{Type: graphql.String},
		"type":        &graphql.Field{Type: graphql.String},
		"url":         &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"created_at":  &graphql.Field{Type: graphql.String},
	},
})

// GetClaimType returns the Claim type with its evidence sub-resolver bound
// to the database connection.
func GetClaimType(db database.DBConnection) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Claim",
		Fields: graphql.Fields{
			"key": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				claim, _ := p.Source.(model.Claim)
				return claim.Key, nil
			}},
			"item_id":           &graphql.Field{Type: graphql.String},
			"claimant_id":       &graphql.Field{Type: graphql.String},
			"status":            &graphql.Field{Type: graphql.String},
			"proof_description": &graphql.Field{Type: graphql.String},
			"rejection_reason":  &graphql.Field{Type: graphql.String},
			"reviewer_id":       &graphql.Field{Type: graphql.String},
			"reviewed_at":       &graphql.Field{Type: graphql.String},
			"created_at":        &graphql.Field{Type: graphql.String},

			"evidence": &graphql.Field{
				Type: graphql.NewList(EvidenceType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claim, ok := p.Source.(model.Claim)
					if !ok {
						return []model.Evidence{}, nil
					}
					return fetchEvidence(db, claim.Key)
				},
			},
		},
	})
}

func fetchEvidence(db database.DBConnection, claimID string) ([]model.Evidence, error) {
	ctx := context.Background()
	query := `
		FOR e IN evidence
			FILTER e.claim_id == @claim
			SORT e.created_at
			RETURN e
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"claim": claimID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	rows := []model.Evidence{}
	for cursor.HasMore() {
		var ev model.Evidence
		if _, err := cursor.ReadDocument(ctx, &ev); err != nil {
			continue
		}
		rows = append(rows, ev)
	}
	return rows, nil
}
