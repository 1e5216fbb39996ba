// Package organizations handles organization account creation and lookup.
package organizations

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/google/uuid"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	"github.com/khojpayo/khojpayo-backend/model"
)

// Service creates and reads organization accounts
type Service struct {
	DB database.DBConnection
}

// NewService creates an organization service
func NewService(db database.DBConnection) *Service {
	return &Service{DB: db}
}

// CreateRequest is the input to Create
type CreateRequest struct {
	Name         string        `json:"name"`
	Type         model.OrgType `json:"type"`
	ContactEmail string        `json:"contact_email"`
	ContactPhone string        `json:"contact_phone"`
	Website      string        `json:"website"`
}

// Create inserts the organization in draft status together with the
// creator's org_owner membership. Both documents are written by a single
// AQL query so neither can exist without the other.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*model.Organization, error) {
	if req.Name == "" {
		return nil, apperr.E(apperr.ValidationError, "name is required")
	}
	if req.Type == "" {
		req.Type = model.OrgOther
	}

	org := model.NewOrganization(req.Name, req.Type, actorID)
	org.Key = uuid.New().String()
	org.ContactEmail = req.ContactEmail
	org.ContactPhone = req.ContactPhone
	org.Website = req.Website

	member := model.NewOwnerMember(actorID)
	member.Key = uuid.New().String()
	member.OrganizationID = org.Key

	query := `
		INSERT @org INTO organizations
		LET created = NEW
		INSERT @member INTO org_members
		RETURN created
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"org":    org,
			"member": member,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var out model.Organization
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// Get fetches an organization by key
func (s *Service) Get(ctx context.Context, orgID string) (*model.Organization, error) {
	query := `
		FOR o IN organizations
			FILTER o._key == @key
			LIMIT 1
			RETURN o
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": orgID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, apperr.E(apperr.NotFound, "organization not found")
	}
	var org model.Organization
	if _, err := cursor.ReadDocument(ctx, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListForUser returns the organizations where the user holds an active
// membership.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]model.Organization, error) {
	query := `
		FOR m IN org_members
			FILTER m.user_id == @user AND m.is_active == true
			FOR o IN organizations
				FILTER o._key == m.organization_id
				RETURN o
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"user": userID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	orgs := []model.Organization{}
	for cursor.HasMore() {
		var org model.Organization
		if _, err := cursor.ReadDocument(ctx, &org); err != nil {
			continue
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}
