package verification

import (
	"context"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/google/uuid"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/model"
)

// ArangoStore is the production Store backed by ArangoDB
type ArangoStore struct {
	DB database.DBConnection
}

// NewArangoStore creates the ArangoDB-backed verification store
func NewArangoStore(db database.DBConnection) *ArangoStore {
	return &ArangoStore{DB: db}
}

// GetOrganization fetches an organization by key, nil when absent
func (s *ArangoStore) GetOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
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
		return nil, nil
	}
	var org model.Organization
	if _, err := cursor.ReadDocument(ctx, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetActiveMember fetches the user's active membership, nil when absent
func (s *ArangoStore) GetActiveMember(ctx context.Context, orgID, userID string) (*model.OrganizationMember, error) {
	query := `
		FOR m IN org_members
			FILTER m.organization_id == @org AND m.user_id == @user AND m.is_active == true
			LIMIT 1
			RETURN m
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"org": orgID, "user": userID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var member model.OrganizationMember
	if _, err := cursor.ReadDocument(ctx, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// TransitionOrganization applies a verification transition with an
// optimistic check that the current status is still one of the expected
// source statuses.
func (s *ArangoStore) TransitionOrganization(ctx context.Context, orgID string, from []model.VerificationStatus, patch OrgPatch) (bool, error) {
	doc := map[string]interface{}{
		"verification_status": patch.Status,
		"updated_at":          time.Now().UTC(),
	}
	if patch.IsVerified != nil {
		doc["is_verified"] = *patch.IsVerified
	}
	if patch.CanPostItems != nil {
		doc["can_post_items"] = *patch.CanPostItems
	}
	if patch.CanManageClaims != nil {
		doc["can_manage_claims"] = *patch.CanManageClaims
	}
	if patch.RejectionReason != nil {
		doc["rejection_reason"] = *patch.RejectionReason
	}
	if patch.SubmittedAt != nil {
		doc["verification_submitted_at"] = *patch.SubmittedAt
	}
	if patch.ApprovedAt != nil {
		doc["verification_approved_at"] = *patch.ApprovedAt
	}
	if patch.ApprovedBy != "" {
		doc["verification_approved_by"] = patch.ApprovedBy
	}

	query := `
		FOR o IN organizations
			FILTER o._key == @key AND o.verification_status IN @from
			UPDATE o WITH @patch IN organizations
			RETURN NEW._key
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":   orgID,
			"from":  from,
			"patch": doc,
		},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}

// GetVerification fetches the organization's verification record, nil when
// none exists yet.
func (s *ArangoStore) GetVerification(ctx context.Context, orgID string) (*model.OrganizationVerification, error) {
	query := `
		FOR v IN org_verifications
			FILTER v.organization_id == @org
			LIMIT 1
			RETURN v
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"org": orgID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var rec model.OrganizationVerification
	if _, err := cursor.ReadDocument(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertVerification inserts or replaces the verification record keyed by
// organization.
func (s *ArangoStore) UpsertVerification(ctx context.Context, rec *model.OrganizationVerification) (*model.OrganizationVerification, error) {
	if rec.Key == "" {
		rec.Key = uuid.New().String()
	}

	query := `
		UPSERT { organization_id: @org }
			INSERT @doc
			REPLACE MERGE(@doc, { _key: OLD._key, submitted_at: OLD.submitted_at, created_at: OLD.created_at })
		IN org_verifications
		RETURN NEW
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"org": rec.OrganizationID,
			"doc": rec,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var out model.OrganizationVerification
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// SetVerificationSubmitted stamps the record's submitted_at and trusted
// domain flag. Each submission restamps: a resubmission starts a fresh
// review cycle.
func (s *ArangoStore) SetVerificationSubmitted(ctx context.Context, orgID string, submittedAt time.Time, trustedDomain bool) error {
	query := `
		FOR v IN org_verifications
			FILTER v.organization_id == @org
			UPDATE v WITH {
				submitted_at: @submitted_at,
				trusted_domain: @trusted,
				updated_at: @submitted_at
			} IN org_verifications
	`
	_, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"org":          orgID,
			"submitted_at": submittedAt,
			"trusted":      trustedDomain,
		},
	})
	return err
}

// InsertAudit appends a transition audit record
func (s *ArangoStore) InsertAudit(ctx context.Context, audit *model.VerificationAudit) error {
	if audit.Key == "" {
		audit.Key = uuid.New().String()
	}
	_, err := s.DB.Collections["verification_audit"].CreateDocument(ctx, audit)
	return err
}

// InsertCall appends a phone-verification call log
func (s *ArangoStore) InsertCall(ctx context.Context, call *model.VerificationCall) error {
	if call.Key == "" {
		call.Key = uuid.New().String()
	}
	_, err := s.DB.Collections["verification_calls"].CreateDocument(ctx, call)
	return err
}

// ListByStatus returns organizations whose verification status is in the set
func (s *ArangoStore) ListByStatus(ctx context.Context, statuses []model.VerificationStatus) ([]model.Organization, error) {
	query := `
		FOR o IN organizations
			FILTER o.verification_status IN @statuses
			SORT o.verification_submitted_at ASC
			RETURN o
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"statuses": statuses},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var orgs []model.Organization
	for cursor.HasMore() {
		var org model.Organization
		if _, err := cursor.ReadDocument(ctx, &org); err != nil {
			continue
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}
