package claims

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

// NewArangoStore creates the ArangoDB-backed claim store
func NewArangoStore(db database.DBConnection) *ArangoStore {
	return &ArangoStore{DB: db}
}

// GetItem fetches an item by key, returning nil when it does not exist
func (s *ArangoStore) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	query := `
		FOR i IN items
			FILTER i._key == @key
			LIMIT 1
			RETURN i
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": itemID},
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

// SetItemStatus updates an item's status
func (s *ArangoStore) SetItemStatus(ctx context.Context, itemID string, status model.ItemStatus) error {
	query := `
		UPDATE @key WITH { status: @status, updated_at: @now } IN items
	`
	_, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":    itemID,
			"status": status,
			"now":    time.Now().UTC(),
		},
	})
	return err
}

// GetClaim fetches a claim by key, returning nil when it does not exist
func (s *ArangoStore) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	query := `
		FOR c IN claims
			FILTER c._key == @key
			LIMIT 1
			RETURN c
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": claimID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var claim model.Claim
	if _, err := cursor.ReadDocument(ctx, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// InsertClaim stores a new claim, assigning its key
func (s *ArangoStore) InsertClaim(ctx context.Context, claim *model.Claim) error {
	if claim.Key == "" {
		claim.Key = uuid.New().String()
	}
	_, err := s.DB.Collections["claims"].CreateDocument(ctx, claim)
	return err
}

// HasPendingClaim reports whether the claimant already has a pending claim
// on the item.
func (s *ArangoStore) HasPendingClaim(ctx context.Context, itemID, claimantID string) (bool, error) {
	query := `
		FOR c IN claims
			FILTER c.item_id == @item AND c.claimant_id == @claimant AND c.status == @pending
			LIMIT 1
			RETURN c._key
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"item":     itemID,
			"claimant": claimantID,
			"pending":  model.ClaimPending,
		},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}

// CountPendingClaims counts the pending claims on an item
func (s *ArangoStore) CountPendingClaims(ctx context.Context, itemID string) (int, error) {
	query := `
		FOR c IN claims
			FILTER c.item_id == @item AND c.status == @pending
			COLLECT WITH COUNT INTO n
			RETURN n
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"item":    itemID,
			"pending": model.ClaimPending,
		},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	count := 0
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &count); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// UpdateClaimFields patches the mutable fields of a pending claim
func (s *ArangoStore) UpdateClaimFields(ctx context.Context, claimID string, upd EditUpdate) (*model.Claim, error) {
	patch := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if upd.SecretInfo != nil {
		patch["secret_info"] = *upd.SecretInfo
	}
	if upd.ProofDescription != nil {
		patch["proof_description"] = *upd.ProofDescription
	}

	query := `
		UPDATE @key WITH @patch IN claims
		RETURN NEW
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":   claimID,
			"patch": patch,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var claim model.Claim
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &claim); err != nil {
			return nil, err
		}
	}
	return &claim, nil
}

// TransitionClaim applies a terminal transition with an optimistic check on
// status == pending. The FILTER makes the update conditional: a claim that
// has already left pending matches no document and matched is false.
func (s *ArangoStore) TransitionClaim(ctx context.Context, claimID string, upd TerminalUpdate) (*model.Claim, bool, error) {
	patch := map[string]interface{}{
		"status":     upd.Status,
		"updated_at": time.Now().UTC(),
	}
	if upd.ReviewerID != "" {
		patch["reviewer_id"] = upd.ReviewerID
	}
	if upd.ReviewedAt != nil {
		patch["reviewed_at"] = upd.ReviewedAt
	}
	if upd.RejectionReason != "" {
		patch["rejection_reason"] = upd.RejectionReason
	}

	query := `
		FOR c IN claims
			FILTER c._key == @key AND c.status == @pending
			UPDATE c WITH @patch IN claims
			RETURN NEW
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":     claimID,
			"pending": model.ClaimPending,
			"patch":   patch,
		},
	})
	if err != nil {
		return nil, false, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, false, nil
	}
	var claim model.Claim
	if _, err := cursor.ReadDocument(ctx, &claim); err != nil {
		return nil, false, err
	}
	return &claim, true, nil
}

// RejectOtherPending rejects every other pending claim on the item in a
// single AQL pass.
func (s *ArangoStore) RejectOtherPending(ctx context.Context, itemID, exceptClaimID, reviewerID, reason string) (int, error) {
	query := `
		FOR c IN claims
			FILTER c.item_id == @item AND c._key != @except AND c.status == @pending
			UPDATE c WITH {
				status: @rejected,
				rejection_reason: @reason,
				reviewer_id: @reviewer,
				reviewed_at: @now,
				updated_at: @now
			} IN claims
			COLLECT WITH COUNT INTO n
			RETURN n
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"item":     itemID,
			"except":   exceptClaimID,
			"pending":  model.ClaimPending,
			"rejected": model.ClaimRejected,
			"reason":   reason,
			"reviewer": reviewerID,
			"now":      time.Now().UTC(),
		},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	count := 0
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &count); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// InsertEvidence appends evidence rows for a claim
func (s *ArangoStore) InsertEvidence(ctx context.Context, rows []model.Evidence) error {
	for i := range rows {
		if rows[i].Key == "" {
			rows[i].Key = uuid.New().String()
		}
		if _, err := s.DB.Collections["evidence"].CreateDocument(ctx, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// InsertHandover stores a handover record
func (s *ArangoStore) InsertHandover(ctx context.Context, handover *model.Handover) error {
	if handover.Key == "" {
		handover.Key = uuid.New().String()
	}
	_, err := s.DB.Collections["handovers"].CreateDocument(ctx, handover)
	return err
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

// GetActiveMember fetches the user's active membership in the organization,
// nil when none exists.
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
