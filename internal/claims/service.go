package claims

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	"github.com/khojpayo/khojpayo-backend/internal/permission"
	"github.com/khojpayo/khojpayo-backend/model"
)

// Notifier is the fire-and-forget notification channel. Implementations must
// never fail the caller; the service invokes it only after the primary write
// has committed.
type Notifier interface {
	Emit(ctx context.Context, userID, ntype, title, body string, data map[string]interface{})
}

// Service runs the claim state machine
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.SugaredLogger
}

// NewService creates a claim service
func NewService(store Store, notifier Notifier, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// CreateRequest is the input to Create
type CreateRequest struct {
	ItemID           string
	ClaimantID       string
	SecretInfo       string
	ProofDescription string
	Evidence         []model.Evidence
}

// EditRequest is the input to Edit. Nil pointers leave fields untouched.
type EditRequest struct {
	ClaimID          string
	ActorID          string
	SecretInfo       *string
	ProofDescription *string
	Evidence         []model.Evidence
}

// Create files a new pending claim on an active item. The claimant must not
// own the item and must not already have a pending claim on it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Claim, error) {
	if req.SecretInfo == "" {
		return nil, apperr.E(apperr.ValidationError, "secret_info is required")
	}

	item, err := s.store.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}
	if item.Status != model.ItemActive {
		return nil, apperr.E(apperr.InvalidState, "item is not open for claims")
	}
	if item.UserID == req.ClaimantID {
		return nil, apperr.E(apperr.Forbidden, "cannot claim your own item")
	}

	pending, err := s.store.HasPendingClaim(ctx, req.ItemID, req.ClaimantID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.E(apperr.Conflict, "you already have a pending claim on this item")
	}

	claim := model.NewClaim(req.ItemID, req.ClaimantID, req.SecretInfo)
	claim.ProofDescription = req.ProofDescription
	if err := s.store.InsertClaim(ctx, claim); err != nil {
		return nil, err
	}

	if len(req.Evidence) > 0 {
		rows := stampEvidence(claim.Key, req.Evidence)
		if err := s.store.InsertEvidence(ctx, rows); err != nil {
			return nil, err
		}
	}

	s.emit(ctx, item.UserID, model.NotifyClaimReceived,
		"New claim on your item",
		fmt.Sprintf("Someone has claimed %q. Review the proof and respond.", item.Title),
		map[string]interface{}{"item_id": item.Key, "claim_id": claim.Key})

	return claim, nil
}

// Edit mutates a pending claim's proof fields and appends evidence. Only the
// claimant may edit, and only while the claim is pending.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*model.Claim, error) {
	claim, err := s.store.GetClaim(ctx, req.ClaimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, apperr.E(apperr.NotFound, "claim not found")
	}
	if claim.ClaimantID != req.ActorID {
		return nil, apperr.E(apperr.Forbidden, "only the claimant may edit a claim")
	}
	if claim.Status != model.ClaimPending {
		return nil, apperr.E(apperr.Forbidden, "claim can no longer be edited")
	}
	if req.SecretInfo == nil && req.ProofDescription == nil && len(req.Evidence) == 0 {
		return nil, apperr.E(apperr.ValidationError, "nothing to update")
	}

	updated, err := s.store.UpdateClaimFields(ctx, claim.Key, EditUpdate{
		SecretInfo:       req.SecretInfo,
		ProofDescription: req.ProofDescription,
	})
	if err != nil {
		return nil, err
	}

	if len(req.Evidence) > 0 {
		rows := stampEvidence(claim.Key, req.Evidence)
		if err := s.store.InsertEvidence(ctx, rows); err != nil {
			return nil, err
		}
	}

	body := "The claimant updated their claim details."
	if len(req.Evidence) > 0 {
		body = "The claimant updated their claim and attached new evidence."
	}

	item, itemErr := s.store.GetItem(ctx, claim.ItemID)
	if itemErr == nil && item != nil {
		s.emit(ctx, item.UserID, model.NotifyClaimUpdated,
			"A claim was updated", body,
			map[string]interface{}{"item_id": claim.ItemID, "claim_id": claim.Key})
	}

	return updated, nil
}

// Withdraw moves the actor's own pending claim to withdrawn
func (s *Service) Withdraw(ctx context.Context, claimID, actorID string) (*model.Claim, error) {
	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, apperr.E(apperr.NotFound, "claim not found")
	}
	if claim.ClaimantID != actorID {
		return nil, apperr.E(apperr.Forbidden, "only the claimant may withdraw a claim")
	}
	if !claim.Status.CanTransition(model.ClaimWithdrawn) {
		return nil, apperr.E(apperr.InvalidState, "claim is already %s", claim.Status)
	}

	updated, matched, err := s.store.TransitionClaim(ctx, claimID, TerminalUpdate{Status: model.ClaimWithdrawn})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.E(apperr.Conflict, "claim was already processed")
	}
	return updated, nil
}

// Approve accepts a pending claim. The whole effect runs as one logical
// unit: the claim becomes approved, the item resolves, a handover record is
// created, and every competing pending claim is auto-rejected. The
// conditional transition on status=pending is the commit point; a stale
// claim yields a conflict with no side effects.
func (s *Service) Approve(ctx context.Context, claimID, actorID string) (*model.Claim, error) {
	claim, item, err := s.loadForReview(ctx, claimID, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, matched, err := s.store.TransitionClaim(ctx, claimID, TerminalUpdate{
		Status:     model.ClaimApproved,
		ReviewerID: actorID,
		ReviewedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.E(apperr.Conflict, "claim was already processed")
	}

	if err := s.store.SetItemStatus(ctx, item.Key, model.ItemResolved); err != nil {
		return nil, err
	}

	if err := s.store.InsertHandover(ctx, model.NewHandover(claimID, item.Key)); err != nil {
		return nil, err
	}

	rejected, err := s.store.RejectOtherPending(ctx, item.Key, claimID, actorID, model.RejectionReasonSuperseded)
	if err != nil {
		return nil, err
	}
	if rejected > 0 {
		s.logger.Infow("auto-rejected competing claims", "item", item.Key, "count", rejected)
	}

	s.emit(ctx, claim.ClaimantID, model.NotifyClaimApproved,
		"Your claim was approved",
		fmt.Sprintf("Your claim on %q was approved. A meetup handover has been set up.", item.Title),
		map[string]interface{}{"item_id": item.Key, "claim_id": claimID})

	return updated, nil
}

// Reject declines a pending claim. If no pending claims remain on the item
// afterwards it reopens for claiming.
func (s *Service) Reject(ctx context.Context, claimID, actorID, reason string) (*model.Claim, error) {
	claim, item, err := s.loadForReview(ctx, claimID, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, matched, err := s.store.TransitionClaim(ctx, claimID, TerminalUpdate{
		Status:          model.ClaimRejected,
		ReviewerID:      actorID,
		ReviewedAt:      &now,
		RejectionReason: reason,
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.E(apperr.Conflict, "claim was already processed")
	}

	remaining, err := s.store.CountPendingClaims(ctx, item.Key)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := s.store.SetItemStatus(ctx, item.Key, model.ItemActive); err != nil {
			return nil, err
		}
	}

	body := "Your claim was rejected."
	if reason != "" {
		body = fmt.Sprintf("Your claim was rejected: %s", reason)
	}
	s.emit(ctx, claim.ClaimantID, model.NotifyClaimRejected,
		"Your claim was rejected", body,
		map[string]interface{}{"item_id": item.Key, "claim_id": claimID})

	return updated, nil
}

// loadForReview fetches the claim and its item and authorizes the actor as
// reviewer: the item owner, or an org member passing the manage_claim check.
func (s *Service) loadForReview(ctx context.Context, claimID, actorID string) (*model.Claim, *model.Item, error) {
	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	if claim == nil {
		return nil, nil, apperr.E(apperr.NotFound, "claim not found")
	}

	item, err := s.store.GetItem(ctx, claim.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, apperr.E(apperr.NotFound, "item not found")
	}

	if item.UserID != actorID {
		if item.OrganizationID == "" {
			return nil, nil, apperr.E(apperr.Forbidden, "only the item owner may review this claim")
		}
		org, err := s.store.GetOrganization(ctx, item.OrganizationID)
		if err != nil {
			return nil, nil, err
		}
		member, err := s.store.GetActiveMember(ctx, item.OrganizationID, actorID)
		if err != nil {
			return nil, nil, err
		}
		decision := permission.Resolve(actorID, org, member, permission.ActionManageClaim)
		if !decision.Allowed {
			return nil, nil, apperr.E(apperr.Forbidden, "%s", decision.Reason)
		}
	}

	if claim.Status != model.ClaimPending {
		return nil, nil, apperr.E(apperr.InvalidState, "claim is already %s", claim.Status)
	}

	return claim, item, nil
}

func (s *Service) emit(ctx context.Context, userID, ntype, title, body string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, userID, ntype, title, body, data)
}

func stampEvidence(claimID string, rows []model.Evidence) []model.Evidence {
	now := time.Now().UTC()
	out := make([]model.Evidence, len(rows))
	for i, row := range rows {
		row.ClaimID = claimID
		row.CreatedAt = now
		if row.Type == "" {
			row.Type = model.EvidenceImage
		}
		out[i] = row
	}
	return out
}
