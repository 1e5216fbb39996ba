// Package claims implements the claim lifecycle state machine: creation and
// editing of pending claims, and the terminal approve/reject/withdraw
// transitions with their item-status side effects.
package claims

import (
	"context"
	"time"

	"github.com/khojpayo/khojpayo-backend/model"
)

// TerminalUpdate carries the audit fields written alongside a terminal
// claim transition.
type TerminalUpdate struct {
	Status          model.ClaimStatus
	ReviewerID      string
	ReviewedAt      *time.Time
	RejectionReason string
}

// EditUpdate carries the mutable fields of a pending claim. Nil means
// leave the field untouched.
type EditUpdate struct {
	SecretInfo       *string
	ProofDescription *string
}

// Store is the persistence surface the claim service runs against. The
// production implementation is ArangoDB; tests use an in-memory fake.
type Store interface {
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	SetItemStatus(ctx context.Context, itemID string, status model.ItemStatus) error

	GetClaim(ctx context.Context, claimID string) (*model.Claim, error)
	InsertClaim(ctx context.Context, claim *model.Claim) error
	HasPendingClaim(ctx context.Context, itemID, claimantID string) (bool, error)
	CountPendingClaims(ctx context.Context, itemID string) (int, error)
	UpdateClaimFields(ctx context.Context, claimID string, upd EditUpdate) (*model.Claim, error)

	// TransitionClaim conditionally moves a claim from pending to a terminal
	// status. It reports matched=false when the claim's status was no longer
	// pending at write time, which the service surfaces as a conflict.
	TransitionClaim(ctx context.Context, claimID string, upd TerminalUpdate) (claim *model.Claim, matched bool, err error)

	// RejectOtherPending rejects every other pending claim on the item,
	// returning how many were rejected.
	RejectOtherPending(ctx context.Context, itemID, exceptClaimID, reviewerID, reason string) (int, error)

	InsertEvidence(ctx context.Context, rows []model.Evidence) error
	InsertHandover(ctx context.Context, handover *model.Handover) error

	GetOrganization(ctx context.Context, orgID string) (*model.Organization, error)
	GetActiveMember(ctx context.Context, orgID, userID string) (*model.OrganizationMember, error)
}
