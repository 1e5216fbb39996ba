// Package model - claim lifecycle types
package model

import "time"

// ClaimStatus represents the lifecycle state of a claim
type ClaimStatus string

// Claim statuses. pending is the only non-terminal state.
const (
	ClaimPending   ClaimStatus = "pending"
	ClaimApproved  ClaimStatus = "approved"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimWithdrawn ClaimStatus = "withdrawn"
)

// claimTransitions is the full transition table for the claim state machine.
// Terminal states have no outgoing transitions.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimPending: {ClaimApproved, ClaimRejected, ClaimWithdrawn},
}

// Valid reports whether the status is one of the known values
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimRejected, ClaimWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions
func (s ClaimStatus) Terminal() bool {
	return len(claimTransitions[s]) == 0
}

// CanTransition reports whether the state machine allows moving to next
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RejectionReasonSuperseded is stored on pending claims that lose to an
// approved competitor on the same item.
const RejectionReasonSuperseded = "Another claim was approved"

// Claim is a user's assertion of ownership over an item
type Claim struct {
	Key              string      `json:"_key,omitempty"`
	ID               string      `json:"_id,omitempty"`
	Rev              string      `json:"_rev,omitempty"`
	ItemID           string      `json:"item_id"`
	ClaimantID       string      `json:"claimant_id"`
	Status           ClaimStatus `json:"status"`
	SecretInfo       string      `json:"secret_info"`
	ProofDescription string      `json:"proof_description,omitempty"`
	RejectionReason  string      `json:"rejection_reason,omitempty"`
	ReviewerID       string      `json:"reviewer_id,omitempty"`
	ReviewedAt       *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewClaim creates a pending claim
func NewClaim(itemID, claimantID, secretInfo string) *Claim {
	now := time.Now().UTC()
	return &Claim{
		ItemID:     itemID,
		ClaimantID: claimantID,
		Status:     ClaimPending,
		SecretInfo: secretInfo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// EvidenceType distinguishes image proofs from document proofs
type EvidenceType string

// Evidence types
const (
	EvidenceImage    EvidenceType = "image"
	EvidenceDocument EvidenceType = "document"
)

// Evidence is an append-only proof artifact attached to a claim.
// Evidence rows are never mutated or deleted.
type Evidence struct {
	Key         string       `json:"_key,omitempty"`
	ClaimID     string       `json:"claim_id"`
	Type        EvidenceType `json:"type"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
