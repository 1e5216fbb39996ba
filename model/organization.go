// Package model - organization and verification state machine types
package model

import "time"

// OrgType categorizes the kind of institution behind an organization account
type OrgType string

// Organization types
const (
	OrgPolice   OrgType = "police"
	OrgAirport  OrgType = "airport"
	OrgHotel    OrgType = "hotel"
	OrgTransit  OrgType = "transit"
	OrgBusiness OrgType = "business"
	OrgOther    OrgType = "other"
)

// VerificationStatus represents where an organization sits in the
// verification review pipeline.
type VerificationStatus string

// Verification statuses
const (
	VerificationDraft            VerificationStatus = "draft"
	VerificationSubmitted        VerificationStatus = "submitted"
	VerificationUnderReview      VerificationStatus = "under_review"
	VerificationPendingCall      VerificationStatus = "pending_call"
	VerificationPendingDocuments VerificationStatus = "pending_documents"
	VerificationRejected         VerificationStatus = "rejected"
	VerificationApproved         VerificationStatus = "approved"
	VerificationSuspended        VerificationStatus = "suspended"
)

// verificationTransitions is the transition table for the organization
// verification state machine. rejected->submitted is the resubmission path.
var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationDraft:            {VerificationSubmitted},
	VerificationSubmitted:        {VerificationUnderReview, VerificationPendingCall},
	VerificationUnderReview:      {VerificationPendingCall, VerificationPendingDocuments, VerificationApproved, VerificationRejected},
	VerificationPendingCall:      {VerificationApproved, VerificationRejected},
	VerificationPendingDocuments: {VerificationApproved},
	VerificationRejected:         {VerificationSubmitted},
	VerificationApproved:         {VerificationSuspended},
}

// Valid reports whether the status is one of the known values
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationDraft, VerificationSubmitted, VerificationUnderReview,
		VerificationPendingCall, VerificationPendingDocuments,
		VerificationRejected, VerificationApproved, VerificationSuspended:
		return true
	}
	return false
}

// CanTransition reports whether the state machine allows moving to next
func (s VerificationStatus) CanTransition(next VerificationStatus) bool {
	for _, allowed := range verificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Organization is an institution that can post items on its own behalf once
// verified. The capability flags are derived from verification status and
// must never be true outside the approved state.
type Organization struct {
	Key                     string             `json:"_key,omitempty"`
	ID                      string             `json:"_id,omitempty"`
	Rev                     string             `json:"_rev,omitempty"`
	AdminID                 string             `json:"admin_id"`
	Name                    string             `json:"name"`
	Type                    OrgType            `json:"type"`
	ContactEmail            string             `json:"contact_email,omitempty"`
	ContactPhone            string             `json:"contact_phone,omitempty"`
	Website                 string             `json:"website,omitempty"`
	VerificationStatus      VerificationStatus `json:"verification_status"`
	IsVerified              bool               `json:"is_verified"`
	CanPostItems            bool               `json:"can_post_items"`
	CanManageClaims         bool               `json:"can_manage_claims"`
	TrustScore              float64            `json:"trust_score"`
	RejectionReason         string             `json:"rejection_reason,omitempty"`
	VerificationSubmittedAt *time.Time         `json:"verification_submitted_at,omitempty"`
	VerificationApprovedAt  *time.Time         `json:"verification_approved_at,omitempty"`
	VerificationApprovedBy  string             `json:"verification_approved_by,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// NewOrganization creates an organization in draft status with all
// capability flags off.
func NewOrganization(name string, orgType OrgType, adminID string) *Organization {
	now := time.Now().UTC()
	return &Organization{
		AdminID:            adminID,
		Name:               name,
		Type:               orgType,
		VerificationStatus: VerificationDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
