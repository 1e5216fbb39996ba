// Package model - organization membership
package model

import "time"

// MemberRole is the role of a user within an organization
type MemberRole string

// Member roles
const (
	MemberOwner  MemberRole = "org_owner"
	MemberAdmin  MemberRole = "org_admin"
	MemberStaff  MemberRole = "org_staff"
	MemberViewer MemberRole = "org_viewer"
)

// Valid reports whether the role is one of the known values
func (r MemberRole) Valid() bool {
	switch r {
	case MemberOwner, MemberAdmin, MemberStaff, MemberViewer:
		return true
	}
	return false
}

// OrganizationMember joins a user to an organization. Role is the legacy
// tri-state field kept for older clients; MemberRole is authoritative.
type OrganizationMember struct {
	Key            string     `json:"_key,omitempty"`
	OrganizationID string     `json:"organization_id"`
	UserID         string     `json:"user_id"`
	Role           string     `json:"role"` // admin, manager, staff (legacy)
	MemberRole     MemberRole `json:"member_role"`
	IsActive       bool       `json:"is_active"`
	InvitedBy      string     `json:"invited_by,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewOwnerMember creates the membership row inserted atomically with a new
// organization. The creator is the sole initial member.
func NewOwnerMember(userID string) *OrganizationMember {
	now := time.Now().UTC()
	return &OrganizationMember{
		UserID:     userID,
		Role:       "admin",
		MemberRole: MemberOwner,
		IsActive:   true,
		AcceptedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
