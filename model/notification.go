// Package model - fire-and-forget user notifications
package model

import "time"

// Notification types emitted by the state machines
const (
	NotifyClaimReceived        = "claim_received"
	NotifyClaimUpdated         = "claim_updated"
	NotifyClaimApproved        = "claim_approved"
	NotifyClaimRejected        = "claim_rejected"
	NotifyVerificationApproved = "verification_approved"
	NotifyVerificationRejected = "verification_rejected"
)

// Notification is a best-effort message to a user. Creating one is never
// required for the triggering transition to succeed.
type Notification struct {
	Key       string                 `json:"_key,omitempty"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
