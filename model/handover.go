// Package model - handover records
package model

import "time"

// HandoverMethod is how the physical item changes hands after approval
type HandoverMethod string

// Handover methods
const (
	HandoverMeetup   HandoverMethod = "meetup"
	HandoverDelivery HandoverMethod = "delivery"
)

// Handover records the agreed method for returning an item once a claim has
// been approved. Created automatically on approval with the meetup default.
type Handover struct {
	Key         string         `json:"_key,omitempty"`
	ClaimID     string         `json:"claim_id"`
	ItemID      string         `json:"item_id"`
	Method      HandoverMethod `json:"method"`
	Completed   bool           `json:"completed"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewHandover creates a handover for an approved claim with the default method
func NewHandover(claimID, itemID string) *Handover {
	now := time.Now().UTC()
	return &Handover{
		ClaimID:   claimID,
		ItemID:    itemID,
		Method:    HandoverMeetup,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
