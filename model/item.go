// Package model defines the data structures for the KhojPayo lost-and-found platform.
package model

import "time"

// ItemType distinguishes a lost report from a found report
type ItemType string

// Item types
const (
	ItemLost  ItemType = "lost"
	ItemFound ItemType = "found"
)

// Valid reports whether the item type is one of the known values
func (t ItemType) Valid() bool {
	return t == ItemLost || t == ItemFound
}

// Opposite returns the counterpart type used for match candidate lookups
func (t ItemType) Opposite() ItemType {
	if t == ItemLost {
		return ItemFound
	}
	return ItemLost
}

// ItemStatus represents the lifecycle state of an item listing
type ItemStatus string

// Item statuses
const (
	ItemActive   ItemStatus = "active"
	ItemClaimed  ItemStatus = "claimed"
	ItemResolved ItemStatus = "resolved"
	ItemExpired  ItemStatus = "expired"
	ItemDeleted  ItemStatus = "deleted"
)

// Valid reports whether the status is one of the known values
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemActive, ItemClaimed, ItemResolved, ItemExpired, ItemDeleted:
		return true
	}
	return false
}

// Item represents a lost-or-found report posted by a user or an organization
type Item struct {
	Key            string     `json:"_key,omitempty"`
	ID             string     `json:"_id,omitempty"`
	Rev            string     `json:"_rev,omitempty"`
	Type           ItemType   `json:"type"`
	Status         ItemStatus `json:"status"`
	UserID         string     `json:"user_id"`
	OrganizationID string     `json:"organization_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	District       string     `json:"district,omitempty"`
	Municipality   string     `json:"municipality,omitempty"`
	LocationDetail string     `json:"location_detail,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
	ImageURLs      []string   `json:"image_urls,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewItem creates an item report with default values
func NewItem(itemType ItemType, userID string) *Item {
	now := time.Now().UTC()
	return &Item{
		Type:      itemType,
		Status:    ItemActive,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
