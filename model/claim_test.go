package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from ClaimStatus
		to   ClaimStatus
		want bool
	}{
		{"pending to approved", ClaimPending, ClaimApproved, true},
		{"pending to rejected", ClaimPending, ClaimRejected, true},
		{"pending to withdrawn", ClaimPending, ClaimWithdrawn, true},
		{"pending to pending", ClaimPending, ClaimPending, false},
		{"approved is terminal", ClaimApproved, ClaimRejected, false},
		{"approved cannot reopen", ClaimApproved, ClaimPending, false},
		{"rejected is terminal", ClaimRejected, ClaimApproved, false},
		{"withdrawn is terminal", ClaimWithdrawn, ClaimApproved, false},
		{"withdrawn cannot reopen", ClaimWithdrawn, ClaimPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestClaimStatusTerminal(t *testing.T) {
	assert.False(t, ClaimPending.Terminal())
	assert.True(t, ClaimApproved.Terminal())
	assert.True(t, ClaimRejected.Terminal())
	assert.True(t, ClaimWithdrawn.Terminal())
}

func TestNewClaimStartsPending(t *testing.T) {
	claim := NewClaim("item-1", "user-1", "red sticker on the back")
	assert.Equal(t, ClaimPending, claim.Status)
	assert.Equal(t, "item-1", claim.ItemID)
	assert.Equal(t, "user-1", claim.ClaimantID)
	assert.False(t, claim.CreatedAt.IsZero())
}
