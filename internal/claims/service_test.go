package claims

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	"github.com/khojpayo/khojpayo-backend/model"
)

// memStore is an in-memory Store used to exercise the state machine without
// a database.
type memStore struct {
	items     map[string]*model.Item
	claims    map[string]*model.Claim
	evidence  []model.Evidence
	handovers []model.Handover
	orgs      map[string]*model.Organization
	members   map[string]*model.OrganizationMember // orgID:userID
	nextKey   int
}

func newMemStore() *memStore {
	return &memStore{
		items:   map[string]*model.Item{},
		claims:  map[string]*model.Claim{},
		orgs:    map[string]*model.Organization{},
		members: map[string]*model.OrganizationMember{},
	}
}

func (s *memStore) GetItem(_ context.Context, itemID string) (*model.Item, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (s *memStore) SetItemStatus(_ context.Context, itemID string, status model.ItemStatus) error {
	item, ok := s.items[itemID]
	if !ok {
		return fmt.Errorf("item %s not found", itemID)
	}
	item.Status = status
	return nil
}

func (s *memStore) GetClaim(_ context.Context, claimID string) (*model.Claim, error) {
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, nil
	}
	copied := *claim
	return &copied, nil
}

func (s *memStore) InsertClaim(_ context.Context, claim *model.Claim) error {
	if claim.Key == "" {
		s.nextKey++
		claim.Key = fmt.Sprintf("claim-%d", s.nextKey)
	}
	stored := *claim
	s.claims[claim.Key] = &stored
	return nil
}

func (s *memStore) HasPendingClaim(_ context.Context, itemID, claimantID string) (bool, error) {
	for _, claim := range s.claims {
		if claim.ItemID == itemID && claim.ClaimantID == claimantID && claim.Status == model.ClaimPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountPendingClaims(_ context.Context, itemID string) (int, error) {
	count := 0
	for _, claim := range s.claims {
		if claim.ItemID == itemID && claim.Status == model.ClaimPending {
			count++
		}
	}
	return count, nil
}

func (s *memStore) UpdateClaimFields(_ context.Context, claimID string, upd EditUpdate) (*model.Claim, error) {
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, fmt.Errorf("claim %s not found", claimID)
	}
	if upd.SecretInfo != nil {
		claim.SecretInfo = *upd.SecretInfo
	}
	if upd.ProofDescription != nil {
		claim.ProofDescription = *upd.ProofDescription
	}
	copied := *claim
	return &copied, nil
}

func (s *memStore) TransitionClaim(_ context.Context, claimID string, upd TerminalUpdate) (*model.Claim, bool, error) {
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, false, fmt.Errorf("claim %s not found", claimID)
	}
	if claim.Status != model.ClaimPending {
		return nil, false, nil
	}
	claim.Status = upd.Status
	claim.ReviewerID = upd.ReviewerID
	claim.ReviewedAt = upd.ReviewedAt
	claim.RejectionReason = upd.RejectionReason
	copied := *claim
	return &copied, true, nil
}

func (s *memStore) RejectOtherPending(_ context.Context, itemID, exceptClaimID, reviewerID, reason string) (int, error) {
	rejected := 0
	for _, claim := range s.claims {
		if claim.ItemID == itemID && claim.Key != exceptClaimID && claim.Status == model.ClaimPending {
			claim.Status = model.ClaimRejected
			claim.ReviewerID = reviewerID
			claim.RejectionReason = reason
			rejected++
		}
	}
	return rejected, nil
}

func (s *memStore) InsertEvidence(_ context.Context, rows []model.Evidence) error {
	s.evidence = append(s.evidence, rows...)
	return nil
}

func (s *memStore) InsertHandover(_ context.Context, handover *model.Handover) error {
	s.handovers = append(s.handovers, *handover)
	return nil
}

func (s *memStore) GetOrganization(_ context.Context, orgID string) (*model.Organization, error) {
	return s.orgs[orgID], nil
}

func (s *memStore) GetActiveMember(_ context.Context, orgID, userID string) (*model.OrganizationMember, error) {
	return s.members[orgID+":"+userID], nil
}

// recordingNotifier captures emitted notifications
type recordingNotifier struct {
	emitted []struct {
		UserID string
		Type   string
	}
}

func (n *recordingNotifier) Emit(_ context.Context, userID, ntype, _, _ string, _ map[string]interface{}) {
	n.emitted = append(n.emitted, struct {
		UserID string
		Type   string
	}{userID, ntype})
}

func newTestService(store *memStore) (*Service, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewService(store, notifier, zap.NewNop().Sugar()), notifier
}

func activeItem(store *memStore, key, ownerID string) *model.Item {
	item := model.NewItem(model.ItemLost, ownerID)
	item.Key = key
	item.Title = "Black wallet"
	item.Category = "wallet"
	store.items[key] = item
	return item
}

func pendingClaim(store *memStore, key, itemID, claimantID string) *model.Claim {
	claim := model.NewClaim(itemID, claimantID, "torn corner on the id card")
	claim.Key = key
	store.claims[key] = claim
	return claim
}

func TestCreateClaim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, notifier := newTestService(store)
	activeItem(store, "item-1", "owner-1")

	claim, err := svc.Create(ctx, CreateRequest{
		ItemID:     "item-1",
		ClaimantID: "claimant-1",
		SecretInfo: "engraved initials RS",
		Evidence:   []model.Evidence{{URL: "https://img/1.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ClaimPending, claim.Status)
	assert.NotEmpty(t, claim.Key)

	// evidence stamped with the claim key
	require.Len(t, store.evidence, 1)
	assert.Equal(t, claim.Key, store.evidence[0].ClaimID)
	assert.Equal(t, model.EvidenceImage, store.evidence[0].Type)

	// item owner got notified
	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, "owner-1", notifier.emitted[0].UserID)
	assert.Equal(t, model.NotifyClaimReceived, notifier.emitted[0].Type)
}

func TestCreateClaimValidation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	activeItem(store, "item-1", "owner-1")

	t.Run("secret info required", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{ItemID: "item-1", ClaimantID: "claimant-1"})
		assert.Equal(t, apperr.ValidationError, apperr.KindOf(err))
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{ItemID: "missing", ClaimantID: "claimant-1", SecretInfo: "x"})
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})

	t.Run("cannot claim own item", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{ItemID: "item-1", ClaimantID: "owner-1", SecretInfo: "x"})
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	})

	t.Run("item not active", func(t *testing.T) {
		store.items["item-1"].Status = model.ItemResolved
		_, err := svc.Create(ctx, CreateRequest{ItemID: "item-1", ClaimantID: "claimant-1", SecretInfo: "x"})
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
		store.items["item-1"].Status = model.ItemActive
	})

	t.Run("duplicate pending claim", func(t *testing.T) {
		pendingClaim(store, "claim-dup", "item-1", "claimant-1")
		_, err := svc.Create(ctx, CreateRequest{ItemID: "item-1", ClaimantID: "claimant-1", SecretInfo: "x"})
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	})
}

func TestApproveClaim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, notifier := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	pendingClaim(store, "claim-1", "item-1", "claimant-1")
	pendingClaim(store, "claim-2", "item-1", "claimant-2")
	pendingClaim(store, "claim-3", "item-1", "claimant-3")

	claim, err := svc.Approve(ctx, "claim-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimApproved, claim.Status)
	assert.Equal(t, "owner-1", claim.ReviewerID)
	require.NotNil(t, claim.ReviewedAt)

	// item resolved and a handover created
	assert.Equal(t, model.ItemResolved, store.items["item-1"].Status)
	require.Len(t, store.handovers, 1)
	assert.Equal(t, "claim-1", store.handovers[0].ClaimID)
	assert.Equal(t, model.HandoverMeetup, store.handovers[0].Method)

	// competitors auto-rejected with the superseded reason
	assert.Equal(t, model.ClaimRejected, store.claims["claim-2"].Status)
	assert.Equal(t, model.RejectionReasonSuperseded, store.claims["claim-2"].RejectionReason)
	assert.Equal(t, model.ClaimRejected, store.claims["claim-3"].Status)

	// winner notified
	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, "claimant-1", notifier.emitted[0].UserID)
	assert.Equal(t, model.NotifyClaimApproved, notifier.emitted[0].Type)
}

func TestApproveRequiresAuthority(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	pendingClaim(store, "claim-1", "item-1", "claimant-1")

	_, err := svc.Approve(ctx, "claim-1", "stranger")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// the claimant cannot approve their own claim either
	_, err = svc.Approve(ctx, "claim-1", "claimant-1")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestApproveViaOrgMembership(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)

	item := activeItem(store, "item-1", "owner-1")
	item.OrganizationID = "org-1"
	pendingClaim(store, "claim-1", "item-1", "claimant-1")

	store.orgs["org-1"] = &model.Organization{
		Key:             "org-1",
		AdminID:         "org-admin",
		CanManageClaims: true,
	}
	store.members["org-1:staffer"] = &model.OrganizationMember{
		OrganizationID: "org-1",
		UserID:         "staffer",
		MemberRole:     model.MemberStaff,
		IsActive:       true,
	}

	claim, err := svc.Approve(ctx, "claim-1", "staffer")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimApproved, claim.Status)
}

func TestApproveAlreadyProcessed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	claim := pendingClaim(store, "claim-1", "item-1", "claimant-1")
	claim.Status = model.ClaimWithdrawn

	_, err := svc.Approve(ctx, "claim-1", "owner-1")
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
}

func TestRejectClaimReopensItem(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, notifier := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	pendingClaim(store, "claim-1", "item-1", "claimant-1")
	pendingClaim(store, "claim-2", "item-1", "claimant-2")

	_, err := svc.Reject(ctx, "claim-1", "owner-1", "secret did not match")
	require.NoError(t, err)
	// another pending claim remains, item stays as-is
	assert.Equal(t, model.ItemActive, store.items["item-1"].Status)

	_, err = svc.Reject(ctx, "claim-2", "owner-1", "")
	require.NoError(t, err)
	assert.Equal(t, model.ItemActive, store.items["item-1"].Status)

	require.Len(t, notifier.emitted, 2)
	assert.Equal(t, model.NotifyClaimRejected, notifier.emitted[0].Type)
}

func TestWithdrawClaim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	pendingClaim(store, "claim-1", "item-1", "claimant-1")

	claim, err := svc.Withdraw(ctx, "claim-1", "claimant-1")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimWithdrawn, claim.Status)

	// withdrawing again is an invalid state, not a silent no-op
	_, err = svc.Withdraw(ctx, "claim-1", "claimant-1")
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
}

func TestWithdrawOnlyByClaimant(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	pendingClaim(store, "claim-1", "item-1", "claimant-1")

	_, err := svc.Withdraw(ctx, "claim-1", "owner-1")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestEditClaim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, notifier := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	pendingClaim(store, "claim-1", "item-1", "claimant-1")

	secret := "updated secret"
	claim, err := svc.Edit(ctx, EditRequest{
		ClaimID:    "claim-1",
		ActorID:    "claimant-1",
		SecretInfo: &secret,
		Evidence:   []model.Evidence{{URL: "https://img/2.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "updated secret", claim.SecretInfo)
	require.Len(t, store.evidence, 1)

	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, model.NotifyClaimUpdated, notifier.emitted[0].Type)
	assert.Equal(t, "owner-1", notifier.emitted[0].UserID)
}

func TestEditClaimRestrictions(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	activeItem(store, "item-1", "owner-1")
	claim := pendingClaim(store, "claim-1", "item-1", "claimant-1")

	secret := "x"

	t.Run("only the claimant", func(t *testing.T) {
		_, err := svc.Edit(ctx, EditRequest{ClaimID: "claim-1", ActorID: "owner-1", SecretInfo: &secret})
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	})

	t.Run("nothing to update", func(t *testing.T) {
		_, err := svc.Edit(ctx, EditRequest{ClaimID: "claim-1", ActorID: "claimant-1"})
		assert.Equal(t, apperr.ValidationError, apperr.KindOf(err))
	})

	t.Run("only while pending", func(t *testing.T) {
		claim.Status = model.ClaimRejected
		_, err := svc.Edit(ctx, EditRequest{ClaimID: "claim-1", ActorID: "claimant-1", SecretInfo: &secret})
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	})
}
