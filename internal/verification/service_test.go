package verification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	"github.com/khojpayo/khojpayo-backend/model"
)

// memStore is an in-memory Store for driving the state machine in tests
type memStore struct {
	orgs     map[string]*model.Organization
	members  map[string]*model.OrganizationMember // orgID:userID
	records  map[string]*model.OrganizationVerification
	audits   []model.VerificationAudit
	calls    []model.VerificationCall
	auditErr error
}

func newMemStore() *memStore {
	return &memStore{
		orgs:    map[string]*model.Organization{},
		members: map[string]*model.OrganizationMember{},
		records: map[string]*model.OrganizationVerification{},
	}
}

func (s *memStore) GetOrganization(_ context.Context, orgID string) (*model.Organization, error) {
	org, ok := s.orgs[orgID]
	if !ok {
		return nil, nil
	}
	copied := *org
	return &copied, nil
}

func (s *memStore) GetActiveMember(_ context.Context, orgID, userID string) (*model.OrganizationMember, error) {
	return s.members[orgID+":"+userID], nil
}

func (s *memStore) TransitionOrganization(_ context.Context, orgID string, from []model.VerificationStatus, patch OrgPatch) (bool, error) {
	org, ok := s.orgs[orgID]
	if !ok {
		return false, fmt.Errorf("organization %s not found", orgID)
	}
	matched := false
	for _, status := range from {
		if org.VerificationStatus == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	org.VerificationStatus = patch.Status
	if patch.IsVerified != nil {
		org.IsVerified = *patch.IsVerified
	}
	if patch.CanPostItems != nil {
		org.CanPostItems = *patch.CanPostItems
	}
	if patch.CanManageClaims != nil {
		org.CanManageClaims = *patch.CanManageClaims
	}
	if patch.RejectionReason != nil {
		org.RejectionReason = *patch.RejectionReason
	}
	if patch.SubmittedAt != nil {
		org.VerificationSubmittedAt = patch.SubmittedAt
	}
	if patch.ApprovedAt != nil {
		org.VerificationApprovedAt = patch.ApprovedAt
	}
	if patch.ApprovedBy != "" {
		org.VerificationApprovedBy = patch.ApprovedBy
	}
	return true, nil
}

func (s *memStore) GetVerification(_ context.Context, orgID string) (*model.OrganizationVerification, error) {
	rec, ok := s.records[orgID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (s *memStore) UpsertVerification(_ context.Context, rec *model.OrganizationVerification) (*model.OrganizationVerification, error) {
	stored := *rec
	s.records[rec.OrganizationID] = &stored
	copied := stored
	return &copied, nil
}

func (s *memStore) SetVerificationSubmitted(_ context.Context, orgID string, submittedAt time.Time, trustedDomain bool) error {
	rec, ok := s.records[orgID]
	if !ok {
		return fmt.Errorf("no verification record for %s", orgID)
	}
	rec.SubmittedAt = &submittedAt
	rec.TrustedDomain = trustedDomain
	return nil
}

func (s *memStore) InsertAudit(_ context.Context, audit *model.VerificationAudit) error {
	if s.auditErr != nil {
		return s.auditErr
	}
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *memStore) InsertCall(_ context.Context, call *model.VerificationCall) error {
	s.calls = append(s.calls, *call)
	return nil
}

func (s *memStore) ListByStatus(_ context.Context, statuses []model.VerificationStatus) ([]model.Organization, error) {
	var out []model.Organization
	for _, org := range s.orgs {
		for _, status := range statuses {
			if org.VerificationStatus == status {
				out = append(out, *org)
				break
			}
		}
	}
	return out, nil
}

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
	svc := NewService(store, notifier, defaultDomainLists, zap.NewNop().Sugar())
	return svc, notifier
}

func seedOrg(store *memStore, status model.VerificationStatus) *model.Organization {
	org := model.NewOrganization("Kathmandu Metro Police", model.OrgPolice, "admin-1")
	org.Key = "org-1"
	org.VerificationStatus = status
	store.orgs["org-1"] = org
	return org
}

func completeFields() DraftFields {
	return DraftFields{
		RegisteredName:     "Kathmandu Metropolitan Police",
		RegistrationType:   "government",
		RegistrationNumber: "REG-1234",
		Province:           "Bagmati",
		District:           "Kathmandu",
		Municipality:       "Kathmandu",
		OfficialEmail:      "lostfound@nepalpolice.gov.np",
		OfficialPhone:      "+97714412780",
	}
}

func seedRecord(store *memStore, fields DraftFields) {
	rec := &model.OrganizationVerification{OrganizationID: "org-1"}
	applyDraftFields(rec, fields)
	store.records["org-1"] = rec
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	seedOrg(store, model.VerificationDraft)

	rec, err := svc.SaveDraft(ctx, "org-1", "admin-1", completeFields())
	require.NoError(t, err)
	assert.Equal(t, "Kathmandu Metropolitan Police", rec.RegisteredName)
	assert.Equal(t, "org-1", rec.OrganizationID)

	// saving again overwrites the same record
	fields := completeFields()
	fields.Website = "https://nepalpolice.gov.np"
	rec, err = svc.SaveDraft(ctx, "org-1", "admin-1", fields)
	require.NoError(t, err)
	assert.Equal(t, "https://nepalpolice.gov.np", rec.Website)
	assert.Len(t, store.records, 1)
}

func TestSaveDraftEditability(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected is still editable", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationRejected)

		_, err := svc.SaveDraft(ctx, "org-1", "admin-1", completeFields())
		assert.NoError(t, err)
	})

	t.Run("submitted is read only", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationSubmitted)

		_, err := svc.SaveDraft(ctx, "org-1", "admin-1", completeFields())
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})

	t.Run("non-editor denied", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationDraft)
		store.members["org-1:staffer"] = &model.OrganizationMember{
			OrganizationID: "org-1",
			UserID:         "staffer",
			MemberRole:     model.MemberStaff,
			IsActive:       true,
		}

		_, err := svc.SaveDraft(ctx, "org-1", "staffer", completeFields())
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	})

	t.Run("unknown org", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		_, err := svc.SaveDraft(ctx, "missing", "admin-1", completeFields())
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	seedOrg(store, model.VerificationDraft)
	seedRecord(store, completeFields())

	org, err := svc.Submit(ctx, "org-1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationSubmitted, org.VerificationStatus)
	require.NotNil(t, org.VerificationSubmittedAt)

	// the trusted gov.np domain is flagged on the record
	assert.True(t, store.records["org-1"].TrustedDomain)

	// one audit row for the transition
	require.Len(t, store.audits, 1)
	assert.Equal(t, model.VerificationDraft, store.audits[0].FromStatus)
	assert.Equal(t, model.VerificationSubmitted, store.audits[0].ToStatus)
	assert.Equal(t, "admin-1", store.audits[0].ActorID)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing required field", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationDraft)
		fields := completeFields()
		fields.RegistrationNumber = ""
		seedRecord(store, fields)

		_, err := svc.Submit(ctx, "org-1", "admin-1")
		assert.Equal(t, apperr.ValidationError, apperr.KindOf(err))
	})

	t.Run("no record on file", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationDraft)

		_, err := svc.Submit(ctx, "org-1", "admin-1")
		assert.Equal(t, apperr.ValidationError, apperr.KindOf(err))
	})

	t.Run("consumer email domain blocked", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationDraft)
		fields := completeFields()
		fields.OfficialEmail = "lostfound@gmail.com"
		seedRecord(store, fields)

		_, err := svc.Submit(ctx, "org-1", "admin-1")
		assert.Equal(t, apperr.ValidationError, apperr.KindOf(err))
	})

	t.Run("cannot submit while under review", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationUnderReview)
		seedRecord(store, completeFields())

		_, err := svc.Submit(ctx, "org-1", "admin-1")
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})
}

func TestResubmitAfterRejection(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	org := seedOrg(store, model.VerificationRejected)
	org.RejectionReason = "registration number could not be verified"
	earlier := time.Now().UTC().Add(-48 * time.Hour)
	org.VerificationSubmittedAt = &earlier
	seedRecord(store, completeFields())

	updated, err := svc.Submit(ctx, "org-1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationSubmitted, updated.VerificationStatus)
	assert.Empty(t, updated.RejectionReason)
	require.NotNil(t, updated.VerificationSubmittedAt)
	assert.True(t, updated.VerificationSubmittedAt.After(earlier))
}

func TestReviewFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, notifier := newTestService(store)
	seedOrg(store, model.VerificationSubmitted)

	org, err := svc.StartReview(ctx, "org-1", "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationUnderReview, org.VerificationStatus)

	org, err = svc.ScheduleCall(ctx, "org-1", "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationPendingCall, org.VerificationStatus)

	org, err = svc.Approve(ctx, "org-1", "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationApproved, org.VerificationStatus)
	assert.True(t, org.IsVerified)
	assert.True(t, org.CanPostItems)
	assert.True(t, org.CanManageClaims)
	assert.Equal(t, "reviewer-1", org.VerificationApprovedBy)
	require.NotNil(t, org.VerificationApprovedAt)

	// audit trail covers each transition
	require.Len(t, store.audits, 3)
	assert.Equal(t, model.VerificationApproved, store.audits[2].ToStatus)

	// the org admin was told
	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, "admin-1", notifier.emitted[0].UserID)
	assert.Equal(t, model.NotifyVerificationApproved, notifier.emitted[0].Type)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, notifier := newTestService(store)
	seedOrg(store, model.VerificationUnderReview)

	org, err := svc.Reject(ctx, "org-1", "reviewer-1", "documents unreadable")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationRejected, org.VerificationStatus)
	assert.Equal(t, "documents unreadable", org.RejectionReason)
	assert.False(t, org.IsVerified)
	assert.False(t, org.CanPostItems)
	assert.False(t, org.CanManageClaims)

	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, model.NotifyVerificationRejected, notifier.emitted[0].Type)

	require.Len(t, store.audits, 1)
	assert.Equal(t, "documents unreadable", store.audits[0].Reason)
}

func TestSuspend(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	org := seedOrg(store, model.VerificationApproved)
	org.IsVerified = true
	org.CanPostItems = true
	org.CanManageClaims = true

	updated, err := svc.Suspend(ctx, "org-1", "reviewer-1", "fraud report")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationSuspended, updated.VerificationStatus)
	assert.False(t, updated.IsVerified)
	assert.False(t, updated.CanPostItems)
	assert.False(t, updated.CanManageClaims)
}

func TestAdminTransitionGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot approve a draft", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationDraft)

		_, err := svc.Approve(ctx, "org-1", "reviewer-1")
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})

	t.Run("cannot reject pending_documents", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		seedOrg(store, model.VerificationPendingDocuments)

		_, err := svc.Reject(ctx, "org-1", "reviewer-1", "nope")
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})

	t.Run("unknown org", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store)
		_, err := svc.StartReview(ctx, "missing", "reviewer-1")
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})
}

func TestAuditFailureDoesNotUndoTransition(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	seedOrg(store, model.VerificationSubmitted)
	store.auditErr = errors.New("audit collection unavailable")

	org, err := svc.StartReview(ctx, "org-1", "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationUnderReview, org.VerificationStatus)
	assert.Empty(t, store.audits)
}

func TestRecordCall(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)
	seedOrg(store, model.VerificationPendingCall)

	call, err := svc.RecordCall(ctx, "org-1", "reviewer-1", "+97714412780", "answered", "confirmed registration details")
	require.NoError(t, err)
	assert.Equal(t, "answered", call.Outcome)
	require.Len(t, store.calls, 1)

	_, err = svc.RecordCall(ctx, "org-1", "reviewer-1", "", "answered", "")
	assert.Equal(t, apperr.ValidationError, apperr.KindOf(err))

	_, err = svc.RecordCall(ctx, "missing", "reviewer-1", "+977", "answered", "")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestPendingReview(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newTestService(store)

	seedOrg(store, model.VerificationSubmitted)
	draft := model.NewOrganization("Hotel Everest", model.OrgHotel, "admin-2")
	draft.Key = "org-2"
	store.orgs["org-2"] = draft

	pending, err := svc.PendingReview(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "org-1", pending[0].Key)
}
