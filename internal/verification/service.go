package verification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	"github.com/khojpayo/khojpayo-backend/internal/permission"
	"github.com/khojpayo/khojpayo-backend/model"
)

// Notifier is the fire-and-forget notification channel
type Notifier interface {
	Emit(ctx context.Context, userID, ntype, title, body string, data map[string]interface{})
}

// Service runs the organization verification state machine. Admin-only
// transitions (StartReview, ScheduleCall, RequestDocuments, Approve, Reject,
// Suspend) assume the caller has already been authenticated as a platform
// admin at the route layer; the actor ID is still recorded in the audit
// trail.
type Service struct {
	store    Store
	notifier Notifier
	domains  DomainLists
	logger   *zap.SugaredLogger
}

// NewService creates a verification service
func NewService(store Store, notifier Notifier, domains DomainLists, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, notifier: notifier, domains: domains, logger: logger}
}

// DraftFields is the editable portion of a verification record
type DraftFields struct {
	RegisteredName        string   `json:"registered_name"`
	RegistrationType      string   `json:"registration_type"`
	RegistrationNumber    string   `json:"registration_number"`
	RegistrationDate      string   `json:"registration_date"`
	RegistrationAuthority string   `json:"registration_authority"`
	Province              string   `json:"province"`
	District              string   `json:"district"`
	Municipality          string   `json:"municipality"`
	Ward                  string   `json:"ward"`
	Street                string   `json:"street"`
	PostalCode            string   `json:"postal_code"`
	OfficialEmail         string   `json:"official_email"`
	OfficialPhone         string   `json:"official_phone"`
	SecondaryPhone        string   `json:"secondary_phone"`
	Website               string   `json:"website"`
	DocumentURLs          []string `json:"document_urls"`
}

// SaveDraft upserts the verification record while the organization is still
// editable (draft, or rejected awaiting resubmission). Only the org
// admin/owner may edit.
func (s *Service) SaveDraft(ctx context.Context, orgID, actorID string, fields DraftFields) (*model.OrganizationVerification, error) {
	org, err := s.requireOrgEditor(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if org.VerificationStatus != model.VerificationDraft && org.VerificationStatus != model.VerificationRejected {
		return nil, apperr.E(apperr.InvalidState, "verification is %s and can no longer be edited", org.VerificationStatus)
	}

	existing, err := s.store.GetVerification(ctx, orgID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := existing
	if rec == nil {
		rec = &model.OrganizationVerification{
			OrganizationID: orgID,
			CreatedAt:      now,
		}
	}
	applyDraftFields(rec, fields)
	rec.UpdatedAt = now

	return s.store.UpsertVerification(ctx, rec)
}

// Submit validates the verification record and moves the organization to
// submitted. Resubmission after rejection stamps a fresh submitted_at: each
// submission starts a new review cycle.
func (s *Service) Submit(ctx context.Context, orgID, actorID string) (*model.Organization, error) {
	org, err := s.requireOrgEditor(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !org.VerificationStatus.CanTransition(model.VerificationSubmitted) {
		return nil, apperr.E(apperr.InvalidState, "cannot submit from status %s", org.VerificationStatus)
	}

	rec, err := s.store.GetVerification(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.E(apperr.ValidationError, "no verification details on file")
	}

	trusted, err := s.validateForSubmit(rec)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cleared := ""
	matched, err := s.store.TransitionOrganization(ctx, orgID,
		[]model.VerificationStatus{model.VerificationDraft, model.VerificationRejected},
		OrgPatch{Status: model.VerificationSubmitted, SubmittedAt: &now, RejectionReason: &cleared})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.E(apperr.Conflict, "verification status changed, retry")
	}

	if err := s.store.SetVerificationSubmitted(ctx, orgID, now, trusted); err != nil {
		return nil, err
	}

	s.audit(ctx, orgID, actorID, org.VerificationStatus, model.VerificationSubmitted, "")
	return s.store.GetOrganization(ctx, orgID)
}

// StartReview moves a submitted verification into review
func (s *Service) StartReview(ctx context.Context, orgID, actorID string) (*model.Organization, error) {
	return s.adminTransition(ctx, orgID, actorID,
		[]model.VerificationStatus{model.VerificationSubmitted},
		OrgPatch{Status: model.VerificationUnderReview}, "")
}

// ScheduleCall parks the review pending a phone verification call
func (s *Service) ScheduleCall(ctx context.Context, orgID, actorID string) (*model.Organization, error) {
	return s.adminTransition(ctx, orgID, actorID,
		[]model.VerificationStatus{model.VerificationSubmitted, model.VerificationUnderReview},
		OrgPatch{Status: model.VerificationPendingCall}, "")
}

// RequestDocuments parks the review pending additional documents
func (s *Service) RequestDocuments(ctx context.Context, orgID, actorID string) (*model.Organization, error) {
	return s.adminTransition(ctx, orgID, actorID,
		[]model.VerificationStatus{model.VerificationUnderReview},
		OrgPatch{Status: model.VerificationPendingDocuments}, "")
}

// Approve grants the organization its posting and claim-management
// capabilities.
func (s *Service) Approve(ctx context.Context, orgID, actorID string) (*model.Organization, error) {
	now := time.Now().UTC()
	yes := true
	org, err := s.adminTransition(ctx, orgID, actorID,
		[]model.VerificationStatus{model.VerificationUnderReview, model.VerificationPendingCall, model.VerificationPendingDocuments},
		OrgPatch{
			Status:          model.VerificationApproved,
			IsVerified:      &yes,
			CanPostItems:    &yes,
			CanManageClaims: &yes,
			ApprovedAt:      &now,
			ApprovedBy:      actorID,
		}, "")
	if err != nil {
		return nil, err
	}

	s.emit(ctx, org.AdminID, model.NotifyVerificationApproved,
		"Organization verified",
		fmt.Sprintf("%s has been verified. You can now post items and manage claims.", org.Name),
		map[string]interface{}{"organization_id": org.Key})
	return org, nil
}

// Reject declines the verification, forcing the capability flags off
func (s *Service) Reject(ctx context.Context, orgID, actorID, reason string) (*model.Organization, error) {
	no := false
	org, err := s.adminTransition(ctx, orgID, actorID,
		[]model.VerificationStatus{model.VerificationUnderReview, model.VerificationPendingCall},
		OrgPatch{
			Status:          model.VerificationRejected,
			IsVerified:      &no,
			CanPostItems:    &no,
			CanManageClaims: &no,
			RejectionReason: &reason,
		}, reason)
	if err != nil {
		return nil, err
	}

	body := "Your organization's verification was rejected."
	if reason != "" {
		body = fmt.Sprintf("Your organization's verification was rejected: %s", reason)
	}
	s.emit(ctx, org.AdminID, model.NotifyVerificationRejected,
		"Verification rejected", body,
		map[string]interface{}{"organization_id": org.Key})
	return org, nil
}

// Suspend revokes an approved organization. Both capability flags are
// forced false regardless of prior value.
func (s *Service) Suspend(ctx context.Context, orgID, actorID, reason string) (*model.Organization, error) {
	no := false
	return s.adminTransition(ctx, orgID, actorID,
		[]model.VerificationStatus{model.VerificationApproved},
		OrgPatch{
			Status:          model.VerificationSuspended,
			IsVerified:      &no,
			CanPostItems:    &no,
			CanManageClaims: &no,
		}, reason)
}

// RecordCall logs a phone-verification call made by a reviewer
func (s *Service) RecordCall(ctx context.Context, orgID, reviewerID, phone, outcome, notes string) (*model.VerificationCall, error) {
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.E(apperr.NotFound, "organization not found")
	}
	if phone == "" || outcome == "" {
		return nil, apperr.E(apperr.ValidationError, "phone_number and outcome are required")
	}

	now := time.Now().UTC()
	call := &model.VerificationCall{
		OrganizationID: orgID,
		ReviewerID:     reviewerID,
		PhoneNumber:    phone,
		Outcome:        outcome,
		Notes:          notes,
		CalledAt:       now,
		CreatedAt:      now,
	}
	if err := s.store.InsertCall(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}

// PendingReview lists organizations awaiting an admin decision
func (s *Service) PendingReview(ctx context.Context) ([]model.Organization, error) {
	return s.store.ListByStatus(ctx, []model.VerificationStatus{
		model.VerificationSubmitted,
		model.VerificationUnderReview,
		model.VerificationPendingCall,
		model.VerificationPendingDocuments,
	})
}

func (s *Service) adminTransition(ctx context.Context, orgID, actorID string, from []model.VerificationStatus, patch OrgPatch, reason string) (*model.Organization, error) {
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.E(apperr.NotFound, "organization not found")
	}
	if !org.VerificationStatus.CanTransition(patch.Status) {
		return nil, apperr.E(apperr.InvalidState, "cannot move from %s to %s", org.VerificationStatus, patch.Status)
	}

	matched, err := s.store.TransitionOrganization(ctx, orgID, from, patch)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.E(apperr.Conflict, "verification status changed, retry")
	}

	s.audit(ctx, orgID, actorID, org.VerificationStatus, patch.Status, reason)
	return s.store.GetOrganization(ctx, orgID)
}

// audit writes the durable per-transition record. A failed audit write is
// logged but does not undo the committed transition.
func (s *Service) audit(ctx context.Context, orgID, actorID string, from, to model.VerificationStatus, reason string) {
	err := s.store.InsertAudit(ctx, &model.VerificationAudit{
		OrganizationID: orgID,
		ActorID:        actorID,
		FromStatus:     from,
		ToStatus:       to,
		Reason:         reason,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warnw("failed to write verification audit record",
			"organization", orgID, "from", from, "to", to, "error", err)
	}
}

func (s *Service) requireOrgEditor(ctx context.Context, orgID, actorID string) (*model.Organization, error) {
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.E(apperr.NotFound, "organization not found")
	}

	member, err := s.store.GetActiveMember(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	decision := permission.Resolve(actorID, org, member, permission.ActionEditOrg)
	if !decision.Allowed {
		return nil, apperr.E(apperr.Forbidden, "%s", decision.Reason)
	}
	return org, nil
}

// validateForSubmit checks the required registration and contact fields and
// applies the email-domain policy. Returns whether the official email domain
// is a trusted institutional domain.
func (s *Service) validateForSubmit(rec *model.OrganizationVerification) (bool, error) {
	required := map[string]string{
		"registered_name":     rec.RegisteredName,
		"registration_type":   rec.RegistrationType,
		"registration_number": rec.RegistrationNumber,
		"province":            rec.Province,
		"district":            rec.District,
		"municipality":        rec.Municipality,
		"official_email":      rec.OfficialEmail,
		"official_phone":      rec.OfficialPhone,
	}
	for field, value := range required {
		if value == "" {
			return false, apperr.E(apperr.ValidationError, "%s is required", field)
		}
	}

	domain := EmailDomain(rec.OfficialEmail)
	if domain == "" {
		return false, apperr.E(apperr.ValidationError, "official_email is not a valid email address")
	}
	if s.domains.IsBlocked(domain) {
		return false, apperr.E(apperr.ValidationError, "official_email must use an institutional domain, not %s", domain)
	}
	return s.domains.IsTrusted(domain), nil
}

func (s *Service) emit(ctx context.Context, userID, ntype, title, body string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, userID, ntype, title, body, data)
}

func applyDraftFields(rec *model.OrganizationVerification, fields DraftFields) {
	rec.RegisteredName = fields.RegisteredName
	rec.RegistrationType = fields.RegistrationType
	rec.RegistrationNumber = fields.RegistrationNumber
	rec.RegistrationDate = fields.RegistrationDate
	rec.RegistrationAuthority = fields.RegistrationAuthority
	rec.Province = fields.Province
	rec.District = fields.District
	rec.Municipality = fields.Municipality
	rec.Ward = fields.Ward
	rec.Street = fields.Street
	rec.PostalCode = fields.PostalCode
	rec.OfficialEmail = fields.OfficialEmail
	rec.OfficialPhone = fields.OfficialPhone
	rec.SecondaryPhone = fields.SecondaryPhone
	rec.Website = fields.Website
	rec.DocumentURLs = fields.DocumentURLs
}
