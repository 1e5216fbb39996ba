package verification

import (
	"context"
	"time"

	"github.com/khojpayo/khojpayo-backend/model"
)

// OrgPatch carries the organization fields written alongside a verification
// transition. Nil pointers leave fields untouched.
type OrgPatch struct {
	Status          model.VerificationStatus
	IsVerified      *bool
	CanPostItems    *bool
	CanManageClaims *bool
	RejectionReason *string
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      string
}

// Store is the persistence surface the verification service runs against
type Store interface {
	GetOrganization(ctx context.Context, orgID string) (*model.Organization, error)
	GetActiveMember(ctx context.Context, orgID, userID string) (*model.OrganizationMember, error)

	// TransitionOrganization conditionally moves an organization from one of
	// the expected statuses to patch.Status, applying the rest of the patch
	// in the same write. matched=false means the status had already moved.
	TransitionOrganization(ctx context.Context, orgID string, from []model.VerificationStatus, patch OrgPatch) (matched bool, err error)

	GetVerification(ctx context.Context, orgID string) (*model.OrganizationVerification, error)
	UpsertVerification(ctx context.Context, rec *model.OrganizationVerification) (*model.OrganizationVerification, error)
	SetVerificationSubmitted(ctx context.Context, orgID string, submittedAt time.Time, trustedDomain bool) error

	InsertAudit(ctx context.Context, audit *model.VerificationAudit) error
	InsertCall(ctx context.Context, call *model.VerificationCall) error

	ListByStatus(ctx context.Context, statuses []model.VerificationStatus) ([]model.Organization, error)
}
