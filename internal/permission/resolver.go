// Package permission resolves whether a user may perform an action on behalf
// of an organization. The resolver is a pure function over the organization,
// the user's membership, and the action name; it performs no I/O and never
// errors on absent memberships - absence is an ordinary deny.
package permission

import (
	"fmt"

	"github.com/khojpayo/khojpayo-backend/model"
)

// Actions an organization member can be asked to perform
const (
	ActionManageClaim   = "manage_claim"
	ActionPostItem      = "post_item"
	ActionManageMembers = "manage_members"
	ActionEditOrg       = "edit_org"
	ActionView          = "view"
)

// staffActions is the explicit allow-list for org_staff. Staff can work
// claims and post listings but cannot touch membership or org settings.
var staffActions = map[string]bool{
	ActionManageClaim: true,
	ActionPostItem:    true,
	ActionView:        true,
}

// Decision is the result of a permission check
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(format string, args ...interface{}) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Resolve decides whether userID may perform action for org. member is the
// user's membership record in org, or nil when none exists. The organization
// admin is allowed unconditionally; everyone else is resolved from their
// member role, and capability-gated actions additionally require the
// organization's verification-derived flags.
func Resolve(userID string, org *model.Organization, member *model.OrganizationMember, action string) Decision {
	if org == nil {
		return deny("organization not found")
	}

	if org.AdminID == userID {
		return allow()
	}

	if member == nil || !member.IsActive ||
		member.UserID != userID || member.OrganizationID != org.Key {
		return deny("no active membership in organization")
	}

	var roleAllowed bool
	switch member.MemberRole {
	case model.MemberOwner, model.MemberAdmin:
		roleAllowed = true
	case model.MemberStaff:
		roleAllowed = staffActions[action]
	case model.MemberViewer:
		roleAllowed = action == ActionView
	default:
		roleAllowed = false
	}

	if !roleAllowed {
		return deny("role %s may not perform %s", member.MemberRole, action)
	}

	// Role alone is not enough for capability-gated actions: the
	// organization must also hold the verification-derived flag.
	switch action {
	case ActionManageClaim:
		if !org.CanManageClaims {
			return deny("organization is not permitted to manage claims")
		}
	case ActionPostItem:
		if !org.CanPostItems {
			return deny("organization is not permitted to post items")
		}
	}

	return allow()
}
