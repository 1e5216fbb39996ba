// Package admin implements the REST API handlers for the platform admin
// verification queue. All routes in this package sit behind the admin role
// check in the router.
package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	"github.com/khojpayo/khojpayo-backend/internal/verification"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
)

// VerificationActionRequest selects an admin review transition
type VerificationActionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// RecordCallRequest logs a phone verification call
type RecordCallRequest struct {
	PhoneNumber string `json:"phone_number"`
	Outcome     string `json:"outcome"`
	Notes       string `json:"notes"`
}

// Review actions
const (
	ActionStartReview      = "start_review"
	ActionScheduleCall     = "schedule_call"
	ActionRequestDocuments = "request_documents"
	ActionApprove          = "approve"
	ActionReject           = "reject"
	ActionSuspend          = "suspend"
)

// ListPendingVerifications returns organizations awaiting review
func ListPendingVerifications(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgs, err := svc.PendingReview(c.Context())
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(orgs)
	}
}

// ReviewVerification applies an admin transition to an organization's
// verification.
func ReviewVerification(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req VerificationActionRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		orgID := c.Params("id")
		actorID := auth.CurrentUserKey(c)
		ctx := c.Context()

		switch req.Action {
		case ActionStartReview:
			org, err := svc.StartReview(ctx, orgID, actorID)
			return respond(c, org, err)
		case ActionScheduleCall:
			org, err := svc.ScheduleCall(ctx, orgID, actorID)
			return respond(c, org, err)
		case ActionRequestDocuments:
			org, err := svc.RequestDocuments(ctx, orgID, actorID)
			return respond(c, org, err)
		case ActionApprove:
			org, err := svc.Approve(ctx, orgID, actorID)
			return respond(c, org, err)
		case ActionReject:
			if req.Reason == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required when rejecting"})
			}
			org, err := svc.Reject(ctx, orgID, actorID, req.Reason)
			return respond(c, org, err)
		case ActionSuspend:
			org, err := svc.Suspend(ctx, orgID, actorID, req.Reason)
			return respond(c, org, err)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown action"})
		}
	}
}

// RecordVerificationCall logs the outcome of a phone verification call
func RecordVerificationCall(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RecordCallRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		call, err := svc.RecordCall(c.Context(), c.Params("id"), auth.CurrentUserKey(c),
			req.PhoneNumber, req.Outcome, req.Notes)
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(call)
	}
}

func respond(c *fiber.Ctx, payload interface{}, err error) error {
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(payload)
}
