// Package organizations implements the REST API handlers for organization
// accounts and their verification workflow.
package organizations

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	orgsvc "github.com/khojpayo/khojpayo-backend/internal/organizations"
	"github.com/khojpayo/khojpayo-backend/internal/verification"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
)

// CreateOrganization registers a new organization. The creator becomes the
// org admin and its owner member.
func CreateOrganization(svc *orgsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req orgsvc.CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		org, err := svc.Create(c.Context(), auth.CurrentUserKey(c), req)
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(org)
	}
}

// GetOrganization returns a single organization
func GetOrganization(svc *orgsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(org)
	}
}

// ListMyOrganizations returns the caller's organizations
func ListMyOrganizations(svc *orgsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgs, err := svc.ListForUser(c.Context(), auth.CurrentUserKey(c))
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(orgs)
	}
}

// SaveVerificationDraft stores or updates the verification details while the
// organization is still editable.
func SaveVerificationDraft(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields verification.DraftFields
		if err := c.BodyParser(&fields); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		rec, err := svc.SaveDraft(c.Context(), c.Params("id"), auth.CurrentUserKey(c), fields)
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(rec)
	}
}

// SubmitVerification validates the draft and submits it for review
func SubmitVerification(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := svc.Submit(c.Context(), c.Params("id"), auth.CurrentUserKey(c))
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(org)
	}
}
