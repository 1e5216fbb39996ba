// Package claims implements the REST API handlers for the claim lifecycle.
package claims

import (
	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/internal/apperr"
	claimsvc "github.com/khojpayo/khojpayo-backend/internal/claims"
	"github.com/khojpayo/khojpayo-backend/model"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
)

// CreateClaimRequest is the body for filing a claim
type CreateClaimRequest struct {
	ItemID           string           `json:"item_id"`
	SecretInfo       string           `json:"secret_info"`
	ProofDescription string           `json:"proof_description"`
	Evidence         []model.Evidence `json:"evidence"`
}

// UpdateClaimRequest drives PATCH /claims/:id. A status field selects a
// transition; otherwise the proof fields are edited in place.
type UpdateClaimRequest struct {
	Status           string           `json:"status"`
	RejectionReason  string           `json:"rejection_reason"`
	SecretInfo       *string          `json:"secret_info"`
	ProofDescription *string          `json:"proof_description"`
	Evidence         []model.Evidence `json:"evidence"`
}

// CreateClaim files a pending claim on an item
func CreateClaim(svc *claimsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateClaimRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.ItemID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_id is required"})
		}

		claim, err := svc.Create(c.Context(), claimsvc.CreateRequest{
			ItemID:           req.ItemID,
			ClaimantID:       auth.CurrentUserKey(c),
			SecretInfo:       req.SecretInfo,
			ProofDescription: req.ProofDescription,
			Evidence:         req.Evidence,
		})
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(claim)
	}
}

// UpdateClaim edits or transitions a claim depending on the request body
func UpdateClaim(svc *claimsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req UpdateClaimRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		claimID := c.Params("id")
		actorID := auth.CurrentUserKey(c)
		ctx := c.Context()

		var (
			claim *model.Claim
			err   error
		)
		switch model.ClaimStatus(req.Status) {
		case "":
			claim, err = svc.Edit(ctx, claimsvc.EditRequest{
				ClaimID:          claimID,
				ActorID:          actorID,
				SecretInfo:       req.SecretInfo,
				ProofDescription: req.ProofDescription,
				Evidence:         req.Evidence,
			})
		case model.ClaimWithdrawn:
			claim, err = svc.Withdraw(ctx, claimID, actorID)
		case model.ClaimApproved:
			claim, err = svc.Approve(ctx, claimID, actorID)
		case model.ClaimRejected:
			claim, err = svc.Reject(ctx, claimID, actorID, req.RejectionReason)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be withdrawn, approved, or rejected"})
		}
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(claim)
	}
}

// GetClaim returns a claim with its evidence. Visible only to the claimant
// and the item owner.
func GetClaim(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		userKey := auth.CurrentUserKey(c)

		query := `
			FOR cl IN claims
				FILTER cl._key == @key
				LIMIT 1
				LET item = FIRST(FOR i IN items FILTER i._key == cl.item_id RETURN i)
				LET evidence = (FOR e IN evidence FILTER e.claim_id == cl._key SORT e.created_at RETURN e)
				RETURN { claim: cl, item: item, evidence: evidence }
		`
		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{"key": c.Params("id")},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query claim"})
		}
		defer cursor.Close()

		if !cursor.HasMore() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "claim not found"})
		}

		var row struct {
			Claim    model.Claim      `json:"claim"`
			Item     *model.Item      `json:"item"`
			Evidence []model.Evidence `json:"evidence"`
		}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read claim"})
		}

		isClaimant := row.Claim.ClaimantID == userKey
		isOwner := row.Item != nil && row.Item.UserID == userKey
		if !isClaimant && !isOwner && c.Locals("role") != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized to view this claim"})
		}

		return c.JSON(row)
	}
}

// ListClaims returns claims filtered by item or by the calling claimant
func ListClaims(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		userKey := auth.CurrentUserKey(c)

		query := `FOR cl IN claims`
		bindVars := map[string]interface{}{}

		if itemID := c.Query("item_id"); itemID != "" {
			// listing claims on an item is for the item owner
			owns, err := userOwnsItem(c, db, itemID, userKey)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query item"})
			}
			if !owns && c.Locals("role") != "admin" {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized to list claims on this item"})
			}
			query += ` FILTER cl.item_id == @item`
			bindVars["item"] = itemID
		} else {
			query += ` FILTER cl.claimant_id == @claimant`
			bindVars["claimant"] = userKey
		}

		if status := c.Query("status"); status != "" {
			query += ` FILTER cl.status == @status`
			bindVars["status"] = status
		}
		query += ` SORT cl.created_at DESC RETURN cl`

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query claims"})
		}
		defer cursor.Close()

		claims := []model.Claim{}
		for cursor.HasMore() {
			var claim model.Claim
			if _, err := cursor.ReadDocument(ctx, &claim); err != nil {
				continue
			}
			claims = append(claims, claim)
		}
		return c.JSON(claims)
	}
}

func userOwnsItem(c *fiber.Ctx, db database.DBConnection, itemID, userKey string) (bool, error) {
	ctx := c.Context()
	query := `
		FOR i IN items
			FILTER i._key == @key AND i.user_id == @user
			LIMIT 1
			RETURN i._key
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": itemID, "user": userKey},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}
