// Package items implements the REST API handlers for item listings.
package items

import (
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/internal/matching"
	"github.com/khojpayo/khojpayo-backend/internal/permission"
	"github.com/khojpayo/khojpayo-backend/model"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
	"github.com/khojpayo/khojpayo-backend/util"
)

// CreateItemRequest is the body for posting a lost/found report
type CreateItemRequest struct {
	Type           model.ItemType `json:"type"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	District       string         `json:"district"`
	Municipality   string         `json:"municipality"`
	LocationDetail string         `json:"location_detail"`
	OccurredAt     time.Time      `json:"occurred_at"`
	ImageURLs      []string       `json:"image_urls"`
	OrganizationID string         `json:"organization_id"`
}

// PostItem creates a lost/found report. Posting on behalf of an
// organization requires the post_item permission, which in turn requires
// the organization to be verified.
func PostItem(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userKey := auth.CurrentUserKey(c)

		var req CreateItemRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if !req.Type.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be lost or found"})
		}
		if req.Title == "" || req.Category == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and category are required"})
		}

		ctx := c.Context()

		if req.OrganizationID != "" {
			org, err := getOrganization(c, db, req.OrganizationID)
			if err != nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "organization not found"})
			}
			member, _ := getActiveMember(c, db, req.OrganizationID, userKey)
			decision := permission.Resolve(userKey, org, member, permission.ActionPostItem)
			if !decision.Allowed {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": decision.Reason})
			}
		}

		item := model.NewItem(req.Type, userKey)
		item.Key = uuid.New().String()
		item.Title = req.Title
		item.Description = req.Description
		item.Category = util.NormalizeCategory(req.Category)
		item.District = util.NormalizeDistrict(req.District)
		item.Municipality = req.Municipality
		item.LocationDetail = req.LocationDetail
		item.OccurredAt = req.OccurredAt
		item.ImageURLs = req.ImageURLs
		item.OrganizationID = req.OrganizationID

		if _, err := db.Collections["items"].CreateDocument(ctx, item); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create item"})
		}

		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GetItem returns a single item by key
func GetItem(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		query := `
			FOR i IN items
				FILTER i._key == @key
				LIMIT 1
				RETURN i
		`
		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{"key": c.Params("id")},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query item"})
		}
		defer cursor.Close()

		if !cursor.HasMore() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		var item model.Item
		if _, err := cursor.ReadDocument(ctx, &item); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read item"})
		}
		return c.JSON(item)
	}
}

// ListItems returns items filtered by type/category/district/status
func ListItems(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		status := string(model.ItemActive)
		if v := c.Query("status"); v != "" {
			status = v
		}

		query := `
			FOR i IN items
				FILTER i.status == @status
		`
		bindVars := map[string]interface{}{"status": status}

		if v := c.Query("type"); v != "" {
			query += ` FILTER i.type == @type`
			bindVars["type"] = v
		}
		if v := c.Query("category"); v != "" {
			query += ` FILTER LOWER(i.category) == LOWER(@category)`
			bindVars["category"] = v
		}
		if v := c.Query("district"); v != "" {
			query += ` FILTER LOWER(i.district) == LOWER(@district)`
			bindVars["district"] = v
		}
		query += `
				SORT i.created_at DESC
				LIMIT 100
				RETURN i
		`

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query items"})
		}
		defer cursor.Close()

		items := []model.Item{}
		for cursor.HasMore() {
			var item model.Item
			if _, err := cursor.ReadDocument(ctx, &item); err != nil {
				continue
			}
			items = append(items, item)
		}
		return c.JSON(items)
	}
}

// GetMatches returns scored match candidates for an item
func GetMatches(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		query := `
			FOR i IN items
				FILTER i._key == @key
				LIMIT 1
				RETURN i
		`
		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{"key": c.Params("id")},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query item"})
		}
		defer cursor.Close()

		if !cursor.HasMore() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		var item model.Item
		if _, err := cursor.ReadDocument(ctx, &item); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read item"})
		}

		candidates, err := matching.FindCandidates(ctx, db, item, 50)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to query candidates"})
		}

		return c.JSON(matching.Rank(item, candidates))
	}
}

func getOrganization(c *fiber.Ctx, db database.DBConnection, orgID string) (*model.Organization, error) {
	ctx := c.Context()
	query := `
		FOR o IN organizations
			FILTER o._key == @key
			LIMIT 1
			RETURN o
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": orgID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, fiber.ErrNotFound
	}
	var org model.Organization
	if _, err := cursor.ReadDocument(ctx, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func getActiveMember(c *fiber.Ctx, db database.DBConnection, orgID, userID string) (*model.OrganizationMember, error) {
	ctx := c.Context()
	query := `
		FOR m IN org_members
			FILTER m.organization_id == @org AND m.user_id == @user AND m.is_active == true
			LIMIT 1
			RETURN m
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"org": orgID, "user": userID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var member model.OrganizationMember
	if _, err := cursor.ReadDocument(ctx, &member); err != nil {
		return nil, err
	}
	return &member, nil
}
