// Package auth provides authentication handlers for Fiber.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/model"
)

// Signup handles public user registration
func Signup(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		if req.Username == "" || req.Email == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username, email and password are required"})
		}
		if len(req.Password) < 8 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 8 characters"})
		}
		if !strings.Contains(req.Email, "@") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is not valid"})
		}

		ctx := c.Context()

		// Check if Username or Email already exists
		userCheckQuery := `
			FOR u IN users
			FILTER LOWER(u.username) == LOWER(@username) OR LOWER(u.email) == LOWER(@email)
			LIMIT 1
			RETURN u
		`
		userCursor, err := db.Database.Query(ctx, userCheckQuery, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"username": req.Username,
				"email":    req.Email,
			},
		})
		if err == nil {
			defer userCursor.Close()
			if userCursor.HasMore() {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Username or Email is already in use",
				})
			}
		}

		hash, err := HashPassword(req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process password"})
		}

		user := model.NewUser(req.Username, req.Email)
		user.Key = uuid.New().String()
		user.PasswordHash = hash
		user.FullName = req.FullName
		user.Phone = req.Phone

		if _, err := db.Collections["users"].CreateDocument(ctx, user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
		}

		token, err := GenerateJWT(user.Key, user.Username, user.Role)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
		}
		SetAuthCookie(c, token)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Signup successful",
			"key":      user.Key,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		})
	}
}

// Login handles user login and sets auth cookie
func Login(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if req.Username == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
		}

		ctx := c.Context()
		user, err := getUserByUsername(ctx, db, req.Username)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}

		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Account is inactive"})
		}

		if !CheckPasswordHash(req.Password, user.PasswordHash) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}

		token, err := GenerateJWT(user.Key, user.Username, user.Role)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
		}

		SetAuthCookie(c, token)

		return c.JSON(fiber.Map{
			"message":  "Login successful",
			"key":      user.Key,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		})
	}
}

// Logout clears the auth cookie
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     "auth_token",
			Value:    "",
			Expires:  time.Now().Add(-1 * time.Hour),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   false,
			SameSite: "Lax",
			Path:     "/",
		})
		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}
}

// Me returns current authenticated user info
func Me(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userKey := CurrentUserKey(c)
		if userKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}

		ctx := c.Context()
		user, err := getUserByKey(ctx, db, userKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user profile"})
		}

		return c.JSON(UserResponse{
			Key:      user.Key,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		})
	}
}

// ChangePassword updates the authenticated user's password
func ChangePassword(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userKey := CurrentUserKey(c)
		if userKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}

		var req ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if len(req.NewPassword) < 8 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 8 characters"})
		}

		ctx := c.Context()
		user, err := getUserByKey(ctx, db, userKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
		}

		if !CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Current password is incorrect"})
		}

		hash, err := HashPassword(req.NewPassword)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process password"})
		}

		updateQuery := `UPDATE @key WITH { password_hash: @hash, updated_at: @now } IN users`
		_, err = db.Database.Query(ctx, updateQuery, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"key":  userKey,
				"hash": hash,
				"now":  time.Now().UTC(),
			},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
		}

		return c.JSON(fiber.Map{"message": "Password changed"})
	}
}

// SetAuthCookie writes the JWT session cookie
func SetAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		Path:     "/",
	})
}

func getUserByUsername(ctx context.Context, db database.DBConnection, username string) (*model.User, error) {
	query := `
		FOR u IN users
			FILTER LOWER(u.username) == LOWER(@username)
			LIMIT 1
			RETURN u
	`
	return queryUser(ctx, db, query, map[string]interface{}{"username": username})
}

func getUserByKey(ctx context.Context, db database.DBConnection, key string) (*model.User, error) {
	query := `
		FOR u IN users
			FILTER u._key == @key
			LIMIT 1
			RETURN u
	`
	return queryUser(ctx, db, query, map[string]interface{}{"key": key})
}

func queryUser(ctx context.Context, db database.DBConnection, query string, bindVars map[string]interface{}) (*model.User, error) {
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, fmt.Errorf("user not found")
	}
	var user model.User
	if _, err := cursor.ReadDocument(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BootstrapAdmin creates the initial platform admin account from env vars
// when no admin exists yet.
func BootstrapAdmin(db database.DBConnection) error {
	ctx := context.Background()

	adminUser := database.GetEnvDefault("ADMIN_USERNAME", "admin")
	adminEmail := database.GetEnvDefault("ADMIN_EMAIL", "admin@khojpayo.com")
	adminPass := database.GetEnvDefault("ADMIN_PASSWORD", "")
	if adminPass == "" {
		return nil
	}

	checkQuery := `
		FOR u IN users
			FILTER u.role == "admin"
			LIMIT 1
			RETURN u._key
	`
	cursor, err := db.Database.Query(ctx, checkQuery, &arangodb.QueryOptions{})
	if err != nil {
		return err
	}
	defer cursor.Close()
	if cursor.HasMore() {
		return nil
	}

	hash, err := HashPassword(adminPass)
	if err != nil {
		return err
	}

	admin := model.NewUser(adminUser, adminEmail)
	admin.Key = uuid.New().String()
	admin.PasswordHash = hash
	admin.Role = "admin"

	_, err = db.Collections["users"].CreateDocument(ctx, admin)
	return err
}
