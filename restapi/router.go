package restapi

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/events/modules/notifications"
	claimsvc "github.com/khojpayo/khojpayo-backend/internal/claims"
	"github.com/khojpayo/khojpayo-backend/internal/notify"
	orgsvc "github.com/khojpayo/khojpayo-backend/internal/organizations"
	"github.com/khojpayo/khojpayo-backend/internal/verification"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/admin"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/auth"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/claims"
	"github.com/khojpayo/khojpayo-backend/restapi/modules/items"
	notificationsapi "github.com/khojpayo/khojpayo-backend/restapi/modules/notifications"
	orgsapi "github.com/khojpayo/khojpayo-backend/restapi/modules/organizations"
)

// SetupRoutes wires the domain services and mounts all REST API routes and
// the GraphQL endpoint.
func SetupRoutes(app *fiber.App, db database.DBConnection, schema graphql.Schema) {
	logger := database.InitLogger().Sugar()

	// Kafka is optional; without brokers notifications are DB-only
	var producer *notifications.Producer
	if brokers := database.GetEnvDefault("KAFKA_BROKERS", ""); brokers != "" {
		topic := database.GetEnvDefault("KAFKA_NOTIFICATION_TOPIC", "notification-events")
		producer = notifications.NewProducer(strings.Split(brokers, ","), topic)
	}
	emitter := notify.NewEmitter(db, producer, logger)

	claimService := claimsvc.NewService(claimsvc.NewArangoStore(db), emitter, logger)
	verificationService := verification.NewService(verification.NewArangoStore(db), emitter, verification.LoadDomainLists(), logger)
	orgService := orgsvc.NewService(db)

	go func() {
		if err := auth.BootstrapAdmin(db); err != nil {
			log.Printf("WARNING: Failed to bootstrap admin: %v", err)
		}
	}()

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL read API
	api.Post("/graphql", auth.OptionalAuth, GraphQLHandler(schema))

	// Public routes
	api.Post("/signup", auth.Signup(db))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.Login(db))
	authGroup.Post("/logout", auth.Logout())
	authGroup.Get("/me", auth.OptionalAuth, auth.Me(db))
	authGroup.Post("/change-password", auth.RequireAuth, auth.ChangePassword(db))

	// Item listings: reading is public, posting requires a login
	api.Get("/items", items.ListItems(db))
	api.Get("/items/:id", items.GetItem(db))
	api.Post("/items", auth.RequireAuth, items.PostItem(db))
	api.Get("/items/:id/matches", auth.RequireAuth, items.GetMatches(db))

	// Claim lifecycle
	claimGroup := api.Group("/claims", auth.RequireAuth)
	claimGroup.Post("/", claims.CreateClaim(claimService))
	claimGroup.Get("/", claims.ListClaims(db))
	claimGroup.Get("/:id", claims.GetClaim(db))
	claimGroup.Patch("/:id", claims.UpdateClaim(claimService))

	// Organizations and their verification workflow
	orgGroup := api.Group("/organizations", auth.RequireAuth)
	orgGroup.Post("/", orgsapi.CreateOrganization(orgService))
	orgGroup.Get("/mine", orgsapi.ListMyOrganizations(orgService))
	orgGroup.Get("/:id", orgsapi.GetOrganization(orgService))
	orgGroup.Post("/:id/verification", orgsapi.SaveVerificationDraft(verificationService))
	orgGroup.Post("/:id/verification/submit", orgsapi.SubmitVerification(verificationService))

	// Notification feed
	notifyGroup := api.Group("/notifications", auth.RequireAuth)
	notifyGroup.Get("/", notificationsapi.ListNotifications(db))
	notifyGroup.Post("/:id/read", notificationsapi.MarkRead(db))

	// Admin verification queue
	adminGroup := api.Group("/admin", auth.RequireAuth, auth.RequireRole("admin"))
	adminGroup.Get("/verifications", admin.ListPendingVerifications(verificationService))
	adminGroup.Post("/verifications/:id", admin.ReviewVerification(verificationService))
	adminGroup.Post("/verifications/:id/calls", admin.RecordVerificationCall(verificationService))

	log.Println("API routes initialized successfully")
}
