// Package main is the entry point for the khojpayo-backend microservice:
// the REST and GraphQL API for the KhojPayo lost-and-found platform, plus
// the background worker that delivers notification emails.
package main

import (
	"context"
	"log"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/internal/api"
	"github.com/khojpayo/khojpayo-backend/internal/kafka"
)

func main() {
	db := database.InitializeDatabase()

	app := api.NewFiberApp(db)

	// Notification email delivery runs off the Kafka event stream when
	// brokers are configured.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := kafka.RunEventProcessor(ctx, db); err != nil {
		log.Printf("WARNING: event processor not started: %v", err)
	}

	port := database.GetEnvDefault("MS_PORT", "8080")
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
