package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"studybuddy/backend/config"
)

// NewFirebaseApp initializes the Firebase Admin SDK from raw or base64 JSON
// service account credentials. It returns nil without error when no
// credentials are configured, which callers treat as development mode.
func NewFirebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	log.Println("Starting Firebase initialization...")

	credentials := []byte(cfg.CredentialsJSON)
	if len(credentials) == 0 && cfg.CredentialsBase64 != "" {
		log.Println("Using base64-encoded Firebase credentials from environment")
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 Firebase credentials: %w", err)
		}
		credentials = decoded
	}
	if len(credentials) == 0 {
		log.Println("No Firebase credentials found, running in development mode")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	log.Printf("Firebase Admin SDK initialized for project %q", cfg.ProjectID)
	return app, nil
}
