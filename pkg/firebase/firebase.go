// Package firebase initialises the Firebase app shared by the Firestore
// document store and ID-token verification.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/noah-isme/yoklama-api/pkg/config"
)

// NewApp builds a Firebase app from a service account file. An empty
// credentials path falls back to application default credentials.
func NewApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	conf := &firebase.Config{ProjectID: cfg.ProjectID}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

// NewFirestore opens a Firestore client for app.
func NewFirestore(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}
	return client, nil
}

// NewAuth opens a Firebase Auth client for ID-token verification.
func NewAuth(ctx context.Context, app *firebase.App) (*auth.Client, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return client, nil
}
