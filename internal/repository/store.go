package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/pkg/config"
	"github.com/noah-isme/yoklama-api/pkg/database"
	"github.com/noah-isme/yoklama-api/pkg/firebase"
)

// DocumentStore is implemented by DocumentRepository and FirestoreRepository.
type DocumentStore interface {
	Get(ctx context.Context, path string) (*models.Document, error)
	Query(ctx context.Context, collectionPath string, filters ...models.Filter) ([]models.Document, error)
	QueryGroup(ctx context.Context, collectionID string, filters ...models.Filter) ([]models.Document, error)
	Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error
}

// StoreHandle bundles an opened document store with its lifecycle hooks.
type StoreHandle struct {
	Store  DocumentStore
	Driver string
	Ping   func(ctx context.Context) error
	Close  func() error
}

// OpenDocumentStore connects the backend selected by cfg.Store.Driver. The
// PostgreSQL schema is created on open.
func OpenDocumentStore(ctx context.Context, cfg *config.Config) (*StoreHandle, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo := NewDocumentRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &StoreHandle{Store: repo, Driver: cfg.Store.Driver, Ping: db.PingContext, Close: db.Close}, nil
	case config.StoreDriverFirestore:
		app, err := firebase.NewApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		client, err := firebase.NewFirestore(ctx, app)
		if err != nil {
			return nil, err
		}
		repo := NewFirestoreRepository(client)
		ping := func(ctx context.Context) error {
			_, err := repo.Get(ctx, "settings/app")
			if errors.Is(err, models.ErrDocumentNotFound) {
				return nil
			}
			return err
		}
		return &StoreHandle{Store: repo, Driver: cfg.Store.Driver, Ping: ping, Close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
