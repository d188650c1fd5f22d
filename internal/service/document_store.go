package service

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/yoklama-api/internal/models"
)

// DocumentReader is the read side of the document store.
type DocumentReader interface {
	Get(ctx context.Context, path string) (*models.Document, error)
	Query(ctx context.Context, collectionPath string, filters ...models.Filter) ([]models.Document, error)
	QueryGroup(ctx context.Context, collectionID string, filters ...models.Filter) ([]models.Document, error)
}

// DocumentStore adds writes for profile registration and imports.
type DocumentStore interface {
	DocumentReader
	Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error
}

// InstrumentedStore records latency and outcome of every store call.
type InstrumentedStore struct {
	next    DocumentStore
	metrics *MetricsService
}

// NewInstrumentedStore wraps next. With a nil metrics service it only delegates.
func NewInstrumentedStore(next DocumentStore, metrics *MetricsService) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics}
}

// Get implements DocumentReader.
func (s *InstrumentedStore) Get(ctx context.Context, path string) (*models.Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, path)
	s.observe("get", models.CollectionID(path), start, err)
	return doc, err
}

// Query implements DocumentReader.
func (s *InstrumentedStore) Query(ctx context.Context, collectionPath string, filters ...models.Filter) ([]models.Document, error) {
	start := time.Now()
	docs, err := s.next.Query(ctx, collectionPath, filters...)
	segments := models.SplitPath(collectionPath)
	collection := ""
	if len(segments) > 0 {
		collection = segments[len(segments)-1]
	}
	s.observe("query", collection, start, err)
	return docs, err
}

// QueryGroup implements DocumentReader.
func (s *InstrumentedStore) QueryGroup(ctx context.Context, collectionID string, filters ...models.Filter) ([]models.Document, error) {
	start := time.Now()
	docs, err := s.next.QueryGroup(ctx, collectionID, filters...)
	s.observe("query_group", collectionID, start, err)
	return docs, err
}

// Set implements DocumentStore.
func (s *InstrumentedStore) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	start := time.Now()
	err := s.next.Set(ctx, path, data, merge)
	s.observe("set", models.CollectionID(path), start, err)
	return err
}

func (s *InstrumentedStore) observe(operation, collection string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, models.ErrDocumentNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	s.metrics.ObserveStoreOperation(operation, collection, outcome, time.Since(start))
}
