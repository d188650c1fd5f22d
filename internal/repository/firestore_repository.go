package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/noah-isme/yoklama-api/internal/models"
)

// FirestoreRepository reads and writes documents in Cloud Firestore, the store
// the mobile app talks to directly.
type FirestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository wraps an initialised Firestore client.
func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

// Get fetches the document at path.
func (r *FirestoreRepository) Get(ctx context.Context, path string) (*models.Document, error) {
	ref := r.client.Doc(strings.Trim(path, "/"))
	if ref == nil {
		return nil, fmt.Errorf("get document %q: %w", path, models.ErrDocumentNotFound)
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("firestore get %s: %w", path, err)
	}
	if !snap.Exists() {
		return nil, models.ErrDocumentNotFound
	}
	doc := snapshotDocument(snap)
	return &doc, nil
}

// Query returns documents directly inside collectionPath matching every filter.
func (r *FirestoreRepository) Query(ctx context.Context, collectionPath string, filters ...models.Filter) ([]models.Document, error) {
	col := r.client.Collection(strings.Trim(collectionPath, "/"))
	if col == nil {
		return nil, fmt.Errorf("query documents: invalid collection %q", collectionPath)
	}
	return r.run(ctx, col.Query, collectionPath, filters)
}

// QueryGroup runs a collection-group query over every collection named collectionID.
func (r *FirestoreRepository) QueryGroup(ctx context.Context, collectionID string, filters ...models.Filter) ([]models.Document, error) {
	return r.run(ctx, r.client.CollectionGroup(collectionID).Query, collectionID, filters)
}

// Set writes data at path, merging top-level fields when merge is true.
func (r *FirestoreRepository) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	ref := r.client.Doc(strings.Trim(path, "/"))
	if ref == nil {
		return fmt.Errorf("set document: invalid path %q", path)
	}
	var err error
	if merge {
		_, err = ref.Set(ctx, data, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("firestore set %s: %w", path, err)
	}
	return nil
}

func (r *FirestoreRepository) run(ctx context.Context, q firestore.Query, scope string, filters []models.Filter) ([]models.Document, error) {
	for _, f := range filters {
		q = q.Where(f.Field, "==", firestoreValue(f.Value))
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s: %w", scope, err)
	}
	docs := make([]models.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, snapshotDocument(snap))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// firestoreValue maps JSON-decoded numbers onto the int64 values Firestore
// stores for integers, so equality filters match.
func firestoreValue(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
	case int:
		return int64(t)
	}
	return v
}

func snapshotDocument(snap *firestore.DocumentSnapshot) models.Document {
	return models.Document{Path: relativePath(snap.Ref.Path), Data: snap.Data()}
}

// relativePath strips the "projects/{p}/databases/{db}/documents/" prefix.
func relativePath(full string) string {
	const marker = "/documents/"
	if idx := strings.Index(full, marker); idx >= 0 {
		return full[idx+len(marker):]
	}
	return strings.Trim(full, "/")
}
