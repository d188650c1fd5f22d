package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/yoklama-api/internal/models"
)

// DocumentSchema creates the table backing DocumentRepository.
const DocumentSchema = `CREATE TABLE IF NOT EXISTS documents (
	path            TEXT PRIMARY KEY,
	collection_path TEXT NOT NULL,
	collection_id   TEXT NOT NULL,
	parent_path     TEXT NOT NULL DEFAULT '',
	data            JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS documents_collection_path_idx ON documents (collection_path);
CREATE INDEX IF NOT EXISTS documents_collection_id_idx ON documents (collection_id);
CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops);`

type documentRow struct {
	Path string         `db:"path"`
	Data types.JSONText `db:"data"`
}

// DocumentRepository stores schemaless documents in a PostgreSQL JSONB table,
// addressed by Firestore-style paths.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Migrate creates the documents table when missing.
func (r *DocumentRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, DocumentSchema); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

// Get fetches the document at path.
func (r *DocumentRepository) Get(ctx context.Context, path string) (*models.Document, error) {
	if !models.IsDocumentPath(path) {
		return nil, fmt.Errorf("get document %q: %w", path, models.ErrDocumentNotFound)
	}
	const query = `SELECT path, data FROM documents WHERE path = $1`
	var row documentRow
	if err := r.db.GetContext(ctx, &row, query, models.JoinPath(models.SplitPath(path)...)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", path, err)
	}
	return row.document()
}

// Query returns documents directly inside collectionPath matching every filter.
func (r *DocumentRepository) Query(ctx context.Context, collectionPath string, filters ...models.Filter) ([]models.Document, error) {
	const query = `SELECT path, data FROM documents WHERE collection_path = $1 AND data @> $2::jsonb ORDER BY path ASC`
	return r.selectDocuments(ctx, query, models.JoinPath(models.SplitPath(collectionPath)...), filters)
}

// QueryGroup searches every collection named collectionID, whatever its parent.
func (r *DocumentRepository) QueryGroup(ctx context.Context, collectionID string, filters ...models.Filter) ([]models.Document, error) {
	const query = `SELECT path, data FROM documents WHERE collection_id = $1 AND data @> $2::jsonb ORDER BY path ASC`
	return r.selectDocuments(ctx, query, collectionID, filters)
}

// Set writes data at path. With merge the existing top-level fields are kept
// unless overwritten.
func (r *DocumentRepository) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	if !models.IsDocumentPath(path) {
		return fmt.Errorf("set document: invalid path %q", path)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", path, err)
	}

	query := `INSERT INTO documents (path, collection_path, collection_id, parent_path, data, updated_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)
ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if merge {
		query = `INSERT INTO documents (path, collection_path, collection_id, parent_path, data, updated_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)
ON CONFLICT (path) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	}

	clean := models.JoinPath(models.SplitPath(path)...)
	if _, err := r.db.ExecContext(ctx, query,
		clean,
		models.CollectionPath(clean),
		models.CollectionID(clean),
		models.ParentDocumentPath(clean),
		string(payload),
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("set document %s: %w", path, err)
	}
	return nil
}

func (r *DocumentRepository) selectDocuments(ctx context.Context, query, scope string, filters []models.Filter) ([]models.Document, error) {
	predicate, err := containment(filters)
	if err != nil {
		return nil, err
	}
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, scope, predicate); err != nil {
		return nil, fmt.Errorf("query documents in %s: %w", scope, err)
	}
	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func containment(filters []models.Filter) (string, error) {
	object := make(map[string]interface{}, len(filters))
	for _, f := range filters {
		object[f.Field] = f.Value
	}
	raw, err := json.Marshal(object)
	if err != nil {
		return "", fmt.Errorf("marshal filters: %w", err)
	}
	return string(raw), nil
}

func (row documentRow) document() (*models.Document, error) {
	data := map[string]interface{}{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", row.Path, err)
		}
	}
	return &models.Document{Path: row.Path, Data: data}, nil
}
