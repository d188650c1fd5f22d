package service

import (
	"context"
	"sort"
	"sync"

	"github.com/noah-isme/yoklama-api/internal/models"
)

// memoryStore is an in-memory DocumentStore that records every call.
type memoryStore struct {
	mu       sync.Mutex
	docs     map[string]map[string]interface{}
	getErr   map[string]error
	queryErr map[string]error
	groupErr error
	setErr   error

	gets    []string
	queries []string
	groups  []string
	sets    []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		docs:     make(map[string]map[string]interface{}),
		getErr:   make(map[string]error),
		queryErr: make(map[string]error),
	}
}

func (s *memoryStore) put(path string, data map[string]interface{}) *memoryStore {
	s.docs[path] = data
	return s
}

func (s *memoryStore) Get(ctx context.Context, path string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, path)
	if err := s.getErr[path]; err != nil {
		return nil, err
	}
	data, ok := s.docs[path]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	return &models.Document{Path: path, Data: copyData(data)}, nil
}

func (s *memoryStore) Query(ctx context.Context, collectionPath string, filters ...models.Filter) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, collectionPath)
	if err := s.queryErr[collectionPath]; err != nil {
		return nil, err
	}
	return s.match(func(path string) bool { return models.CollectionPath(path) == collectionPath }, filters), nil
}

func (s *memoryStore) QueryGroup(ctx context.Context, collectionID string, filters ...models.Filter) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, collectionID)
	if s.groupErr != nil {
		return nil, s.groupErr
	}
	return s.match(func(path string) bool { return models.CollectionID(path) == collectionID }, filters), nil
}

func (s *memoryStore) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = append(s.sets, path)
	if s.setErr != nil {
		return s.setErr
	}
	existing, ok := s.docs[path]
	if !ok || !merge {
		existing = make(map[string]interface{})
	}
	for k, v := range data {
		existing[k] = v
	}
	s.docs[path] = existing
	return nil
}

func (s *memoryStore) match(inScope func(path string) bool, filters []models.Filter) []models.Document {
	paths := make([]string, 0, len(s.docs))
	for path := range s.docs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := []models.Document{}
	for _, path := range paths {
		if !inScope(path) {
			continue
		}
		data := s.docs[path]
		ok := true
		for _, f := range filters {
			v, present := data[f.Field]
			if !present || models.Stringify(v) != models.Stringify(f.Value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, models.Document{Path: path, Data: copyData(data)})
		}
	}
	return out
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
