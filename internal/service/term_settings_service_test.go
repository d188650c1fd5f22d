package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
)

func TestTermSettingsServiceCurrent(t *testing.T) {
	t.Run("first existing document wins", func(t *testing.T) {
		store := newMemoryStore()
		store.put("settings/global", map[string]interface{}{"currentTerm": "Bahar", "currentYear": 2024})
		svc := NewTermSettingsService(store, TermSettingsConfig{}, nil)

		selector, err := svc.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "bahar", selector.Term)
		assert.Equal(t, "Bahar", selector.RawTerm)
		assert.Equal(t, 2024, selector.Year)
		assert.Equal(t, "settings/global", selector.Source)
		assert.Equal(t, []string{"settings/app", "settings/global"}, store.gets)
	})

	t.Run("defaults fill missing fields", func(t *testing.T) {
		store := newMemoryStore()
		store.put("settings/app", map[string]interface{}{"currentYear": "2025"})
		svc := NewTermSettingsService(store, TermSettingsConfig{DefaultTerm: "GÜZ", DefaultYear: 2020}, nil)

		selector, err := svc.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "guz", selector.Term)
		assert.Equal(t, 2025, selector.Year)
	})

	t.Run("no documents uses defaults", func(t *testing.T) {
		store := newMemoryStore()
		svc := NewTermSettingsService(store, TermSettingsConfig{Paths: []string{"config/term", "not-a-document"}, DefaultTerm: "bahar"}, nil)

		selector, err := svc.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "bahar", selector.Term)
		assert.Equal(t, 0, selector.Year)
		assert.Equal(t, "defaults", selector.Source)
		assert.Equal(t, []string{"config/term"}, store.gets)
	})

	t.Run("store error is unavailable", func(t *testing.T) {
		store := newMemoryStore()
		store.getErr["settings/app"] = errors.New("timeout")
		svc := NewTermSettingsService(store, TermSettingsConfig{}, nil)

		_, err := svc.Current(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrUnavailable))
	})
}
