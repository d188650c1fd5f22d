package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

// DefaultSettingsPaths are the settings documents tried in order.
var DefaultSettingsPaths = []string{"settings/app", "settings/global"}

// TermSettingsConfig configures where the current term is read from and the
// values used when no settings document exists.
type TermSettingsConfig struct {
	Paths       []string
	DefaultTerm string
	DefaultYear int
}

// TermSettingsService resolves the active TermSelector from the settings
// documents.
type TermSettingsService struct {
	store    DocumentReader
	logger   *zap.Logger
	paths    []string
	defaults models.TermSelector
}

// NewTermSettingsService constructs a TermSettingsService.
func NewTermSettingsService(store DocumentReader, cfg TermSettingsConfig, logger *zap.Logger) *TermSettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths := make([]string, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		if p = strings.Trim(strings.TrimSpace(p), "/"); models.IsDocumentPath(p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		paths = DefaultSettingsPaths
	}
	defaults := models.TermSelector{
		Term:    normalize.TermSlug(cfg.DefaultTerm),
		RawTerm: strings.TrimSpace(cfg.DefaultTerm),
		Year:    cfg.DefaultYear,
		Source:  "defaults",
	}
	return &TermSettingsService{store: store, logger: logger, paths: paths, defaults: defaults}
}

// Current returns the selector from the first settings document that exists.
// Missing documents fall through to the configured defaults; store failures
// are returned as STORE_UNAVAILABLE.
func (s *TermSettingsService) Current(ctx context.Context) (models.TermSelector, error) {
	for _, path := range s.paths {
		doc, err := s.store.Get(ctx, path)
		if errors.Is(err, models.ErrDocumentNotFound) {
			continue
		}
		if err != nil {
			return models.TermSelector{}, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load term settings")
		}
		return s.fromDocument(doc), nil
	}
	s.logger.Debug("no settings document found, using defaults", zap.Strings("paths", s.paths))
	return s.defaults, nil
}

func (s *TermSettingsService) fromDocument(doc *models.Document) models.TermSelector {
	selector := models.TermSelector{
		RawTerm: doc.String("currentTerm"),
		Year:    doc.Int("currentYear"),
		Source:  doc.Path,
	}
	if selector.RawTerm == "" {
		selector.RawTerm = s.defaults.RawTerm
	}
	if selector.Year == 0 {
		selector.Year = s.defaults.Year
	}
	selector.Term = normalize.TermSlug(selector.RawTerm)
	return selector
}
