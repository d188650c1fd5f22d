package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/yoklama-api/internal/models"
)

// termGroupQuery is what the student cascade searches for.
type termGroupQuery struct {
	DepartmentID string
	ClassNo      interface{}
	Term         models.TermSelector
}

// DirectKey is the composite id "{department}-{class}-{term}" term groups are
// conventionally stored under.
func (q termGroupQuery) DirectKey() string {
	return fmt.Sprintf("%s-%s-%s", q.DepartmentID, models.Stringify(q.ClassNo), q.Term.Term)
}

func (q termGroupQuery) filters() []models.Filter {
	return []models.Filter{
		models.Eq("departmentId", q.DepartmentID),
		models.Eq("classNo", q.ClassNo),
		models.Eq("term", q.Term.Term),
	}
}

// errStrategySkipped marks a strategy that had nothing to look up, such as the
// year query when no year is configured.
var errStrategySkipped = errors.New("term group strategy skipped")

// termGroupStrategy finds candidate term groups. An empty result means "try
// the next strategy"; an error means this strategy could not run.
type termGroupStrategy struct {
	Name string
	Find func(ctx context.Context, store DocumentReader, q termGroupQuery) ([]models.TermGroup, error)
}

// studentTermGroupCascade is tried in order until one strategy finds a group.
var studentTermGroupCascade = []termGroupStrategy{
	{Name: "direct", Find: findDirectTermGroup},
	{Name: "exact_year", Find: findExactYearTermGroups},
	{Name: "latest_year", Find: findLatestYearTermGroup},
	{Name: "direct_any_year", Find: findDirectTermGroupAnyYear},
}

func findDirectTermGroup(ctx context.Context, store DocumentReader, q termGroupQuery) ([]models.TermGroup, error) {
	group, err := loadDirectTermGroup(ctx, store, q)
	if err != nil || group == nil {
		return nil, err
	}
	if q.Term.Year != 0 && group.Year != q.Term.Year {
		return nil, nil
	}
	return []models.TermGroup{*group}, nil
}

func findExactYearTermGroups(ctx context.Context, store DocumentReader, q termGroupQuery) ([]models.TermGroup, error) {
	if q.Term.Year == 0 {
		return nil, errStrategySkipped
	}
	filters := append(q.filters(), models.Eq("year", q.Term.Year))
	docs, err := store.Query(ctx, models.CollectionProgramTerms, filters...)
	if err != nil {
		return nil, err
	}
	groups := make([]models.TermGroup, 0, len(docs))
	for _, doc := range docs {
		groups = append(groups, termGroupFromDocument(doc))
	}
	return groups, nil
}

// findLatestYearTermGroup ignores the year and keeps the highest one. Ties go
// to the smallest document path.
func findLatestYearTermGroup(ctx context.Context, store DocumentReader, q termGroupQuery) ([]models.TermGroup, error) {
	docs, err := store.Query(ctx, models.CollectionProgramTerms, q.filters()...)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	groups := make([]models.TermGroup, 0, len(docs))
	for _, doc := range docs {
		groups = append(groups, termGroupFromDocument(doc))
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year > groups[j].Year
		}
		return groups[i].Path < groups[j].Path
	})
	return groups[:1], nil
}

// findDirectTermGroupAnyYear accepts the composite-key document whatever its
// year, so a stale year on the only matching group still shows a schedule.
func findDirectTermGroupAnyYear(ctx context.Context, store DocumentReader, q termGroupQuery) ([]models.TermGroup, error) {
	group, err := loadDirectTermGroup(ctx, store, q)
	if err != nil || group == nil {
		return nil, err
	}
	return []models.TermGroup{*group}, nil
}

func loadDirectTermGroup(ctx context.Context, store DocumentReader, q termGroupQuery) (*models.TermGroup, error) {
	path := models.JoinPath(models.CollectionProgramTerms, q.DirectKey())
	if !models.IsDocumentPath(path) {
		return nil, errStrategySkipped
	}
	doc, err := store.Get(ctx, path)
	if errors.Is(err, models.ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	group := termGroupFromDocument(*doc)
	return &group, nil
}

func termGroupFromDocument(doc models.Document) models.TermGroup {
	return models.TermGroup{
		ID:           doc.ID(),
		Path:         doc.Path,
		DepartmentID: doc.String("departmentId", "department"),
		ClassNo:      doc.Value("classNo", "class"),
		Term:         doc.String("term"),
		Year:         doc.Int("year"),
	}
}
