// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/yamdb/internal/core"
)

type TermService struct {
	taxonomy Taxonomy
	repo     TermRepository
}

func NewTermService(taxonomy Taxonomy, repo TermRepository) *TermService {
	return &TermService{taxonomy: taxonomy, repo: repo}
}

func (s *TermService) Taxonomy() Taxonomy {
	return s.taxonomy
}

func (s *TermService) List(
	ctx context.Context,
	search string,
	page core.PageParams,
) ([]Term, int, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), page)
}

func (s *TermService) Create(ctx context.Context, req CreateTermRequest) (*Term, error) {
	exists, err := s.repo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.FieldError("slug", s.taxonomy.slugTaken())
	}

	term := &Term{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, term); err != nil {
		return nil, err
	}

	return term, nil
}

func (s *TermService) Delete(ctx context.Context, slug string) error {
	return s.repo.DeleteBySlug(ctx, slug)
}

type TitleService struct {
	titles     TitleRepository
	categories TermRepository
	genres     TermRepository
	ratings    RatingSource
}

func NewTitleService(
	titles TitleRepository,
	categories TermRepository,
	genres TermRepository,
	ratings RatingSource,
) *TitleService {
	return &TitleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		ratings:    ratings,
	}
}

func (s *TitleService) List(ctx context.Context, filter TitleFilter) ([]Title, int, error) {
	titles, total, err := s.titles.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.hydrate(ctx, titles); err != nil {
		return nil, 0, err
	}

	return titles, total, nil
}

func (s *TitleService) Get(ctx context.Context, id int64) (*Title, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	batch := []Title{*title}
	if err := s.hydrate(ctx, batch); err != nil {
		return nil, err
	}

	return &batch[0], nil
}

// Exists reports core.ErrNotFound for an unknown title.
func (s *TitleService) Exists(ctx context.Context, id int64) error {
	_, err := s.titles.GetByID(ctx, id)
	return err
}

func (s *TitleService) Create(
	ctx context.Context,
	req CreateTitleRequest,
) (title *Title, err error) {
	ctx, span := core.StartSpan(ctx, "catalog.CreateTitle")
	defer func() { core.EndSpan(span, err) }()

	verr := core.NewValidationError()

	category, cerr := s.resolveCategory(ctx, req.Category, verr)
	if cerr != nil {
		return nil, cerr
	}

	genres, gerr := s.resolveGenres(ctx, req.Genre, verr)
	if gerr != nil {
		return nil, gerr
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	title = &Title{
		Name:        req.Name,
		Year:        *req.Year,
		Description: req.Description,
		Category:    category,
		Genres:      genres,
	}
	if category != nil {
		title.CategoryID = &category.ID
	}

	if err := s.titles.Create(ctx, title, termIDs(genres)); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "title_created", attribute.Int64("title.id", title.ID))

	return title, nil
}

func (s *TitleService) Update(
	ctx context.Context,
	id int64,
	req UpdateTitleRequest,
) (title *Title, err error) {
	ctx, span := core.StartSpan(ctx, "catalog.UpdateTitle",
		attribute.Int64("title.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	title, err = s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := core.NewValidationError()

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			verr.Add("name", "this field may not be blank")
		}
		title.Name = name
	}
	if req.Year != nil {
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}

	if req.Category != nil {
		category, cerr := s.resolveCategory(ctx, req.Category, verr)
		if cerr != nil {
			return nil, cerr
		}
		switch {
		case category != nil:
			title.CategoryID = &category.ID
		case *req.Category == "":
			title.CategoryID = nil
		}
	}

	var genreIDs []int64
	if req.Genre != nil {
		genres, gerr := s.resolveGenres(ctx, req.Genre, verr)
		if gerr != nil {
			return nil, gerr
		}
		genreIDs = termIDs(genres)
		if genreIDs == nil {
			genreIDs = []int64{}
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.titles.Update(ctx, title, genreIDs); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *TitleService) Delete(ctx context.Context, id int64) error {
	return s.titles.Delete(ctx, id)
}

func (s *TitleService) Count(ctx context.Context) (int, error) {
	return s.titles.Count(ctx)
}

func (s *TitleService) resolveCategory(
	ctx context.Context,
	slug *string,
	verr *core.ValidationError,
) (*Term, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}

	found, err := s.categories.GetBySlugs(ctx, []string{*slug})
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if len(found) == 0 {
		verr.Add("category", missingSlug(*slug))
		return nil, nil
	}

	return &found[0], nil
}

func (s *TitleService) resolveGenres(
	ctx context.Context,
	slugs []string,
	verr *core.ValidationError,
) ([]Term, error) {
	slugs = dedupe(slugs)
	if len(slugs) == 0 {
		return []Term{}, nil
	}

	found, err := s.genres.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}

	known := make(map[string]struct{}, len(found))
	for _, g := range found {
		known[g.Slug] = struct{}{}
	}
	for _, slug := range slugs {
		if _, ok := known[slug]; !ok {
			verr.Add("genre", missingSlug(slug))
		}
	}

	return found, nil
}

// hydrate fills category, genres and the live rating for a page of titles.
func (s *TitleService) hydrate(ctx context.Context, titles []Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]int64, len(titles))
	var categoryIDs []int64
	seen := make(map[int64]struct{})
	for i, t := range titles {
		ids[i] = t.ID
		if t.CategoryID == nil {
			continue
		}
		if _, ok := seen[*t.CategoryID]; !ok {
			seen[*t.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}

	genres, err := s.titles.GenresFor(ctx, ids)
	if err != nil {
		return err
	}

	categories, err := s.categories.GetByIDs(ctx, categoryIDs)
	if err != nil {
		return err
	}
	byID := make(map[int64]Term, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	ratings, err := s.ratings.Ratings(ctx, ids)
	if err != nil {
		return err
	}

	for i := range titles {
		t := &titles[i]
		t.Genres = genres[t.ID]
		if t.Genres == nil {
			t.Genres = []Term{}
		}
		t.Category = nil
		if t.CategoryID != nil {
			if c, ok := byID[*t.CategoryID]; ok {
				t.Category = &c
			}
		}
		t.Rating = ratings[t.ID]
	}

	return nil
}

func termIDs(terms []Term) []int64 {
	if len(terms) == 0 {
		return nil
	}
	ids := make([]int64, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	return ids
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
