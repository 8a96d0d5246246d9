package service

import (
	"context"
	"strings"

	"grant-insight-be/internal/constant"
	"grant-insight-be/internal/dto"
	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/internal/pkg/serverutils"
	"grant-insight-be/internal/repository/unitofwork"
	"grant-insight-be/pkg/learning"
	"grant-insight-be/pkg/search"
)

type ISearchService interface {
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Suggestions(ctx context.Context, req *dto.SuggestionsRequest) (*dto.SuggestionsResponse, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
	learning   *learning.Store
	log        logger.ILogger
}

func NewSearchService(uowFactory unitofwork.RepositoryFactory, learningStore *learning.Store, log logger.ILogger) ISearchService {
	return &searchService{
		uowFactory: uowFactory,
		learning:   learningStore,
		log:        log,
	}
}

// grantCatalog adapts the grant repository to the search engine's storage
// contract.
type grantCatalog struct {
	uow unitofwork.UnitOfWork
}

var _ search.Catalog = grantCatalog{}

func (g grantCatalog) Find(ctx context.Context, terms []string, filters search.Filters, limit, offset int) ([]search.Document, int64, error) {
	grants, total, err := g.uow.GrantRepository().Search(ctx, terms, filters, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	docs := make([]search.Document, len(grants))
	for i, grant := range grants {
		docs[i] = toDocument(grant)
	}
	return docs, total, nil
}

func toDocument(grant *entity.Grant) search.Document {
	taxonomies := make([]string, 0, len(grant.Categories)+len(grant.Prefectures))
	taxonomies = append(taxonomies, grant.Categories...)
	taxonomies = append(taxonomies, grant.Prefectures...)

	return search.Document{
		ID:      grant.Id,
		Title:   grant.Title,
		Excerpt: grant.Excerpt,
		Meta: map[string]string{
			"organization":      grant.Organization,
			"grant_target":      grant.Target,
			"eligible_expenses": grant.EligibleExpenses,
			"amount":            grant.Amount,
			"deadline":          grant.Deadline,
			"permalink":         grant.Permalink,
		},
		Taxonomies: taxonomies,
	}
}

func (s *searchService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	engine := search.NewEngine(grantCatalog{uow: uow})

	result, err := engine.Search(ctx, req.Query, search.Filters{
		Categories:  req.Categories,
		Prefectures: req.Prefectures,
		Statuses:    req.Statuses,
		AmountMin:   req.AmountMin,
		AmountMax:   req.AmountMax,
	}, req.Page, req.PerPage)
	if err != nil {
		return nil, serverutils.NewInternalError(err)
	}

	items := make([]dto.SearchResultItem, len(result.Results))
	for i, scored := range result.Results {
		items[i] = dto.SearchResultItem{
			ID:             scored.ID,
			Title:          scored.Title,
			Excerpt:        scored.Excerpt,
			RelevanceScore: scored.RelevanceScore,
		}
	}

	return &dto.SearchResponse{
		Results:       items,
		Total:         result.TotalFound,
		Page:          result.CurrentPage,
		PerPage:       req.PerPage,
		OriginalQuery: result.QueryInfo.OriginalQuery,
		ExpandedTerms: result.QueryInfo.ExpandedTerms,
	}, nil
}

// Suggestions blends three sources in priority order: queries other users
// actually asked, matching grant titles, and generic question completions.
func (s *searchService) Suggestions(ctx context.Context, req *dto.SuggestionsRequest) (*dto.SuggestionsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}

	seen := map[string]bool{}
	suggestions := make([]string, 0, limit)
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seen[candidate] || len(suggestions) >= limit {
			return
		}
		seen[candidate] = true
		suggestions = append(suggestions, candidate)
	}

	learned, err := s.learning.SuggestQueries(ctx, req.Query, limit)
	if err != nil {
		s.log.Warn("search", "learned suggestions unavailable", map[string]interface{}{"error": err.Error()})
	}
	for _, record := range learned {
		add(record.OriginalQuery)
	}

	if len(suggestions) < limit {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		titles, err := uow.GrantRepository().SearchTitles(ctx, req.Query, limit-len(suggestions))
		if err != nil {
			s.log.Warn("search", "title suggestions unavailable", map[string]interface{}{"error": err.Error()})
		}
		for _, title := range titles {
			add(title)
		}
	}

	for _, pattern := range constant.SuggestionPatterns {
		add(req.Query + " " + pattern)
	}

	return &dto.SuggestionsResponse{Suggestions: suggestions}, nil
}
