package search

import (
	"context"
	"sort"
	"strings"
)

// Filters narrow the catalog query before relevance ranking. All present
// filters must hold at once.
type Filters struct {
	Categories  []string `json:"categories,omitempty"`
	Prefectures []string `json:"prefectures,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
	AmountMin   int64    `json:"amount_min,omitempty"`
	AmountMax   int64    `json:"amount_max,omitempty"`
}

// Document is a searchable grant projection. Meta carries the free-text
// fields that participate in scoring (organization, target, expenses) plus
// display-only fields.
type Document struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Excerpt    string            `json:"excerpt"`
	Meta       map[string]string `json:"meta"`
	Taxonomies []string          `json:"taxonomies"`
}

// Catalog is the storage side of the engine: return documents matching any
// of the expanded query variants under the given filters.
type Catalog interface {
	Find(ctx context.Context, terms []string, filters Filters, limit, offset int) ([]Document, int64, error)
}

type ScoredDocument struct {
	Document
	RelevanceScore float64 `json:"relevance_score"`
}

type QueryInfo struct {
	OriginalQuery  string   `json:"original_query"`
	ProcessedQuery string   `json:"processed_query"`
	ExpandedTerms  []string `json:"expanded_terms"`
}

type Result struct {
	Results     []ScoredDocument `json:"results"`
	TotalFound  int64            `json:"total_found"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
	QueryInfo   QueryInfo        `json:"query_info"`
}

// Scoring weights by field.
const (
	titleWeight    = 3.0
	excerptWeight  = 2.0
	metaWeight     = 1.5
	taxonomyWeight = 1.0
)

// Meta fields that participate in relevance scoring.
var scoredMetaFields = []string{"organization", "grant_target", "eligible_expenses"}

type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Search normalizes and synonym-expands the query, fetches candidates, and
// ranks them. Relevance is scored against the processed original query, not
// the expanded variants, so synonym hits widen recall without distorting
// the ordering.
func (e *Engine) Search(ctx context.Context, query string, filters Filters, page, perPage int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	processed := Normalize(query)
	expanded := ExpandSynonyms(processed)

	docs, total, err := e.catalog.Find(ctx, expanded, filters, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredDocument, len(docs))
	for i, doc := range docs {
		scored[i] = ScoredDocument{
			Document:       doc,
			RelevanceScore: scoreDocument(doc, processed),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &Result{
		Results:     scored,
		TotalFound:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
		QueryInfo: QueryInfo{
			OriginalQuery:  query,
			ProcessedQuery: processed,
			ExpandedTerms:  expanded,
		},
	}, nil
}

func scoreDocument(doc Document, processedQuery string) float64 {
	terms := strings.Fields(strings.ToLower(processedQuery))
	if len(terms) == 0 {
		return 0
	}

	score := 0.0
	title := strings.ToLower(doc.Title)
	excerpt := strings.ToLower(doc.Excerpt)

	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(excerpt, term) {
			score += excerptWeight
		}
		for _, field := range scoredMetaFields {
			if value, ok := doc.Meta[field]; ok && strings.Contains(strings.ToLower(value), term) {
				score += metaWeight
			}
		}
		for _, taxonomy := range doc.Taxonomies {
			if strings.Contains(strings.ToLower(taxonomy), term) {
				score += taxonomyWeight
			}
		}
	}
	return score
}
