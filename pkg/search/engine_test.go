package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ＩＴ導入　補助金", "IT導入 補助金"},
		{"設備投資！？（最大500万円）", "設備投資 最大500万円"},
		{"  snake_case-query  ", "snake_case-query"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.in))
	}
}

func TestExpandSynonyms_Bidirectional(t *testing.T) {
	// Base term expands to its synonyms.
	fromBase := ExpandSynonyms("助成金 検索")
	assert.Contains(t, fromBase, "助成金 検索")
	assert.Contains(t, fromBase, "補助金 検索")
	assert.Contains(t, fromBase, "支援金 検索")

	// A synonym expands back to the base and its siblings.
	fromSynonym := ExpandSynonyms("補助金 検索")
	assert.Contains(t, fromSynonym, "助成金 検索")
	assert.Contains(t, fromSynonym, "給付金 検索")
}

func TestExpandSynonyms_NoDuplicates(t *testing.T) {
	expanded := ExpandSynonyms("創業 スタートアップ")

	seen := map[string]int{}
	for _, term := range expanded {
		seen[term]++
	}
	for term, count := range seen {
		assert.Equal(t, 1, count, "duplicate variant %q", term)
	}
}

func TestExpandSynonyms_UntouchedQuery(t *testing.T) {
	expanded := ExpandSynonyms("テスト")
	assert.Equal(t, []string{"テスト"}, expanded)
}

type fakeCatalog struct {
	docs      []Document
	gotTerms  []string
	gotFilter Filters
}

func (f *fakeCatalog) Find(_ context.Context, terms []string, filters Filters, limit, offset int) ([]Document, int64, error) {
	f.gotTerms = terms
	f.gotFilter = filters
	return f.docs, int64(len(f.docs)), nil
}

func TestSearch_RanksTitleHitsAboveMetaHits(t *testing.T) {
	catalog := &fakeCatalog{docs: []Document{
		{ID: 1, Title: "ものづくり支援", Meta: map[string]string{"grant_target": "設備投資を行う中小企業"}},
		{ID: 2, Title: "設備投資促進補助金", Excerpt: "設備投資を支援します"},
	}}
	engine := NewEngine(catalog)

	result, err := engine.Search(context.Background(), "設備投資", Filters{}, 1, 10)
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, uint(2), result.Results[0].ID) // title + excerpt beats meta-only
	assert.Greater(t, result.Results[0].RelevanceScore, result.Results[1].RelevanceScore)
}

func TestSearch_PassesExpandedTermsToCatalog(t *testing.T) {
	catalog := &fakeCatalog{}
	engine := NewEngine(catalog)

	result, err := engine.Search(context.Background(), "助成金", Filters{Prefectures: []string{"tokyo"}}, 1, 10)
	require.NoError(t, err)

	assert.Contains(t, catalog.gotTerms, "補助金")
	assert.Equal(t, []string{"tokyo"}, catalog.gotFilter.Prefectures)
	assert.Equal(t, "助成金", result.QueryInfo.ProcessedQuery)
	assert.Equal(t, catalog.gotTerms, result.QueryInfo.ExpandedTerms)
}

func TestSearch_Pagination(t *testing.T) {
	catalog := &fakeCatalog{docs: []Document{{ID: 1, Title: "補助金A"}}}
	engine := NewEngine(catalog)

	result, err := engine.Search(context.Background(), "補助金", Filters{}, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CurrentPage)
	assert.Equal(t, int64(1), result.TotalFound)
	assert.Equal(t, 1, result.TotalPages)
}
